package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time is a time of day on the feeder. Feeders do not observe timezones, so
// it is always interpreted in UTC whatever the local zone is.
type Time struct {
	Hours   Hours   `json:"hours"`
	Minutes Minutes `json:"minutes"`
}

// NewTime validates h and m strictly.
func NewTime(h, m int) (Time, error) {
	hours, err := NewHours(h)
	if err != nil {
		return Time{}, err
	}
	minutes, err := NewMinutes(m)
	if err != nil {
		return Time{}, err
	}
	return Time{Hours: hours, Minutes: minutes}, nil
}

// TimeFromDate returns the UTC hour and minute of t.
func TimeFromDate(t time.Time) Time {
	u := t.UTC()
	return Time{Hours: Clamped[HoursBounds](u.Hour()), Minutes: Clamped[MinutesBounds](u.Minute())}
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Time, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Time{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hv, err := strconv.Atoi(h)
	if err != nil {
		return Time{}, fmt.Errorf("invalid hours %q: %w", h, err)
	}
	mv, err := strconv.Atoi(m)
	if err != nil {
		return Time{}, fmt.Errorf("invalid minutes %q: %w", m, err)
	}
	return NewTime(hv, mv)
}

// Date returns the instant at this time of day on the UTC calendar day of day.
func (t Time) Date(day time.Time) time.Time {
	y, mo, d := day.UTC().Date()
	return time.Date(y, mo, d, t.Hours.Value(), t.Minutes.Value(), 0, 0, time.UTC)
}

// Compare orders by hours, then minutes.
func (t Time) Compare(o Time) int {
	if c := t.Hours.Compare(o.Hours); c != 0 {
		return c
	}
	return t.Minutes.Compare(o.Minutes)
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours.Value(), t.Minutes.Value())
}

// UnmarshalJSON requires both hours and minutes.
func (t *Time) UnmarshalJSON(b []byte) error {
	var w struct {
		Hours   *Hours   `json:"hours"`
		Minutes *Minutes `json:"minutes"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.Hours == nil:
		return errMissingField("hours")
	case w.Minutes == nil:
		return errMissingField("minutes")
	}
	*t = Time{Hours: *w.Hours, Minutes: *w.Minutes}
	return nil
}
