package timex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// WireLayout is the only timestamp layout the backend emits: millisecond
// precision and an explicit offset ("Z" or "+00:00").
const WireLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a time.Time that (un)marshals with WireLayout and nothing else.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s with WireLayout. There is no lenient fallback.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(WireLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(WireLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
