package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/aln/internal/timex"
)

// Availability is the coarse feeder status.
type Availability int

const (
	Unknown Availability = iota
	Available
	NotAvailable
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case NotAvailable:
		return "not available"
	default:
		return "unknown"
	}
}

// FeederState is the last known status of a feeder.
// LastReachDate is only meaningful when NotAvailable.
type FeederState struct {
	Availability  Availability
	LastReachDate *time.Time
}

// IsReachable reports whether the feeder answered its last status check.
func (s FeederState) IsReachable() bool {
	return s.Availability == Available
}

func (s FeederState) String() string {
	return s.Availability.String()
}

func (s *FeederState) UnmarshalJSON(b []byte) error {
	var w struct {
		IsAvailable        *bool            `json:"is_available"`
		IsAvailableCamel   *bool            `json:"isAvailable"`
		LastResponded      *timex.Timestamp `json:"last_responded"`
		LastRespondedCamel *timex.Timestamp `json:"lastResponded"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	available := firstSet(w.IsAvailable, w.IsAvailableCamel)
	if available == nil {
		return errMissingField("is_available")
	}
	if *available {
		*s = FeederState{Availability: Available}
		return nil
	}
	*s = FeederState{Availability: NotAvailable}
	if last := firstSet(w.LastResponded, w.LastRespondedCamel); last != nil {
		t := last.Time
		s.LastReachDate = &t
	}
	return nil
}
