package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 2*60*60)
	}
	return loc
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return d
}

func meal(t *testing.T, clock string, grams int, enabled bool) ScheduledMeal {
	t.Helper()
	at, err := ParseClock(clock)
	require.NoError(t, err)
	amount, err := NewAmount(grams)
	require.NoError(t, err)
	return NewScheduledMeal(amount, at, enabled)
}
