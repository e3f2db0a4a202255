package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/aln/internal/common"
)

// Bounds describes an inclusive minimum and an exclusive maximum.
type Bounds interface {
	Min() int
	MaxExclusive() int
}

// HoursBounds accepts 0-23.
type HoursBounds struct{}

func (HoursBounds) Min() int          { return 0 }
func (HoursBounds) MaxExclusive() int { return 24 }

// MinutesBounds accepts 0-59.
type MinutesBounds struct{}

func (MinutesBounds) Min() int          { return 0 }
func (MinutesBounds) MaxExclusive() int { return 60 }

// AmountBounds accepts 5-150 grams.
type AmountBounds struct{}

func (AmountBounds) Min() int          { return 5 }
func (AmountBounds) MaxExclusive() int { return 151 }

// BoundedInteger is an int tied to the range described by B.
//
// Construction through NewBounded is strict and rejects out of range values.
// Set is lenient and saturates at the bounds, which is what live edits need.
// The zero value holds 0 regardless of B and is only meaningful after Set.
type BoundedInteger[B Bounds] struct {
	value int
}

type (
	Hours   = BoundedInteger[HoursBounds]
	Minutes = BoundedInteger[MinutesBounds]
	Amount  = BoundedInteger[AmountBounds]
)

// NewBounded returns v as a BoundedInteger or common.ErrOutOfBounds.
func NewBounded[B Bounds](v int) (BoundedInteger[B], error) {
	var b B
	if v < b.Min() || v >= b.MaxExclusive() {
		return BoundedInteger[B]{}, fmt.Errorf("%w: %d not in [%d, %d)", common.ErrOutOfBounds, v, b.Min(), b.MaxExclusive())
	}
	return BoundedInteger[B]{value: v}, nil
}

// Clamped returns v saturated into the bounds of B.
func Clamped[B Bounds](v int) BoundedInteger[B] {
	var x BoundedInteger[B]
	x.Set(v)
	return x
}

func NewHours(v int) (Hours, error)     { return NewBounded[HoursBounds](v) }
func NewMinutes(v int) (Minutes, error) { return NewBounded[MinutesBounds](v) }
func NewAmount(v int) (Amount, error)   { return NewBounded[AmountBounds](v) }

// AmountMin and AmountMax are the smallest and largest valid meal amounts.
const (
	AmountMin = 5
	AmountMax = 150
)

func (x BoundedInteger[B]) Value() int { return x.value }

// Min is the smallest value of the range.
func (x BoundedInteger[B]) Min() int {
	var b B
	return b.Min()
}

// Max is the largest value of the range (MaxExclusive - 1).
func (x BoundedInteger[B]) Max() int {
	var b B
	return b.MaxExclusive() - 1
}

// Set assigns v clamped into [Min, Max].
func (x *BoundedInteger[B]) Set(v int) {
	x.value = min(x.Max(), max(x.Min(), v))
}

// Compare returns -1, 0 or +1.
func (x BoundedInteger[B]) Compare(y BoundedInteger[B]) int {
	switch {
	case x.value < y.value:
		return -1
	case x.value > y.value:
		return 1
	}
	return 0
}

func (x BoundedInteger[B]) String() string {
	return fmt.Sprintf("%d", x.value)
}

func (x BoundedInteger[B]) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.value)
}

// UnmarshalJSON decodes a bare integer with strict construction.
func (x *BoundedInteger[B]) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := NewBounded[B](v)
	if err != nil {
		return err
	}
	*x = parsed
	return nil
}
