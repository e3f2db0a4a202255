package models

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/aln/internal/common"
	"github.com/google/uuid"
)

// ScheduledMeal is a recurring meal of a feeding plan.
//
// ID only identifies the in-memory value for list diffing; it never goes on
// the wire. Equality and ordering ignore both ID and Enabled.
type ScheduledMeal struct {
	ID      uuid.UUID `json:"-"`
	Amount  Amount    `json:"quantity"`
	Time    Time      `json:"time"`
	Enabled bool      `json:"enabled"`
}

// NewScheduledMeal returns a meal with a fresh local ID.
func NewScheduledMeal(amount Amount, at Time, enabled bool) ScheduledMeal {
	return ScheduledMeal{ID: uuid.New(), Amount: amount, Time: at, Enabled: enabled}
}

// Equal reports whether m and o share time and amount.
func (m ScheduledMeal) Equal(o ScheduledMeal) bool {
	return m.Compare(o) == 0
}

// Compare orders by time, then amount.
func (m ScheduledMeal) Compare(o ScheduledMeal) int {
	if c := m.Time.Compare(o.Time); c != 0 {
		return c
	}
	return m.Amount.Compare(o.Amount)
}

// UnmarshalJSON requires quantity, time and enabled. Each decoded meal gets
// a fresh local ID.
func (m *ScheduledMeal) UnmarshalJSON(b []byte) error {
	var w struct {
		Amount  *Amount `json:"quantity"`
		Time    *Time   `json:"time"`
		Enabled *bool   `json:"enabled"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.Amount == nil:
		return errMissingField("quantity")
	case w.Time == nil:
		return errMissingField("time")
	case w.Enabled == nil:
		return errMissingField("enabled")
	}
	*m = ScheduledMeal{ID: uuid.New(), Amount: *w.Amount, Time: *w.Time, Enabled: *w.Enabled}
	return nil
}

// MaxMeals is the capacity of a feeding plan.
const MaxMeals = 10

// ScheduledFeedingPlan is an ordered set of at most MaxMeals meals with no
// two meals sharing the same time and amount.
//
// The plan is replaced as a whole on the server, there is no partial update.
type ScheduledFeedingPlan struct {
	meals []ScheduledMeal
}

// NewPlan builds a plan by adding meals in order.
func NewPlan(meals ...ScheduledMeal) (*ScheduledFeedingPlan, error) {
	p := &ScheduledFeedingPlan{}
	for _, m := range meals {
		if err := p.Add(m); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *ScheduledFeedingPlan) Len() int { return len(p.meals) }

// At returns the meal at position i.
func (p *ScheduledFeedingPlan) At(i int) (ScheduledMeal, bool) {
	if i < 0 || i >= len(p.meals) {
		return ScheduledMeal{}, false
	}
	return p.meals[i], true
}

// Meals returns a copy of the meals in plan order.
func (p *ScheduledFeedingPlan) Meals() []ScheduledMeal {
	return slices.Clone(p.meals)
}

// Sorted returns a copy of the meals ordered by time then amount.
func (p *ScheduledFeedingPlan) Sorted() []ScheduledMeal {
	out := p.Meals()
	slices.SortStableFunc(out, ScheduledMeal.Compare)
	return out
}

func (p *ScheduledFeedingPlan) indexOf(m ScheduledMeal, skip int) int {
	for i, x := range p.meals {
		if i != skip && x.Equal(m) {
			return i
		}
	}
	return -1
}

// Add appends m. It fails without touching the plan when an equal meal is
// present or the plan is full.
func (p *ScheduledFeedingPlan) Add(m ScheduledMeal) error {
	if p.indexOf(m, -1) >= 0 {
		return fmt.Errorf("%w: %s %dg", common.ErrMealAlreadyExists, m.Time, m.Amount.Value())
	}
	if len(p.meals) >= MaxMeals {
		return common.ErrTooManyMeals
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	p.meals = append(p.meals, m)
	return nil
}

// Replace swaps the meal at position i, keeping the uniqueness rule against
// the other entries.
func (p *ScheduledFeedingPlan) Replace(i int, m ScheduledMeal) error {
	if i < 0 || i >= len(p.meals) {
		return common.ErrMealNotFound
	}
	if p.indexOf(m, i) >= 0 {
		return fmt.Errorf("%w: %s %dg", common.ErrMealAlreadyExists, m.Time, m.Amount.Value())
	}
	if m.ID == uuid.Nil {
		m.ID = p.meals[i].ID
	}
	p.meals[i] = m
	return nil
}

// RemoveAt deletes the meals at the given positions. Out of range and
// repeated indices are ignored; remaining meals keep their order.
func (p *ScheduledFeedingPlan) RemoveAt(indices ...int) {
	if len(indices) == 0 {
		return
	}
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		drop[i] = struct{}{}
	}
	kept := p.meals[:0:0]
	for i, m := range p.meals {
		if _, ok := drop[i]; !ok {
			kept = append(kept, m)
		}
	}
	p.meals = kept
}

// Clone returns an independent copy.
func (p *ScheduledFeedingPlan) Clone() *ScheduledFeedingPlan {
	return &ScheduledFeedingPlan{meals: p.Meals()}
}

// EnabledCount is the number of enabled meals.
func (p *ScheduledFeedingPlan) EnabledCount() int {
	n := 0
	for _, m := range p.meals {
		if m.Enabled {
			n++
		}
	}
	return n
}

// TotalEnabledAmount is the sum in grams of the enabled meals.
func (p *ScheduledFeedingPlan) TotalEnabledAmount() int {
	total := 0
	for _, m := range p.meals {
		if m.Enabled {
			total += m.Amount.Value()
		}
	}
	return total
}

type planDocument struct {
	Meals []ScheduledMeal `json:"meals"`
}

func (p *ScheduledFeedingPlan) MarshalJSON() ([]byte, error) {
	meals := p.meals
	if meals == nil {
		meals = []ScheduledMeal{}
	}
	return json.Marshal(planDocument{Meals: meals})
}

// UnmarshalJSON decodes a plan document, rejecting out of range values,
// duplicates and plans over capacity.
func (p *ScheduledFeedingPlan) UnmarshalJSON(b []byte) error {
	var doc planDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	decoded, err := NewPlan(doc.Meals...)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
