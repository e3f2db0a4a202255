package models

// SettingsDraft holds the locally edited settings of one feeder together with
// the values it was created from.
type SettingsDraft struct {
	Name          string
	defaultAmount Amount

	originalName          string
	originalDefaultAmount int

	plan      *ScheduledFeedingPlan
	planErr   error
	planDirty bool
}

// NewSettingsDraft snapshots the current name and default amount of f.
// A feeder without a default amount starts at AmountMin.
func NewSettingsDraft(f *Feeder) *SettingsDraft {
	name, _ := f.Name()
	amount, ok := f.DefaultAmount()
	if !ok {
		amount = Clamped[AmountBounds](AmountMin)
	}
	return &SettingsDraft{
		Name:                  name,
		defaultAmount:         amount,
		originalName:          name,
		originalDefaultAmount: amount.Value(),
	}
}

// DefaultAmount is the edited default amount.
func (d *SettingsDraft) DefaultAmount() Amount { return d.defaultAmount }

// SetDefaultAmount edits the default amount, saturating at the bounds.
func (d *SettingsDraft) SetDefaultAmount(v int) { d.defaultAmount.Set(v) }

// NameChanged reports whether the name differs from the snapshot.
func (d *SettingsDraft) NameChanged() bool { return d.Name != d.originalName }

// DefaultAmountChanged reports whether the default amount differs from the snapshot.
func (d *SettingsDraft) DefaultAmountChanged() bool {
	return d.defaultAmount.Value() != d.originalDefaultAmount
}

// PlanLoaded stores a freshly fetched plan. It does not mark the plan dirty.
func (d *SettingsDraft) PlanLoaded(p *ScheduledFeedingPlan) {
	d.plan, d.planErr = p, nil
}

// PlanFailed records that the plan could not be fetched.
func (d *SettingsDraft) PlanFailed(err error) {
	d.plan, d.planErr = nil, err
}

// Plan returns the plan, whether loading finished, and the loading error.
func (d *SettingsDraft) Plan() (*ScheduledFeedingPlan, bool, error) {
	return d.plan, d.plan != nil || d.planErr != nil, d.planErr
}

// SetPlan replaces the plan and marks it dirty.
func (d *SettingsDraft) SetPlan(p *ScheduledFeedingPlan) {
	d.plan, d.planErr = p, nil
	d.planDirty = true
}

// EditPlan applies fn to a copy of the current plan (empty if none was
// loaded) and replaces the plan with it when fn succeeds.
func (d *SettingsDraft) EditPlan(fn func(p *ScheduledFeedingPlan) error) error {
	next := &ScheduledFeedingPlan{}
	if d.plan != nil {
		next = d.plan.Clone()
	}
	if err := fn(next); err != nil {
		return err
	}
	d.SetPlan(next)
	return nil
}

// PlanDirty reports whether the plan was replaced since it was loaded.
func (d *SettingsDraft) PlanDirty() bool { return d.planDirty && d.plan != nil }
