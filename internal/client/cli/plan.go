package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/aln/internal/client/models"
)

var errPlanUsage = errors.New("usage: plan [show | add HH:MM grams | now grams | remove N... | enable N | disable N]")

// ensurePlan loads the plan into d on first use.
func (a *App) ensurePlan(ctx context.Context, f *models.Feeder, d *models.SettingsDraft) (*models.ScheduledFeedingPlan, error) {
	if _, done, _ := d.Plan(); !done {
		a.feeders.LoadPlan(ctx, f, d)
	}
	plan, _, err := d.Plan()
	if err != nil {
		return nil, fmt.Errorf("feeding plan unavailable: %w", err)
	}
	return plan, nil
}

// Plan shows or edits the feeding plan of the selected feeder. Edits stay
// local until "save".
func (a *App) Plan(ctx context.Context, args []string) error {
	f, d, err := a.selection()
	if err != nil {
		return err
	}
	plan, err := a.ensurePlan(ctx, f, d)
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "show" {
		a.printPlan(plan)
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errPlanUsage
		}
		at, err := models.ParseClock(args[1])
		if err != nil {
			return err
		}
		return a.addMeal(d, at, args[2])

	case "now":
		if len(args) != 2 {
			return errPlanUsage
		}
		return a.addMeal(d, models.TimeFromDate(time.Now()), args[1])

	case "remove":
		if len(args) < 2 {
			return errPlanUsage
		}
		indices, err := mealIndices(plan, args[1:])
		if err != nil {
			return err
		}
		return d.EditPlan(func(p *models.ScheduledFeedingPlan) error {
			p.RemoveAt(indices...)
			return nil
		})

	case "enable", "disable":
		if len(args) != 2 {
			return errPlanUsage
		}
		indices, err := mealIndices(plan, args[1:])
		if err != nil {
			return err
		}
		return d.EditPlan(func(p *models.ScheduledFeedingPlan) error {
			m, _ := p.At(indices[0])
			m.Enabled = args[0] == "enable"
			return p.Replace(indices[0], m)
		})
	}
	return errPlanUsage
}

func (a *App) addMeal(d *models.SettingsDraft, at models.Time, grams string) error {
	n, err := strconv.Atoi(grams)
	if err != nil {
		return fmt.Errorf("invalid amount %q", grams)
	}
	amount, err := models.NewAmount(n)
	if err != nil {
		return err
	}
	return d.EditPlan(func(p *models.ScheduledFeedingPlan) error {
		return p.Add(models.NewScheduledMeal(amount, at, true))
	})
}

// mealIndices converts 1-based meal numbers as shown by printPlan.
func mealIndices(plan *models.ScheduledFeedingPlan, args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > plan.Len() {
			return nil, fmt.Errorf("no meal number %s", s)
		}
		out = append(out, n-1)
	}
	return out, nil
}

func (a *App) printPlan(plan *models.ScheduledFeedingPlan) {
	if plan.Len() == 0 {
		fmt.Fprintln(a.out, "No meal scheduled")
		return
	}
	for i, m := range plan.Meals() {
		state := "on"
		if !m.Enabled {
			state = "off"
		}
		fmt.Fprintf(a.out, "%2d  %s  %3d g  %s\n", i+1, m.Time, m.Amount.Value(), state)
	}
	fmt.Fprintf(a.out, "%d meal(s) enabled, %d g per day\n", plan.EnabledCount(), plan.TotalEnabledAmount())
}

// Set edits the name or default amount of the selected feeder. The default
// amount saturates at its bounds.
func (a *App) Set(_ context.Context, args []string) error {
	_, d, err := a.selection()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("usage: set name <name> | set amount <grams>")
	}

	switch args[0] {
	case "name":
		d.Name = strings.Join(args[1:], " ")
	case "amount":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		d.SetDefaultAmount(n)
		fmt.Fprintf(a.out, "Default amount: %d g\n", d.DefaultAmount().Value())
	default:
		return errors.New("usage: set name <name> | set amount <grams>")
	}
	return nil
}

// draftChanged reports pending edits. a.mu must be held.
func (a *App) draftChanged() bool {
	d := a.draft
	return d.NameChanged() || d.DefaultAmountChanged() || d.PlanDirty()
}

// Save pushes pending edits of the selected feeder.
func (a *App) Save(ctx context.Context) error {
	f, d, err := a.selection()
	if err != nil {
		return err
	}

	if !a.feeders.SaveSettings(ctx, f, d) {
		return errors.New("some settings could not be saved")
	}

	fresh := models.NewSettingsDraft(f)
	if plan, _, planErr := d.Plan(); plan != nil {
		fresh.PlanLoaded(plan)
	} else if planErr != nil {
		fresh.PlanFailed(planErr)
	}

	a.mu.Lock()
	if a.current == f {
		a.draft = fresh
	}
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Saved")
	return nil
}

// Discard drops pending edits of the selected feeder.
func (a *App) Discard(context.Context) error {
	f, _, err := a.selection()
	if err != nil {
		return err
	}
	a.mu.Lock()
	if a.current == f {
		a.draft = models.NewSettingsDraft(f)
	}
	a.mu.Unlock()
	return nil
}
