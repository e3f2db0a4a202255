package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/aln/internal/client/models"
)

var errNoFeeder = errors.New("no feeder selected (type 'use <id>')")

func (a *App) selection() (*models.Feeder, *models.SettingsDraft, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, nil, errNoFeeder
	}
	return a.current, a.draft, nil
}

// deselectLocked drops the current feeder. a.mu must be held.
func (a *App) deselectLocked() {
	if a.stopPolling != nil {
		a.stopPolling()
		a.stopPolling = nil
	}
	a.current, a.draft = nil, nil
	a.status = models.FeederState{}
}

// Feeders lists the feeders of the signed-in user.
func (a *App) Feeders(context.Context) error {
	u := a.auth.State().User
	if u == nil {
		return errNotSignedIn
	}
	if len(u.Feeders) == 0 {
		fmt.Fprintln(a.out, "No feeder associated with this account")
		return nil
	}

	a.mu.Lock()
	current := a.current
	a.mu.Unlock()

	for _, f := range u.Feeders {
		mark := " "
		if f == current {
			mark = "*"
		}
		amount := "-"
		if v, ok := f.DefaultAmount(); ok {
			amount = v.String() + " g"
		}
		fmt.Fprintf(a.out, "%s %d\t%s\tdefault %s\n", mark, f.ID, f.DisplayName(), amount)
	}
	return nil
}

// Use selects the feeder with the given id and starts polling its status.
func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use <feeder id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid feeder id %q", args[0])
	}
	u := a.auth.State().User
	if u == nil {
		return errNotSignedIn
	}
	f, ok := u.Feeder(id)
	if !ok {
		return fmt.Errorf("no feeder with id %d", id)
	}

	pollCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.deselectLocked()
	a.current = f
	a.draft = models.NewSettingsDraft(f)
	a.stopPolling = cancel
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Using %s\n", f.DisplayName())
	if a.poller != nil {
		go a.poller.Run(pollCtx, f, func(st models.FeederState) { a.setStatus(f, st) })
	}
	return nil
}

// setStatus records st for f and reports availability changes.
func (a *App) setStatus(f *models.Feeder, st models.FeederState) {
	a.mu.Lock()
	if a.current != f {
		a.mu.Unlock()
		return
	}
	prev := a.status
	a.status = st
	a.mu.Unlock()

	if prev.Availability != st.Availability {
		fmt.Fprintf(a.out, "%s is %s\n", f.DisplayName(), describeStatus(st))
	}
}

func describeStatus(st models.FeederState) string {
	if st.Availability == models.NotAvailable && st.LastReachDate != nil {
		return fmt.Sprintf("%s (last seen %s)", st.Availability, st.LastReachDate.Local().Format("2006-01-02 15:04"))
	}
	return st.Availability.String()
}

// Status checks the selected feeder right away.
func (a *App) Status(ctx context.Context) error {
	f, _, err := a.selection()
	if err != nil {
		return err
	}
	st := a.feeders.CheckStatus(ctx, f)

	a.mu.Lock()
	if a.current == f {
		a.status = st
	}
	a.mu.Unlock()

	fmt.Fprintf(a.out, "%s is %s\n", f.DisplayName(), describeStatus(st))
	return nil
}

// Feed serves a meal now. Without an argument the feeder's default amount
// is used.
func (a *App) Feed(ctx context.Context, args []string) error {
	f, _, err := a.selection()
	if err != nil {
		return err
	}

	grams := models.AmountMin
	if v, ok := f.DefaultAmount(); ok {
		grams = v.Value()
	}
	if len(args) > 0 {
		if grams, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
	}

	ok, err := a.feeders.FeedNow(ctx, f, grams)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(a.out, "%s got %d g\n", f.DisplayName(), grams)
	} else {
		fmt.Fprintf(a.out, "Could not reach %s\n", f.DisplayName())
	}
	return nil
}
