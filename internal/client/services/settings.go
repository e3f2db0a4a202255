package services

import (
	"context"

	"github.com/dmitrijs2005/aln/internal/client/client"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"golang.org/x/sync/errgroup"
)

type settingsOp struct {
	name  string
	call  func(ctx context.Context) (client.StatusResponse, error)
	apply func()
}

// SaveSettings pushes the edited settings of f. Only what changed is sent,
// the requests run concurrently, and each one the backend acknowledges is
// applied to f. The result is true only if every request succeeded; there is
// no rollback, so on false some changes may already be live.
func (s *Feeders) SaveSettings(ctx context.Context, f *models.Feeder, d *models.SettingsDraft) bool {
	var ops []settingsOp

	if d.NameChanged() {
		name := d.Name
		ops = append(ops, settingsOp{
			name: "name",
			call: func(ctx context.Context) (client.StatusResponse, error) {
				return s.client.SetFeederName(ctx, f.ID, name)
			},
			apply: func() { f.SetName(name) },
		})
	}

	if d.DefaultAmountChanged() {
		amount := d.DefaultAmount()
		ops = append(ops, settingsOp{
			name: "default_amount",
			call: func(ctx context.Context) (client.StatusResponse, error) {
				return s.client.SetFeederDefaultAmount(ctx, f.ID, amount)
			},
			apply: func() { f.SetDefaultAmount(amount) },
		})
	}

	if plan, _, _ := d.Plan(); d.PlanDirty() {
		plan = plan.Clone()
		ops = append(ops, settingsOp{
			name: "plan",
			call: func(ctx context.Context) (client.StatusResponse, error) {
				return s.client.SetFeederPlan(ctx, f.ID, plan)
			},
		})
	}

	if len(ops) == 0 {
		return true
	}

	ok := make([]bool, len(ops))
	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			resp, err := op.call(ctx)
			if err != nil {
				s.log.Warn(ctx, "save setting", "feeder", f.ID, "setting", op.name, "error", err)
				return nil
			}
			ok[i] = resp.Success
			return nil
		})
	}
	_ = g.Wait()

	all := true
	for i, op := range ops {
		if !ok[i] {
			all = false
			continue
		}
		if op.apply != nil {
			op.apply()
		}
	}
	if !all {
		s.log.Warn(ctx, "settings partially saved", "feeder", f.ID)
	}
	return all
}
