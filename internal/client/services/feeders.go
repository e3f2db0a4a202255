package services

import (
	"context"

	"github.com/dmitrijs2005/aln/internal/client/client"
	"github.com/dmitrijs2005/aln/internal/client/models"
	"github.com/dmitrijs2005/aln/internal/logging"
)

// Feeders runs feeder operations on behalf of the signed-in user.
type Feeders struct {
	client client.Client
	log    logging.Logger
}

func NewFeeders(c client.Client, log logging.Logger) *Feeders {
	return &Feeders{client: c, log: log.With("component", "feeders")}
}

// CheckStatus fetches the device status. Any failure yields an Unknown state.
func (s *Feeders) CheckStatus(ctx context.Context, f *models.Feeder) models.FeederState {
	st, err := s.client.GetFeederStatus(ctx, f.ID)
	if err != nil {
		s.log.Warn(ctx, "feeder status", "feeder", f.ID, "error", err)
		return models.FeederState{Availability: models.Unknown}
	}
	return st
}

// FeedNow asks the feeder to serve grams. An out-of-range amount is rejected
// before any request is made; a failed or refused request reports false.
func (s *Feeders) FeedNow(ctx context.Context, f *models.Feeder, grams int) (bool, error) {
	amount, err := models.NewAmount(grams)
	if err != nil {
		return false, err
	}

	resp, err := s.client.FeedNow(ctx, f.ID, amount)
	if err != nil {
		s.log.Warn(ctx, "feed now", "feeder", f.ID, "error", err)
		return false, nil
	}
	return resp.Success, nil
}

// LoadPlan fetches the feeding plan into d.
func (s *Feeders) LoadPlan(ctx context.Context, f *models.Feeder, d *models.SettingsDraft) {
	plan, err := s.client.GetFeederPlan(ctx, f.ID)
	if err != nil {
		s.log.Warn(ctx, "load plan", "feeder", f.ID, "error", err)
		d.PlanFailed(err)
		return
	}
	d.PlanLoaded(plan)
}
