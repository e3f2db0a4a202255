package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/aln/internal/client/models"
)

// StatusPoller refreshes a feeder's status on a fixed interval.
type StatusPoller struct {
	feeders  *Feeders
	interval time.Duration
}

func NewStatusPoller(f *Feeders, interval time.Duration) *StatusPoller {
	return &StatusPoller{feeders: f, interval: interval}
}

// Run checks immediately, then on every tick, until ctx is done. update is
// called from the polling goroutine.
func (p *StatusPoller) Run(ctx context.Context, f *models.Feeder, update func(models.FeederState)) {
	update(p.feeders.CheckStatus(ctx, f))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st := p.feeders.CheckStatus(ctx, f)
			if ctx.Err() != nil {
				return
			}
			update(st)
		case <-ctx.Done():
			return
		}
	}
}
