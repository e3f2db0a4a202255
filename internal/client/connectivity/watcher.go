// Package connectivity turns periodic reachability probes into a stream of
// online/offline changes.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/aln/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher probes at a fixed interval and calls OnChange only when
// reachability flips. The first probe always reports.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	onChange func(online bool)
	log      logging.Logger

	mu    sync.Mutex
	known bool
	state bool
}

func NewWatcher(p Pinger, interval time.Duration, onChange func(online bool), log logging.Logger) *Watcher {
	return &Watcher{
		pinger:   p,
		interval: interval,
		timeout:  3 * time.Second,
		onChange: onChange,
		log:      log,
	}
}

// Online returns the last observed reachability and whether any probe ran yet.
func (w *Watcher) Online() (online, known bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.known
}

// Check probes once.
func (w *Watcher) Check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	online := err == nil

	w.mu.Lock()
	changed := !w.known || w.state != online
	w.known, w.state = true, online
	w.mu.Unlock()

	if !changed {
		return
	}
	if online {
		w.log.Info(ctx, "backend reachable")
	} else {
		w.log.Warn(ctx, "backend unreachable", "error", err)
	}
	w.onChange(online)
}

// Run probes immediately and then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
