// Package reaper runs the periodic maintenance sweep that expires stale
// fortress block entries. One sweep either completes and persists or
// fails without partial state; the next tick retries from scratch.
package reaper

import (
	"context"
	"time"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
)

// Sweeper is the slice of the fortress repository the reaper needs.
type Sweeper interface {
	Sweep(ctx context.Context, retention time.Duration) (int, error)
}

// Reaper prunes expired block records on a fixed interval.
type Reaper struct {
	sweeper   Sweeper
	interval  time.Duration
	retention time.Duration
	logger    log.Logger
}

// Options configures a Reaper.
type Options struct {
	Sweeper   Sweeper
	Interval  time.Duration // sweep cadence; default 5m
	Retention time.Duration // block record lifetime; default 24h
	Logger    log.Logger
}

// New constructs a Reaper.
func New(opts Options) *Reaper {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Reaper{
		sweeper:   opts.Sweeper,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Run sweeps on every tick until the context is cancelled. Sweep errors
// are logged and survived; the loop must outlive any transient storage
// failure.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info(map[string]any{
		"interval":  r.interval.String(),
		"retention": r.retention.String(),
	}, "maintenance reaper started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info(nil, "maintenance reaper stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep, logging the outcome.
func (r *Reaper) RunOnce(ctx context.Context) {
	removed, err := r.sweeper.Sweep(ctx, r.retention)
	if err != nil {
		r.logger.Error(map[string]any{"error": err.Error()}, "sweep failed")
		return
	}
	if removed > 0 {
		r.logger.Info(map[string]any{"removed": removed}, "expired block records pruned")
	}
}
