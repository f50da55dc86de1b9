// Package analytics manages the persisted rolling session log and its
// derived security score. Appends are serialized through the state queue
// so interleaved handlers cannot drop each other's data points.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
)

// Repository mediates access to the persisted Analytics singleton.
type Repository struct {
	store  state.Store
	queue  *state.Queue
	logger log.Logger
}

// New constructs an analytics Repository.
func New(store state.Store, queue *state.Queue, logger log.Logger) *Repository {
	return &Repository{store: store, queue: queue, logger: logger}
}

// Record appends one data point, evicts past the ring capacity, applies
// the score adjustment, and persists. The whole sequence runs as one
// critical section over the analytics key.
func (r *Repository) Record(ctx context.Context, p domain.DataPoint) error {
	return r.queue.Do(ctx, state.KeyAnalytics, func(ctx context.Context) error {
		a, err := r.load(ctx)
		if err != nil {
			return err
		}
		a.Append(p)
		return r.persist(ctx, a)
	})
}

// Snapshot returns the current analytics state for the dashboard.
func (r *Repository) Snapshot(ctx context.Context) (domain.Analytics, error) {
	return r.load(ctx)
}

// Reset clears the session log and restores the score to its maximum.
// Only an explicit user action calls this.
func (r *Repository) Reset(ctx context.Context) error {
	return r.queue.Do(ctx, state.KeyAnalytics, func(ctx context.Context) error {
		return r.persist(ctx, domain.DefaultAnalytics())
	})
}

func (r *Repository) load(ctx context.Context) (domain.Analytics, error) {
	raw, found, err := r.store.Get(ctx, state.KeyAnalytics)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("load analytics: %w", err)
	}
	if !found {
		return domain.DefaultAnalytics(), nil
	}
	var a domain.Analytics
	if err := json.Unmarshal(raw, &a); err != nil {
		r.logger.Error(map[string]any{"error": err.Error()}, "corrupt analytics blob, resetting")
		return domain.DefaultAnalytics(), nil
	}
	return a, nil
}

func (r *Repository) persist(ctx context.Context, a domain.Analytics) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analytics: %w", err)
	}
	if err := r.store.Set(ctx, state.KeyAnalytics, raw); err != nil {
		return fmt.Errorf("persist analytics: %w", err)
	}
	return nil
}
