// Package settings manages the persisted user settings singleton.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
)

// Repository mediates access to the persisted CyberSettings.
type Repository struct {
	store  state.Store
	queue  *state.Queue
	logger log.Logger
}

// New constructs a settings Repository.
func New(store state.Store, queue *state.Queue, logger log.Logger) *Repository {
	return &Repository{store: store, queue: queue, logger: logger}
}

// Load returns the persisted settings, or defaults when absent or corrupt.
// Classification must keep working on a broken settings blob, so load
// errors other than storage failure degrade to defaults.
func (r *Repository) Load(ctx context.Context) (domain.CyberSettings, error) {
	raw, found, err := r.store.Get(ctx, state.KeySettings)
	if err != nil {
		return domain.CyberSettings{}, fmt.Errorf("load settings: %w", err)
	}
	if !found {
		return domain.DefaultSettings(), nil
	}
	var s domain.CyberSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		r.logger.Error(map[string]any{"error": err.Error()}, "corrupt settings blob, using defaults")
		return domain.DefaultSettings(), nil
	}
	return s, nil
}

// Save persists the full settings blob, serialized on the settings key.
func (r *Repository) Save(ctx context.Context, s domain.CyberSettings) error {
	return r.queue.Do(ctx, state.KeySettings, func(ctx context.Context) error {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		if err := r.store.Set(ctx, state.KeySettings, raw); err != nil {
			return fmt.Errorf("persist settings: %w", err)
		}
		return nil
	})
}

// EnsureDefaults persists default settings if none exist yet.
func (r *Repository) EnsureDefaults(ctx context.Context) error {
	return r.queue.Do(ctx, state.KeySettings, func(ctx context.Context) error {
		_, found, err := r.store.Get(ctx, state.KeySettings)
		if err != nil {
			return fmt.Errorf("check settings: %w", err)
		}
		if found {
			return nil
		}
		raw, err := json.Marshal(domain.DefaultSettings())
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return r.store.Set(ctx, state.KeySettings, raw)
	})
}
