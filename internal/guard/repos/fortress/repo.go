// Package fortress owns the persisted blocking configuration: the blocked
// sites map, the whitelist, and the fortress toggles. All mutations are
// read-modify-write critical sections serialized through the state queue;
// nothing else in the process writes the fortress key.
package fortress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/clock"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/urlx"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
)

// ErrWhitelisted is returned by Block when the hostname is whitelisted.
// The whitelist always wins; no mutation happens.
var ErrWhitelisted = errors.New("hostname is whitelisted")

// Repository mediates access to the persisted FortressConfig.
type Repository struct {
	store  state.Store
	queue  *state.Queue
	clock  clock.Clock
	logger log.Logger
}

// New constructs a fortress Repository.
func New(store state.Store, queue *state.Queue, clk clock.Clock, logger log.Logger) *Repository {
	return &Repository{store: store, queue: queue, clock: clk, logger: logger}
}

// Load returns the persisted configuration, or defaults when the key is
// absent. A corrupt blob is logged and replaced by defaults rather than
// failing the caller.
func (r *Repository) Load(ctx context.Context) (domain.FortressConfig, error) {
	raw, found, err := r.store.Get(ctx, state.KeyFortress)
	if err != nil {
		return domain.FortressConfig{}, fmt.Errorf("load fortress config: %w", err)
	}
	if !found {
		return domain.DefaultFortress(), nil
	}
	var cfg domain.FortressConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		r.logger.Error(map[string]any{"error": err.Error()}, "corrupt fortress config, using defaults")
		return domain.DefaultFortress(), nil
	}
	if cfg.BlockedSites == nil {
		cfg.BlockedSites = map[string]domain.SiteRecord{}
	}
	return cfg, nil
}

// EnsureDefaults persists the default configuration if none exists yet.
// Called once at startup.
func (r *Repository) EnsureDefaults(ctx context.Context) error {
	return r.queue.Do(ctx, state.KeyFortress, func(ctx context.Context) error {
		_, found, err := r.store.Get(ctx, state.KeyFortress)
		if err != nil {
			return fmt.Errorf("check fortress config: %w", err)
		}
		if found {
			return nil
		}
		return r.persist(ctx, domain.DefaultFortress())
	})
}

// Block upserts a SiteRecord for hostname. Repeat blocks overwrite the
// prior record, so the stored timestamp and reason are always the latest.
// Whitelisted hostnames return ErrWhitelisted with no mutation.
func (r *Repository) Block(ctx context.Context, hostname string, reason domain.BlockReason) (domain.SiteRecord, error) {
	host := urlx.CanonicalHostname(hostname)
	if host == "" {
		return domain.SiteRecord{}, fmt.Errorf("block: empty hostname")
	}

	var rec domain.SiteRecord
	err := r.queue.Do(ctx, state.KeyFortress, func(ctx context.Context) error {
		cfg, err := r.Load(ctx)
		if err != nil {
			return err
		}
		if cfg.IsWhitelisted(host) {
			return ErrWhitelisted
		}
		rec = domain.SiteRecord{
			Timestamp: r.clock.Now(),
			Reason:    reason,
			Severity:  reason.Severity(),
		}
		cfg.BlockedSites[host] = rec
		return r.persist(ctx, cfg)
	})
	if err != nil {
		return domain.SiteRecord{}, err
	}
	r.logger.Info(map[string]any{"hostname": host, "reason": reason}, "site blocked")
	return rec, nil
}

// Unblock removes the record for hostname, if any. Removing an unknown
// hostname is a no-op, not an error.
func (r *Repository) Unblock(ctx context.Context, hostname string) error {
	host := urlx.CanonicalHostname(hostname)
	return r.queue.Do(ctx, state.KeyFortress, func(ctx context.Context) error {
		cfg, err := r.Load(ctx)
		if err != nil {
			return err
		}
		if _, ok := cfg.BlockedSites[host]; !ok {
			return nil
		}
		delete(cfg.BlockedSites, host)
		return r.persist(ctx, cfg)
	})
}

// AddWhitelist puts hostname on the whitelist and drops any blocked
// record for it, keeping the two sets disjoint.
func (r *Repository) AddWhitelist(ctx context.Context, hostname string) error {
	host := urlx.CanonicalHostname(hostname)
	if host == "" {
		return fmt.Errorf("whitelist: empty hostname")
	}
	return r.queue.Do(ctx, state.KeyFortress, func(ctx context.Context) error {
		cfg, err := r.Load(ctx)
		if err != nil {
			return err
		}
		if cfg.IsWhitelisted(host) {
			if _, blocked := cfg.BlockedSites[host]; !blocked {
				return nil
			}
			delete(cfg.BlockedSites, host)
			return r.persist(ctx, cfg)
		}
		cfg.Whitelist = append(cfg.Whitelist, host)
		delete(cfg.BlockedSites, host)
		return r.persist(ctx, cfg)
	})
}

// Sweep removes blocked records older than retention and returns how many
// were dropped. Records with a zero timestamp are skipped, not failed.
// The result is persisted only when something was removed; a failed sweep
// persists nothing and the next tick retries from scratch.
func (r *Repository) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	removed := 0
	err := r.queue.Do(ctx, state.KeyFortress, func(ctx context.Context) error {
		cfg, err := r.Load(ctx)
		if err != nil {
			return err
		}
		now := r.clock.Now()
		for host, rec := range cfg.BlockedSites {
			if rec.Expired(now, retention) {
				delete(cfg.BlockedSites, host)
				removed++
			}
		}
		if removed == 0 {
			return nil
		}
		return r.persist(ctx, cfg)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *Repository) persist(ctx context.Context, cfg domain.FortressConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode fortress config: %w", err)
	}
	if err := r.store.Set(ctx, state.KeyFortress, raw); err != nil {
		return fmt.Errorf("persist fortress config: %w", err)
	}
	return nil
}
