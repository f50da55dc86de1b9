package engine

import (
	"context"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

// FortressRepo is the slice of the fortress repository the engine needs.
type FortressRepo interface {
	Load(ctx context.Context) (domain.FortressConfig, error)
	Block(ctx context.Context, hostname string, reason domain.BlockReason) (domain.SiteRecord, error)
	Unblock(ctx context.Context, hostname string) error
	AddWhitelist(ctx context.Context, hostname string) error
}

// AnalyticsRepo records classified events into the rolling session log.
type AnalyticsRepo interface {
	Record(ctx context.Context, p domain.DataPoint) error
	Snapshot(ctx context.Context) (domain.Analytics, error)
	Reset(ctx context.Context) error
}

// SettingsRepo supplies the active user settings.
type SettingsRepo interface {
	Load(ctx context.Context) (domain.CyberSettings, error)
}

// GeoLookup is the optional geolocation enrichment collaborator. A nil
// GeoLookup disables enrichment entirely.
type GeoLookup interface {
	Lookup(ctx context.Context, hostname string) (domain.Geolocation, error)
}
