package domain

import (
	"strings"
	"time"
)

// SiteRecord is a single blocked-site entry. Records are overwritten on
// repeat blocks, never merged, so the timestamp always reflects the most
// recent block decision.
type SiteRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Reason    BlockReason `json:"reason"`
	Severity  Severity    `json:"threatLevel"`
}

// Expired reports whether the record is older than the retention window
// as of now. Records with a zero timestamp are considered malformed and
// never expire here; the sweep skips them instead of guessing.
func (r SiteRecord) Expired(now time.Time, retention time.Duration) bool {
	if r.Timestamp.IsZero() {
		return false
	}
	return now.Sub(r.Timestamp) > retention
}

// FortressConfig is the persisted blocking configuration singleton.
//
// Invariant: a hostname never appears in both BlockedSites and Whitelist.
// The whitelist wins; enforcement lives in the repository and engine, not
// in storage.
type FortressConfig struct {
	Enabled           bool                  `json:"enabled"`
	BlockAdultContent bool                  `json:"blockAdultContent"`
	BlockedSites      map[string]SiteRecord `json:"blockedSites"`
	Whitelist         []string              `json:"whitelist"`
	QuarantinedURLs   []string              `json:"quarantinedUrls"`
}

// DefaultFortress returns the install-time fortress configuration.
func DefaultFortress() FortressConfig {
	return FortressConfig{
		Enabled:           true,
		BlockAdultContent: true,
		BlockedSites:      map[string]SiteRecord{},
		Whitelist:         []string{},
		QuarantinedURLs:   []string{},
	}
}

// IsWhitelisted reports whether hostname is on the whitelist.
// Comparison is case-insensitive on a lowered hostname.
func (f FortressConfig) IsWhitelisted(hostname string) bool {
	h := strings.ToLower(strings.TrimSpace(hostname))
	for _, w := range f.Whitelist {
		if strings.ToLower(w) == h {
			return true
		}
	}
	return false
}

// CyberSettings is the persisted user settings singleton. The theme fields
// round-trip for the UI but have no behavioral effect in the engine.
type CyberSettings struct {
	MatrixMode            bool   `json:"matrixMode"`
	GlitchEffects         bool   `json:"glitchEffects"`
	TerminalNotifications bool   `json:"terminalNotifications"`
	QuantumEncryption     bool   `json:"quantumEncryption"`
	NeonTheme             string `json:"neonTheme"`
	BlockTrackers         bool   `json:"blockTrackers"`
	RealTimeProtection    bool   `json:"realTimeProtection"`
	Sensitivity           string `json:"sensitivity"`
}

// DefaultSettings returns the install-time settings.
func DefaultSettings() CyberSettings {
	return CyberSettings{
		MatrixMode:            true,
		GlitchEffects:         true,
		TerminalNotifications: true,
		QuantumEncryption:     true,
		NeonTheme:             "green",
		BlockTrackers:         true,
		RealTimeProtection:    true,
		Sensitivity:           "balanced",
	}
}
