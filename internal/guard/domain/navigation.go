package domain

import "time"

// NavigationEvent is one qualifying main-frame navigation.
type NavigationEvent struct {
	URL   string `json:"url"`
	TabID int    `json:"tabId"`
}

// Action is the engine's decision for a navigation event.
type Action string

const (
	// ActionSkipped means the event was rejected before classification
	// (non-http(s) scheme or unparseable hostname). No state changed.
	ActionSkipped Action = "SKIPPED"
	ActionAllow   Action = "ALLOW"
	ActionWarn    Action = "WARN"
	ActionBlock   Action = "BLOCK"
)

// Classification is the pure verdict of the static pattern rules for a
// hostname. Scheme security is decided by the caller, not the rules.
type Classification struct {
	Threat  bool `json:"threat"`
	Adult   bool `json:"adult"`
	Tracker bool `json:"tracker"`
}

// Warning instructs the caller to show a transient in-page overlay.
type Warning struct {
	Kind WarningKind   `json:"kind"`
	TTL  time.Duration `json:"ttl"`
}

// Notification instructs the caller to raise a user notification.
// Only emitted when terminal notifications are enabled.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Outcome is everything the engine wants done after handling one event.
// Side effects are instructions to the caller; delivery failures are the
// caller's to swallow and log.
type Outcome struct {
	Action       Action         `json:"action"`
	Hostname     string         `json:"hostname,omitempty"`
	Level        ThreatLevel    `json:"threatLevel,omitempty"`
	Record       *SiteRecord    `json:"record,omitempty"`
	RedirectURL  string         `json:"redirectUrl,omitempty"`
	Warning      *Warning       `json:"warning,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
	Trust        int            `json:"trustScore"`
	Verdict      Classification `json:"verdict"`
}

// ThreatStatus is the transient process-wide threat triple reported to the
// dashboard. It is reset on every restart of the background process.
type ThreatStatus struct {
	ThreatLevel       ThreatLevel `json:"threatLevel"`
	SecureConnections int         `json:"secureConnections"`
	BlockedThreats    int         `json:"blockedThreats"`
}
