// Package engine implements the site-classification and fortress-blocking
// decision engine. It consumes navigation events and user reports, asks
// the pure rules for a verdict, drives the transient threat state machine,
// and instructs the repositories to persist outcomes. Side effects
// (redirects, overlays, notifications) are returned as instructions for
// the caller; delivery failures are expected races, not defects.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/clock"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/urlx"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/fortress"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/rules"
)

// warnOverlayTTL is how long the transient in-page warning overlay stays up.
const warnOverlayTTL = 7 * time.Second

const defaultVerdictCacheSize = 512

// Engine is the decision engine. Construct with New.
type Engine struct {
	fortress  FortressRepo
	analytics AnalyticsRepo
	settings  SettingsRepo
	geo       GeoLookup
	store     state.Store
	queue     *state.Queue
	clock     clock.Clock
	logger    log.Logger

	// verdicts memoizes the pure classification per hostname.
	verdicts *lru.Cache[string, domain.Classification]

	shieldPath string
	state      *threatState
}

// Options configures an Engine.
type Options struct {
	Fortress  FortressRepo
	Analytics AnalyticsRepo
	Settings  SettingsRepo
	Geo       GeoLookup // nil disables enrichment
	Store     state.Store
	Queue     *state.Queue
	Clock     clock.Clock
	Logger    log.Logger

	// ShieldPath is the local shield resource blocked tabs are sent to.
	ShieldPath string
	// VerdictCacheSize bounds the per-hostname verdict cache.
	VerdictCacheSize int
}

// New constructs an Engine. The transient threat state starts at GREEN
// with zero counters on every process start.
func New(opts Options) (*Engine, error) {
	size := opts.VerdictCacheSize
	if size <= 0 {
		size = defaultVerdictCacheSize
	}
	verdicts, err := lru.New[string, domain.Classification](size)
	if err != nil {
		return nil, fmt.Errorf("verdict cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	shield := opts.ShieldPath
	if shield == "" {
		shield = "/shield"
	}
	return &Engine{
		fortress:   opts.Fortress,
		analytics:  opts.Analytics,
		settings:   opts.Settings,
		geo:        opts.Geo,
		store:      opts.Store,
		queue:      opts.Queue,
		clock:      opts.Clock,
		logger:     logger,
		verdicts:   verdicts,
		shieldPath: shield,
		state:      newThreatState(),
	}, nil
}

// Status returns the transient threat triple for the dashboard.
func (e *Engine) Status() domain.ThreatStatus {
	return e.state.status()
}

// HandleNavigation classifies one navigation event and decides the action.
// Non-web URLs and unparseable hostnames are skipped: no state change, no
// error, a debug trace at most. Storage failures abort only this event.
func (e *Engine) HandleNavigation(ctx context.Context, ev domain.NavigationEvent) (domain.Outcome, error) {
	if !urlx.IsWebURL(ev.URL) {
		return domain.Outcome{Action: domain.ActionSkipped}, nil
	}
	parsed, err := urlx.Parse(ev.URL)
	if err != nil {
		e.logger.Debug(map[string]any{"url": ev.URL, "error": err.Error()}, "skipping unparseable navigation")
		return domain.Outcome{Action: domain.ActionSkipped}, nil
	}
	host := parsed.Hostname

	cfg, err := e.fortress.Load(ctx)
	if err != nil {
		e.logger.Error(map[string]any{"hostname": host, "error": err.Error()}, "fortress load failed, event dropped")
		return domain.Outcome{}, err
	}
	settings, err := e.settings.Load(ctx)
	if err != nil {
		e.logger.Error(map[string]any{"hostname": host, "error": err.Error()}, "settings load failed, event dropped")
		return domain.Outcome{}, err
	}

	verdict := e.classify(host)
	trust := rules.TrustScore(host, domain.TechnicalData{IsSecure: parsed.Secure})

	out := domain.Outcome{
		Action:   domain.ActionAllow,
		Hostname: host,
		Verdict:  verdict,
		Trust:    trust,
	}

	// Strict priority order, first match wins. The whitelist is consulted
	// before any classification rule.
	switch {
	case cfg.IsWhitelisted(host):
		if parsed.Secure {
			e.state.recordSecure()
		}

	case verdict.Threat:
		e.blockSite(ctx, &out, host, domain.ReasonThreatDetected, settings)

	case verdict.Adult && cfg.BlockAdultContent:
		e.blockSite(ctx, &out, host, domain.ReasonAdultContentBlocked, settings)

	case verdict.Tracker && settings.BlockTrackers:
		// Trackers warn instead of hard-blocking so sites that embed them
		// alongside primary content keep working.
		e.state.recordWarning(true)
		out.Action = domain.ActionWarn
		out.Warning = &domain.Warning{Kind: domain.WarnTracker, TTL: warnOverlayTTL}

	case !parsed.Secure && host != "localhost":
		e.state.recordWarning(false)
		out.Action = domain.ActionWarn
		out.Warning = &domain.Warning{Kind: domain.WarnInsecure, TTL: warnOverlayTTL}

	default:
		e.state.recordSecure()
	}

	out.Level = e.state.current()

	point := domain.DataPoint{
		Timestamp:      e.clock.Now(),
		Hostname:       host,
		Secure:         parsed.Secure,
		ThreatDetected: verdict.Threat,
		AdultContent:   verdict.Adult,
		Tracker:        verdict.Tracker,
		ThreatLevel:    out.Level,
	}
	if err := e.analytics.Record(ctx, point); err != nil {
		e.logger.Error(map[string]any{"hostname": host, "error": err.Error()}, "analytics record failed")
	}

	return out, nil
}

// blockSite executes the block path for an automatic detection: threat
// state goes RED, the fortress record is upserted, and the outcome picks
// up the redirect instruction plus an optional notification. A storage
// failure keeps the redirect (the verdict stands regardless of
// bookkeeping) but drops the record.
func (e *Engine) blockSite(ctx context.Context, out *domain.Outcome, host string, reason domain.BlockReason, settings domain.CyberSettings) {
	e.state.recordThreat()
	out.Action = domain.ActionBlock
	out.RedirectURL = e.shieldURL(host, reason)

	rec, err := e.fortress.Block(ctx, host, reason)
	switch {
	case errors.Is(err, fortress.ErrWhitelisted):
		// Lost the race against a concurrent whitelist addition; the
		// whitelist wins.
		out.Action = domain.ActionAllow
		out.RedirectURL = ""
		return
	case err != nil:
		e.logger.Error(map[string]any{"hostname": host, "reason": reason, "error": err.Error()}, "block persist failed")
	default:
		out.Record = &rec
	}

	if settings.TerminalNotifications {
		out.Notification = &domain.Notification{
			Title:   "THREAT NEUTRALIZED",
			Message: fmt.Sprintf("Digital fortress blocked: %s", host),
		}
	}
}

// ActivateFortress is the user-initiated block trigger. Manual triggers
// always block, never merely warn; only the whitelist can refuse them.
func (e *Engine) ActivateFortress(ctx context.Context, hostname string) (domain.Outcome, error) {
	return e.manualBlock(ctx, hostname, domain.ReasonUserActivated)
}

// ReportAdultContent handles an adult-content report from a page scanner.
// Like all manual/report triggers it goes straight to the block path.
func (e *Engine) ReportAdultContent(ctx context.Context, hostname string) (domain.Outcome, error) {
	return e.manualBlock(ctx, hostname, domain.ReasonAdultContentBlocked)
}

func (e *Engine) manualBlock(ctx context.Context, hostname string, reason domain.BlockReason) (domain.Outcome, error) {
	host := urlx.CanonicalHostname(hostname)
	if host == "" {
		return domain.Outcome{}, fmt.Errorf("manual block: empty hostname")
	}

	rec, err := e.fortress.Block(ctx, host, reason)
	if err != nil {
		return domain.Outcome{}, err
	}
	e.state.recordThreat()

	out := domain.Outcome{
		Action:      domain.ActionBlock,
		Hostname:    host,
		Level:       e.state.current(),
		Record:      &rec,
		RedirectURL: e.shieldURL(host, reason),
	}
	if settings, err := e.settings.Load(ctx); err == nil && settings.TerminalNotifications {
		out.Notification = &domain.Notification{
			Title:   "THREAT NEUTRALIZED",
			Message: fmt.Sprintf("Digital fortress blocked: %s", host),
		}
	}

	point := domain.DataPoint{
		Timestamp:      e.clock.Now(),
		Hostname:       host,
		ThreatDetected: reason == domain.ReasonThreatDetected,
		AdultContent:   reason == domain.ReasonAdultContentBlocked,
		ThreatLevel:    out.Level,
	}
	if err := e.analytics.Record(ctx, point); err != nil {
		e.logger.Error(map[string]any{"hostname": host, "error": err.Error()}, "analytics record failed")
	}

	return out, nil
}

// Unblock removes a blocked site on explicit user request.
func (e *Engine) Unblock(ctx context.Context, hostname string) error {
	return e.fortress.Unblock(ctx, hostname)
}

// Whitelist adds a hostname to the whitelist, displacing any block record.
func (e *Engine) Whitelist(ctx context.Context, hostname string) error {
	return e.fortress.AddWhitelist(ctx, hostname)
}

// Fortress exposes the current persisted fortress configuration.
func (e *Engine) Fortress(ctx context.Context) (domain.FortressConfig, error) {
	return e.fortress.Load(ctx)
}

// Analytics exposes the current analytics snapshot.
func (e *Engine) Analytics(ctx context.Context) (domain.Analytics, error) {
	return e.analytics.Snapshot(ctx)
}

// ResetAnalytics clears the session log on explicit user request.
func (e *Engine) ResetAnalytics(ctx context.Context) error {
	return e.analytics.Reset(ctx)
}

// classify returns the memoized pure verdict for a hostname.
func (e *Engine) classify(host string) domain.Classification {
	if v, ok := e.verdicts.Get(host); ok {
		return v
	}
	v := rules.Classify(host)
	e.verdicts.Add(host, v)
	return v
}

// shieldURL builds the local shield redirect target with the blocked
// hostname and reason as query parameters.
func (e *Engine) shieldURL(host string, reason domain.BlockReason) string {
	q := url.Values{}
	q.Set("blocked", host)
	q.Set("reason", string(reason))
	return e.shieldPath + "?" + q.Encode()
}
