package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/clock"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/analytics"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/fortress"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/settings"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state/mem"
)

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	engine    *Engine
	store     *mem.Store
	clock     *clock.MockClock
	fortress  *fortress.Repository
	settings  *settings.Repository
	analytics *analytics.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := mem.New()
	queue := state.NewQueue()
	clk := &clock.MockClock{CurrentTime: testTime}
	logger := log.NewNoopLogger()

	fortressRepo := fortress.New(store, queue, clk, logger)
	analyticsRepo := analytics.New(store, queue, logger)
	settingsRepo := settings.New(store, queue, logger)

	eng, err := New(Options{
		Fortress:   fortressRepo,
		Analytics:  analyticsRepo,
		Settings:   settingsRepo,
		Store:      store,
		Queue:      queue,
		Clock:      clk,
		Logger:     logger,
		ShieldPath: "/shield",
	})
	require.NoError(t, err)

	return &testEnv{
		engine:    eng,
		store:     store,
		clock:     clk,
		fortress:  fortressRepo,
		settings:  settingsRepo,
		analytics: analyticsRepo,
	}
}

func (env *testEnv) navigate(t *testing.T, url string) domain.Outcome {
	t.Helper()
	out, err := env.engine.HandleNavigation(context.Background(), domain.NavigationEvent{URL: url, TabID: 7})
	require.NoError(t, err)
	return out
}

func TestHandleNavigation_ThreatScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out := env.navigate(t, "http://malware-test.com")

	assert.Equal(t, domain.ActionBlock, out.Action)
	assert.Equal(t, domain.LevelRed, out.Level)
	assert.Equal(t, "/shield?blocked=malware-test.com&reason=THREAT_DETECTED", out.RedirectURL)
	require.NotNil(t, out.Record)
	assert.Equal(t, domain.ReasonThreatDetected, out.Record.Reason)

	status := env.engine.Status()
	assert.Equal(t, 1, status.BlockedThreats)
	assert.Equal(t, domain.LevelRed, status.ThreatLevel)

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	rec, ok := cfg.BlockedSites["malware-test.com"]
	require.True(t, ok)
	assert.Equal(t, domain.ReasonThreatDetected, rec.Reason)
}

func TestHandleNavigation_InsecureScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out := env.navigate(t, "http://example.com")

	assert.Equal(t, domain.ActionWarn, out.Action)
	assert.Equal(t, domain.LevelYellow, out.Level)
	require.NotNil(t, out.Warning)
	assert.Equal(t, domain.WarnInsecure, out.Warning.Kind)
	assert.Empty(t, out.RedirectURL)

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.BlockedSites, "insecure connections warn, never block")
}

func TestHandleNavigation_WhitelistNeverBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Whitelist a hostname that matches a threat keyword.
	require.NoError(t, env.engine.Whitelist(ctx, "malware-research.example"))

	out := env.navigate(t, "https://malware-research.example/papers")
	assert.Equal(t, domain.ActionAllow, out.Action)
	assert.Empty(t, out.RedirectURL)

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.BlockedSites)
	assert.Zero(t, env.engine.Status().BlockedThreats)
}

func TestHandleNavigation_AdultContent(t *testing.T) {
	env := newTestEnv(t)

	out := env.navigate(t, "https://www.pornhub.com")
	assert.Equal(t, domain.ActionBlock, out.Action)
	require.NotNil(t, out.Record)
	assert.Equal(t, domain.ReasonAdultContentBlocked, out.Record.Reason)
	assert.Equal(t, domain.SeverityHigh, out.Record.Severity)
}

func TestHandleNavigation_AdultContentDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	cfg.BlockAdultContent = false
	require.NoError(t, env.saveFortress(ctx, cfg))

	out := env.navigate(t, "https://www.pornhub.com")
	assert.Equal(t, domain.ActionAllow, out.Action)
	assert.Nil(t, out.Record)
}

func TestHandleNavigation_TrackerWarnsAndCounts(t *testing.T) {
	env := newTestEnv(t)

	out := env.navigate(t, "https://stats.google-analytics.com/collect")
	assert.Equal(t, domain.ActionWarn, out.Action)
	require.NotNil(t, out.Warning)
	assert.Equal(t, domain.WarnTracker, out.Warning.Kind)
	assert.Equal(t, domain.LevelYellow, out.Level)
	assert.Equal(t, 1, env.engine.Status().BlockedThreats)
}

func TestHandleNavigation_TrackerBlockingDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := domain.DefaultSettings()
	s.BlockTrackers = false
	require.NoError(t, env.settings.Save(ctx, s))

	out := env.navigate(t, "https://stats.google-analytics.com/collect")
	assert.Equal(t, domain.ActionAllow, out.Action)
	assert.Nil(t, out.Warning)
}

func TestHandleNavigation_SkipsNonWebURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, raw := range []string{"chrome://settings", "about:blank", "ftp://files.example", ""} {
		out := env.navigate(t, raw)
		assert.Equal(t, domain.ActionSkipped, out.Action, "url %q", raw)
	}

	// Skipped events leave no trace: no counters, no analytics.
	assert.Equal(t, domain.ThreatStatus{ThreatLevel: domain.LevelGreen}, env.engine.Status())
	a, err := env.analytics.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, a.SessionData)
}

func TestHandleNavigation_LocalhostHTTPIsNotWarned(t *testing.T) {
	env := newTestEnv(t)

	out := env.navigate(t, "http://localhost:3000/dev")
	assert.Equal(t, domain.ActionAllow, out.Action)
	assert.Nil(t, out.Warning)
}

func TestStateMachine_YellowRecoversAfterFourSecure(t *testing.T) {
	env := newTestEnv(t)

	env.navigate(t, "http://example.com") // YELLOW
	require.Equal(t, domain.LevelYellow, env.engine.Status().ThreatLevel)

	for i := 0; i < 3; i++ {
		env.navigate(t, "https://safe.example/page")
	}
	assert.Equal(t, domain.LevelYellow, env.engine.Status().ThreatLevel, "three secure connections must not recover")

	out := env.navigate(t, "https://safe.example/page")
	assert.Equal(t, domain.LevelGreen, out.Level, "fourth secure connection recovers to GREEN")
}

func TestStateMachine_RedIsSticky(t *testing.T) {
	env := newTestEnv(t)

	env.navigate(t, "http://malware-test.com")
	require.Equal(t, domain.LevelRed, env.engine.Status().ThreatLevel)

	for i := 0; i < 10; i++ {
		env.navigate(t, "https://safe.example/page")
	}
	assert.Equal(t, domain.LevelRed, env.engine.Status().ThreatLevel, "RED has no automatic recovery")
}

func TestHandleNavigation_AlwaysRecordsAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.navigate(t, "http://malware-test.com")
	env.navigate(t, "https://safe.example")
	env.navigate(t, "http://example.com")

	a, err := env.analytics.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, a.SessionData, 3)
	assert.True(t, a.SessionData[0].ThreatDetected)
	assert.True(t, a.SessionData[1].Secure)
	assert.False(t, a.SessionData[2].Secure)
	// One threat (-5) then one secure (+1).
	assert.Equal(t, 96, a.SecurityScore)
}

func TestHandleNavigation_NotificationGatedOnSetting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out := env.navigate(t, "http://malware-test.com")
	require.NotNil(t, out.Notification)
	assert.Contains(t, out.Notification.Message, "malware-test.com")

	s := domain.DefaultSettings()
	s.TerminalNotifications = false
	require.NoError(t, env.settings.Save(ctx, s))

	out = env.navigate(t, "http://phishing-login.example")
	assert.Nil(t, out.Notification)
}

func TestActivateFortress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.engine.ActivateFortress(ctx, "Distracting-Site.example")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBlock, out.Action)
	require.NotNil(t, out.Record)
	assert.Equal(t, domain.ReasonUserActivated, out.Record.Reason)
	assert.Equal(t, domain.SeverityManual, out.Record.Severity)
	assert.Equal(t, domain.LevelRed, out.Level)

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, cfg.BlockedSites, "distracting-site.example")
}

func TestActivateFortress_WhitelistedRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.engine.Whitelist(ctx, "trusted.example"))
	_, err := env.engine.ActivateFortress(ctx, "trusted.example")
	assert.ErrorIs(t, err, fortress.ErrWhitelisted)
}

func TestActivateFortress_EmptyHostname(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.ActivateFortress(context.Background(), "   ")
	assert.Error(t, err)
}

func TestReportAdultContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out, err := env.engine.ReportAdultContent(ctx, "sketchy.example")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBlock, out.Action)
	require.NotNil(t, out.Record)
	assert.Equal(t, domain.ReasonAdultContentBlocked, out.Record.Reason)
}

func TestBlock_IdempotentOverwrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.navigate(t, "http://malware-test.com")
	env.clock.Advance(time.Minute)
	_, err := env.engine.ActivateFortress(ctx, "malware-test.com")
	require.NoError(t, err)

	cfg, err := env.fortress.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.BlockedSites, 1)
	rec := cfg.BlockedSites["malware-test.com"]
	assert.Equal(t, domain.ReasonUserActivated, rec.Reason)
	assert.Equal(t, testTime.Add(time.Minute), rec.Timestamp)
}

// saveFortress writes a fortress config straight through the store,
// bypassing repository invariants, for toggle-flipping in tests.
func (env *testEnv) saveFortress(ctx context.Context, cfg domain.FortressConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return env.store.Set(ctx, state.KeyFortress, raw)
}
