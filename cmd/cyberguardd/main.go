package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/clock"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/config"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/gateways/geoip"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/gateways/transport"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/analytics"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/fortress"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/settings"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/state/bolt"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/services/engine"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/services/reaper"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "cyberguardd"

	// Default timeouts
	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the guard daemon
type Application struct {
	config    *config.AppConfig
	store     state.Store
	transport *transport.Server
	reaper    *reaper.Reaper
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":         version,
		"env":             cfg.Env,
		"log_level":       cfg.LogLevel,
		"port":            cfg.Port,
		"db_path":         cfg.DBPath,
		"cache_size":      cfg.CacheSize,
		"sweep_interval":  cfg.SweepInterval.String(),
		"block_retention": cfg.BlockRetention.String(),
	}, "Starting CyberGuard daemon")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	// Start the daemon
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Daemon failed")
	}

	log.Info(nil, "CyberGuard daemon stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := &clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Open the persistent state store
	store, err := bolt.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	// All mutations of one storage key funnel through the queue
	queue := state.NewQueue()

	// Build repository layer
	fortressRepo := fortress.New(store, queue, clk, logger)
	analyticsRepo := analytics.New(store, queue, logger)
	settingsRepo := settings.New(store, queue, logger)

	// Seed missing storage keys before anything reads them
	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fortressRepo.EnsureDefaults(initCtx); err != nil {
		return nil, fmt.Errorf("failed to initialize fortress state: %w", err)
	}
	if err := settingsRepo.EnsureDefaults(initCtx); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	// Build gateway layer
	var geo engine.GeoLookup
	if cfg.DisableGeo {
		log.Info(map[string]any{"disabled": true}, "Scan geolocation enrichment disabled")
	} else {
		geo = geoip.New(geoip.Options{
			BaseURL: cfg.GeoAPIURL,
			Timeout: cfg.GeoTimeout,
			Logger:  logger,
		})
		log.Info(map[string]any{
			"base_url": cfg.GeoAPIURL,
			"timeout":  cfg.GeoTimeout.String(),
		}, "Geolocation client configured")
	}

	// Build service layer
	cacheSize := cfg.CacheSize
	if cacheSize > uint(^uint(0)>>1) { // Check if it exceeds max int
		return nil, fmt.Errorf("cache size too large: %d (max %d)", cacheSize, ^uint(0)>>1)
	}
	eng, err := engine.New(engine.Options{
		Fortress:         fortressRepo,
		Analytics:        analyticsRepo,
		Settings:         settingsRepo,
		Geo:              geo,
		Store:            store,
		Queue:            queue,
		Clock:            clk,
		Logger:           logger,
		ShieldPath:       cfg.ShieldPath,
		VerdictCacheSize: int(cacheSize),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decision engine: %w", err)
	}

	sweepReaper := reaper.New(reaper.Options{
		Sweeper:   fortressRepo,
		Interval:  cfg.SweepInterval,
		Retention: cfg.BlockRetention,
		Logger:    logger,
	})

	// Build transport layer
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := transport.New(addr, eng, logger)

	return &Application{
		config:    cfg,
		store:     store,
		transport: srv,
		reaper:    sweepReaper,
	}, nil
}

// Run starts the message transport and the maintenance reaper, then blocks
// until the context is cancelled or either component fails.
func (app *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.transport.Start()
	})

	g.Go(func() error {
		return app.reaper.Run(gctx)
	})

	log.Info(map[string]any{
		"address": app.transport.Address(),
	}, "CyberGuard daemon started")

	// Wait for shutdown signal or component failure
	<-gctx.Done()

	log.Info(nil, "Shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := app.transport.Stop(shutdownCtx); err != nil {
		log.Warn(map[string]any{"error": err}, "Error during transport shutdown")
	}

	// The reaper exits once gctx is done; collect component errors.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn(map[string]any{"error": err}, "Component exited with error")
	}

	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing state store")
		return fmt.Errorf("state store close: %w", err)
	}

	log.Info(nil, "Graceful shutdown completed")
	return nil
}
