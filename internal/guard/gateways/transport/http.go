// Package transport exposes the inbound message contract over HTTP. It is
// the true process boundary: dashboards and page scanners talk to the
// decision engine only through here. Every message gets a response, even
// unrecognized ones, so callers never hang on an open channel.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/common/log"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/repos/fortress"
	"github.com/RafalW3bCraft/cyberguard/internal/guard/services/engine"
)

// DecisionEngine is the slice of the engine the transport dispatches to.
type DecisionEngine interface {
	Status() domain.ThreatStatus
	HandleNavigation(ctx context.Context, ev domain.NavigationEvent) (domain.Outcome, error)
	ActivateFortress(ctx context.Context, hostname string) (domain.Outcome, error)
	ReportAdultContent(ctx context.Context, hostname string) (domain.Outcome, error)
	QuantumScan(ctx context.Context, rawURL string) (domain.ScanResult, error)
	LastScan(ctx context.Context) (domain.ScanResult, error)
	Analytics(ctx context.Context) (domain.Analytics, error)
	ResetAnalytics(ctx context.Context) error
	Unblock(ctx context.Context, hostname string) error
	Whitelist(ctx context.Context, hostname string) error
	Fortress(ctx context.Context) (domain.FortressConfig, error)
}

// Message is the request envelope for /api/message.
type Message struct {
	Action   string `json:"action"`
	Hostname string `json:"hostname,omitempty"`
	URL      string `json:"url,omitempty"`
	TabID    int    `json:"tabId,omitempty"`
}

// Response status strings of the message contract.
const (
	StatusFortressActivated = "FORTRESS_ACTIVATED"
	StatusContentBlocked    = "CONTENT_BLOCKED"
	StatusNoScanData        = "NO_SCAN_DATA"
	StatusUnknownAction     = "UNKNOWN_ACTION"
	StatusAnalyticsReset    = "ANALYTICS_RESET"
	StatusSiteUnblocked     = "SITE_UNBLOCKED"
	StatusSiteWhitelisted   = "SITE_WHITELISTED"
	StatusError             = "ERROR"
)

// Server serves the message API.
type Server struct {
	engine DecisionEngine
	logger log.Logger
	http   *http.Server
}

// New constructs a Server bound to addr.
func New(addr string, eng DecisionEngine, logger log.Logger) *Server {
	s := &Server{engine: eng, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the chi router. Exposed separately for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Post("/api/message", s.handleMessage)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start runs the HTTP server until it fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info(map[string]any{"addr": s.http.Addr}, "message transport listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Address returns the bound address.
func (s *Server) Address() string { return s.http.Addr }

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.respond(w, map[string]any{"status": StatusError, "message": "malformed message"})
		return
	}
	ctx := r.Context()

	switch msg.Action {
	case "getThreatStatus":
		s.respond(w, s.engine.Status())

	case "navigationEvent":
		out, err := s.engine.HandleNavigation(ctx, domain.NavigationEvent{URL: msg.URL, TabID: msg.TabID})
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, out)

	case "activateFortress":
		out, err := s.engine.ActivateFortress(ctx, msg.Hostname)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, map[string]any{"status": StatusFortressActivated, "outcome": out})

	case "adultContentDetected":
		out, err := s.engine.ReportAdultContent(ctx, msg.Hostname)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, map[string]any{"status": StatusContentBlocked, "outcome": out})

	case "performQuantumScan":
		if msg.URL == "" {
			s.respond(w, map[string]any{"status": StatusError, "message": "no url to scan"})
			return
		}
		result, err := s.engine.QuantumScan(ctx, msg.URL)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, result)

	case "getLastScanResult":
		result, err := s.engine.LastScan(ctx)
		if errors.Is(err, engine.ErrNoScanData) {
			s.respond(w, map[string]any{"status": StatusNoScanData})
			return
		}
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, result)

	case "getAnalytics":
		a, err := s.engine.Analytics(ctx)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, a)

	case "resetAnalytics":
		if err := s.engine.ResetAnalytics(ctx); err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, map[string]any{"status": StatusAnalyticsReset})

	case "unblockSite":
		if err := s.engine.Unblock(ctx, msg.Hostname); err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, map[string]any{"status": StatusSiteUnblocked})

	case "whitelistSite":
		if err := s.engine.Whitelist(ctx, msg.Hostname); err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, map[string]any{"status": StatusSiteWhitelisted})

	case "getFortress":
		cfg, err := s.engine.Fortress(ctx)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, cfg)

	default:
		s.respond(w, map[string]any{"status": StatusUnknownAction})
	}
}

// respondError maps engine errors onto the ERROR envelope. The transport
// never surfaces a raw failure to the caller; everything is a structured
// response with HTTP 200 so the caller's channel always closes cleanly.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	msg := "internal error"
	if errors.Is(err, fortress.ErrWhitelisted) {
		msg = "hostname is whitelisted"
	} else {
		s.logger.Error(map[string]any{"error": err.Error()}, "message handling failed")
	}
	s.respond(w, map[string]any{"status": StatusError, "message": msg})
}

func (s *Server) respond(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// The peer went away mid-response. Expected race, log and drop.
		s.logger.Debug(map[string]any{"error": err.Error()}, "response delivery failed")
	}
}
