// Package server wires the gateway's routes, middleware, and session
// lifecycle into one http.Handler.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/prepwise/interview-gateway/pkg/agent"
	"github.com/prepwise/interview-gateway/pkg/gateway/config"
	"github.com/prepwise/interview-gateway/pkg/gateway/handlers"
	"github.com/prepwise/interview-gateway/pkg/gateway/mw"
	"github.com/prepwise/interview-gateway/pkg/gateway/session"
	"github.com/prepwise/interview-gateway/pkg/gateway/sessions"
	"github.com/prepwise/interview-gateway/pkg/metrics"
)

type Dependencies struct {
	Logger    *slog.Logger
	Store     agent.Store
	Generator agent.Generator
	Metrics   *metrics.Sink
}

type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	mux      *http.ServeMux
	tracker  *sessions.Tracker
	draining atomic.Bool
}

func New(cfg config.Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  deps.Logger,
		mux:     http.NewServeMux(),
		tracker: sessions.NewTracker(),
	}

	sessionHandler := handlers.NewSessionHandler(handlers.SessionHandler{
		Logger:     deps.Logger,
		Store:      deps.Store,
		Generator:  deps.Generator,
		Metrics:    deps.Metrics,
		Tracker:    s.tracker,
		IsDraining: s.IsDraining,

		HandshakeTimeout: cfg.HandshakeTimeout,
		SessionConfig: session.Config{
			MaxSessionDuration:  cfg.SessionMaxDuration,
			WriteTimeout:        cfg.WSWriteTimeout,
			ReadTimeout:         cfg.WSReadTimeout,
			MaxJSONMessageBytes: cfg.MaxJSONMessageBytes,
		},
	})

	s.mux.Handle("/healthz", handlers.HealthHandler())
	s.mux.Handle("/readyz", handlers.ReadyHandler(s.IsDraining))
	s.mux.Handle("/v1/session", sessionHandler)
	return s
}

// Handler returns the full middleware chain around the mux.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

func (s *Server) SetDraining(v bool) { s.draining.Store(v) }
func (s *Server) IsDraining() bool   { return s.draining.Load() }

func (s *Server) LiveSessions() int { return s.tracker.Len() }

// WarnSessionsDraining tells every live session the server is going away.
func (s *Server) WarnSessionsDraining() int {
	return s.tracker.Broadcast("server_draining", "server is shutting down; the session will end shortly")
}

// WaitSessions blocks until all sessions finish or ctx expires.
func (s *Server) WaitSessions(ctx context.Context) bool {
	return s.tracker.Drain(ctx)
}

func (s *Server) CancelSessions() int {
	return s.tracker.CancelAll()
}
