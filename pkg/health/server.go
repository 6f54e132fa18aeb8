// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package health serves liveness and status endpoints and forwards user
// count changes to the administrator.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Addr    string
	Version string
	// Secrets reports which credentials are configured, by name.
	Secrets map[string]bool
	// Extra, when set, is merged into the /status response.
	Extra func() map[string]any
}

type Server struct {
	opts       Options
	monitor    *Monitor
	router     chi.Router
	httpServer *http.Server
	started    time.Time
	botRunning atomic.Bool
}

func NewServer(opts Options, monitor *Monitor) *Server {
	s := &Server{
		opts:    opts,
		monitor: monitor,
		started: time.Now(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/info", s.handleInfo)
	r.Get("/status", s.handleStatus)

	s.router = r
}

// SetBotRunning flips the readiness state.
func (s *Server) SetBotRunning(running bool) {
	s.botRunning.Store(running)
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	logger.InfoCF("health", "Health server listening", map[string]any{"addr": s.opts.Addr})
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) uptime() string {
	return time.Since(s.started).Truncate(time.Second).String()
}

func (s *Server) botStatus() string {
	if s.botRunning.Load() {
		return "active"
	}
	return "inactive"
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	stats, err := s.monitor.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "🏃‍♀️ FitCoach server is running!",
		"uptime":             s.uptime(),
		"bot_status":         s.botStatus(),
		"registered_users":   stats.Registered,
		"today_active_users": stats.TodayActive,
		"recent_users":       stats.Recent,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.CheckUsers(r.Context()); err != nil {
		logger.WarnCF("health", "User count check failed", map[string]any{"error": err.Error()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.botRunning.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	stats, err := s.monitor.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	secrets := s.opts.Secrets
	if secrets == nil {
		secrets = map[string]bool{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":            s.opts.Version,
		"uptime":             s.uptime(),
		"bot_status":         s.botStatus(),
		"env_loaded":         secrets,
		"registered_users":   stats.Registered,
		"today_active_users": stats.TodayActive,
		"recent_users":       stats.Recent,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.monitor.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	body := map[string]any{
		"running":          s.botRunning.Load(),
		"uptime":           s.uptime(),
		"registered_users": stats.Registered,
		"today_active":     stats.TodayActive,
	}
	if last := s.monitor.LastCheck(); !last.IsZero() {
		body["last_check"] = last.Format(time.RFC3339)
	}
	if s.opts.Extra != nil {
		for k, v := range s.opts.Extra() {
			body[k] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	logger.ErrorCF("health", "Status request failed", map[string]any{"error": err.Error()})
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}
