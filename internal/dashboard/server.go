package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server runs the dashboard's HTTP/WebSocket surface.
type Server struct {
	hub    *Hub
	feed   *Feed
	http   *http.Server
	log    *slog.Logger
}

// NewServer builds a dashboard server bound to addr, pushing events observed
// on feed, throttled to at most one push per throttleInterval.
func NewServer(addr string, throttleInterval time.Duration, log *slog.Logger) (*Server, *Feed) {
	hub := NewHub(log)
	feed := NewFeed(hub, NewThrottle(throttleInterval))
	h := &handlers{feed: feed, hub: hub, log: log.With("component", "dashboard-handlers")}

	r := chi.NewRouter()
	r.Get("/healthz", h.healthz)
	r.Get("/snapshot", h.snapshot)
	r.Get("/ws", h.ws)

	return &Server{
		hub:  hub,
		feed: feed,
		http: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log.With("component", "dashboard-server"),
	}, feed
}

// Start runs the hub loop and the HTTP server; it blocks until the server
// stops (Stop called, or a listener error other than graceful shutdown).
func (s *Server) Start() error {
	go s.hub.Run()

	s.log.Info("dashboard starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("dashboard stopping")
	return s.http.Shutdown(ctx)
}
