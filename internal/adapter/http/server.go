package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
)

// ReadinessChecker reports whether a scrape has completed.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LocationLister returns the locations of the last completed scrape.
type LocationLister interface {
	Locations() []domain.Location
}

// Server exposes health, readiness, metrics, and scraped locations over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /locations routes.
func NewServer(addr string, ready ReadinessChecker, locations LocationLister, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /locations", handleLocations(locations))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleLocations serves the last scrape result. An optional ?wmo= filter
// selects a single station.
func handleLocations(lister LocationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations := lister.Locations()
		if locations == nil {
			locations = []domain.Location{}
		}

		if wmo := r.URL.Query().Get("wmo"); wmo != "" {
			for _, loc := range locations {
				if loc.WMOIndex == wmo {
					writeJSON(w, http.StatusOK, loc)
					return
				}
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown wmo index " + wmo})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"count":     len(locations),
			"locations": locations,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
