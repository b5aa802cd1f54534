package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/astrolark/natal-chart-service/internal/domain"
	"github.com/astrolark/natal-chart-service/internal/service"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ChartGetter is the slice of the chart service the HTTP surface needs.
type ChartGetter interface {
	GetChart(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem, mode service.FetchMode) (domain.NatalChart, error)
}

// Server exposes the chart endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	charts     ChartGetter
	logger     *slog.Logger
}

// chartRequest is the inbound JSON shape of a chart request.
type chartRequest struct {
	Name        string             `json:"name,omitempty"`
	BirthTime   time.Time          `json:"birth_time"`
	Timezone    string             `json:"timezone"`
	Coordinate  *domain.Coordinate `json:"coordinate,omitempty"`
	Location    string             `json:"location,omitempty"`
	HouseSystem string             `json:"house_system"`
	Fresh       bool               `json:"fresh,omitempty"`
}

// NewServer creates an HTTP server with /v1/charts, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, charts ChartGetter, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		charts: charts,
		logger: logger,
	}

	mux.HandleFunc("POST /v1/charts", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
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

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	houseSystem, err := domain.ParseHouseSystem(req.HouseSystem)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	birth := domain.BirthData{
		Name:       req.Name,
		BirthTime:  req.BirthTime,
		Timezone:   req.Timezone,
		Coordinate: req.Coordinate,
		Location:   req.Location,
	}

	mode := service.ComputeOrReuse
	if req.Fresh {
		mode = service.ComputeFresh
	}

	chart, err := s.charts.GetChart(r.Context(), birth, houseSystem, mode)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// statusForError maps the domain error taxonomy onto HTTP statuses. Anything
// untyped is an upstream or internal failure.
func statusForError(err error) int {
	var cfgErr *domain.ConfigurationError
	var mcErr *domain.MissingCoordinateError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &mcErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
