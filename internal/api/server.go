package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/homeenergy/internal/estimator"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/store"
)

// InsightGenerator produces an optional narrative to accompany an estimate.
type InsightGenerator interface {
	Generate(ctx context.Context, in household.Input, kwh float64) (string, error)
}

type Server struct {
	pipeline *estimator.Pipeline
	store    *store.Store
	port     string
	insights InsightGenerator
	now      func() time.Time
	newID    func() string
}

// NewServer builds the HTTP server. store may be nil, in which case
// estimates are not recorded and the history endpoints return 404.
func NewServer(pipeline *estimator.Pipeline, store *store.Store, port string) *Server {
	return &Server{
		pipeline: pipeline,
		store:    store,
		port:     port,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetInsightGenerator enables ?insight=1 on estimate requests.
func (s *Server) SetInsightGenerator(g InsightGenerator) {
	s.insights = g
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/estimate", s.handleEstimate)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /api/estimates", s.handleListEstimates)
	mux.HandleFunc("GET /api/estimates/{id}", s.handleGetEstimate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
