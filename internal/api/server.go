// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
)

const (
	serviceName    = "ViralEdge"
	serviceVersion = "3.0"
)

// Analyzer runs one analysis
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.AnalysisReport, error)
}

// Server holds the HTTP handlers and their dependencies
type Server struct {
	analyzer Analyzer
	store    storage.StorageInterface
	gatherer prometheus.Gatherer
	validate *validator.Validate
	now      func() time.Time
}

// NewServer creates the API server. store may be nil, in which case the report endpoints answer 503.
// A nil gatherer serves the default Prometheus registry.
func NewServer(analyzer Analyzer, store storage.StorageInterface, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		analyzer: analyzer,
		store:    store,
		gatherer: gatherer,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Router registers every route on a new mux router
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.HandleFunc("/m3/analyze", s.handleAnalyze).Methods(http.MethodGet)
	router.HandleFunc("/m3/generate-script", s.handleGenerateScript).Methods(http.MethodPost)
	router.HandleFunc("/m3/reports", s.handleListReports).Methods(http.MethodGet)
	router.HandleFunc("/m3/reports/{date}/{id}", s.handleGetReport).Methods(http.MethodGet)

	return router
}

// Handler returns the router wrapped with CORS for browser clients
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(s.Router())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
