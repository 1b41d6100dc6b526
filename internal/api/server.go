package api

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/airsense/internal/httputil"
	"github.com/lox/airsense/internal/imagegen"
	"github.com/lox/airsense/internal/ingest"
	"github.com/lox/airsense/internal/store"
)

const cardTTL = 10 * time.Minute

type Server struct {
	store     *store.Store
	ingester  *ingest.Ingester
	logger    *slog.Logger
	port      string
	tmpl      *template.Template
	cards     *imagegen.CardCache
	maxUpload int64
}

func NewServer(st *store.Store, logger *slog.Logger, port string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     st,
		ingester:  ingest.New(st, logger),
		logger:    logger.With("component", "api"),
		port:      port,
		tmpl:      newTemplates(),
		cards:     imagegen.NewCardCache(cardTTL),
		maxUpload: httputil.MaxLogSize,
	}
}

// SetMaxUploadSize limits the size of an uploaded sensor log in bytes.
func (s *Server) SetMaxUploadSize(n int64) {
	if n > 0 {
		s.maxUpload = n
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /result", s.handleResult)
	mux.HandleFunc("GET /result.png", s.handleResultCard)
	mux.HandleFunc("GET /get_graphs", s.handleGetGraphs)
	mux.HandleFunc("GET /api/uploads", s.handleAPIUploads)
	mux.HandleFunc("GET /api/uploads/{id}", s.handleAPIUpload)
	mux.HandleFunc("GET /api/uploads/{id}/readings", s.handleAPIReadings)
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

	s.logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type HealthStatus struct {
	Status        string     `json:"status"`
	SchemaVersion int        `json:"schema_version"`
	LatestUpload  *time.Time `json:"latest_upload,omitempty"`
	Error         string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.store.MigrationVersion()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, HealthStatus{Status: "error", Error: err.Error()})
		return
	}

	health := HealthStatus{Status: "ok", SchemaVersion: version}
	latest, err := s.store.GetLatestUpload()
	if err != nil {
		health.Status = "degraded"
		health.Error = err.Error()
	} else if latest != nil {
		health.LatestUpload = &latest.CreatedAt
	}
	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
