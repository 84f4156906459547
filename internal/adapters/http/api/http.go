// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/domain/model"
)

// DefaultMaxUploadBytes caps POST /imports when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Import parses and reconciles one CSV text.
	Import(ctx context.Context, text string) (service.ImportResult, error)

	// Read operations expose the stored series.
	Records(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error)
	Export(ctx context.Context, w io.Writer, format string, from, to time.Time) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	importsHandler *ImportsHandler
	recordsHandler *RecordsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes caps the size of an import body.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := serverOptions{maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		importsHandler: NewImportsHandler(deps, o.maxUploadBytes),
		recordsHandler: NewRecordsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/imports", MetricsMiddleware(s.importsHandler.HandlePostImport, "imports"))
	mux.HandleFunc("/records/export", MetricsMiddleware(s.recordsHandler.HandleExport, "records_export"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleList, "records"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
