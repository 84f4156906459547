package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/scalesync/internal/adapters/export"
	"github.com/okian/scalesync/internal/adapters/repository"
	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/types"
)

// RecordsDependencies defines the interface for record reads.
type RecordsDependencies interface {
	Records(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error)
	Export(ctx context.Context, w io.Writer, format string, from, to time.Time) error
}

// RecordsHandler serves the stored series.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleList handles GET /records?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	list, err := h.deps.Records(r.Context(), from, to)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromStoredList(list))
}

// HandleExport handles GET /records/export?format=csv|xlsx with the same range filters.
func (h *RecordsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	f := strings.ToLower(r.URL.Query().Get("format"))
	if f == "" {
		f = export.FormatCSV
	}
	if f != export.FormatCSV && f != export.FormatXLSX {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("%w: %q", export.ErrUnknownFormat, f)))
		return
	}

	// Buffer so a failure can still be reported with a proper status.
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf, f, from, to); err != nil {
		writeReadError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(f))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="records.%s"`, f))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func parseRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		if from, err = model.ParseDateKey(s); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from %q; must be YYYY-MM-DD", s)
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = model.ParseDateKey(s); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to %q; must be YYYY-MM-DD", s)
		}
	}
	return from, to, nil
}

func writeReadError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
