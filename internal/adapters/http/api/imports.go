package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/scalesync/internal/adapters/export"
	service "github.com/okian/scalesync/internal/app"
	"github.com/okian/scalesync/internal/domain/format"
	"github.com/okian/scalesync/internal/domain/types"
)

// ImportDependencies defines the interface for import processing dependencies.
type ImportDependencies interface {
	Import(ctx context.Context, text string) (service.ImportResult, error)
}

// ImportsHandler handles CSV uploads.
type ImportsHandler struct {
	deps     ImportDependencies
	maxBytes int64
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(deps ImportDependencies, maxBytes int64) *ImportsHandler {
	return &ImportsHandler{deps: deps, maxBytes: maxBytes}
}

// HandlePostImport handles POST /imports. The body is the CSV itself, or a multipart
// form with the file in field "file". Excel workbooks are accepted as well.
func (h *ImportsHandler) HandlePostImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_import"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	text, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty upload")))
		return
	}

	res, err := h.deps.Import(r.Context(), text)
	switch {
	case errors.Is(err, format.ErrUnrecognizedFormat):
		writeError(w, http.StatusBadRequest, "unrecognized_format", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, types.ImportResponse{
		Status:  res.Status(),
		Format:  res.Format.String(),
		Result:  res.Result,
		Records: types.FromStoredList(res.Records),
	})
}

// readUpload returns the uploaded file as CSV text.
func readUpload(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		data []byte
		name string
		err  error
	)
	if mediaType == "multipart/form-data" {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			return "", ferr
		}
		defer file.Close()
		name = header.Filename
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		return "", err
	}

	if isWorkbook(mediaType, name) {
		return export.XLSXToCSV(bytes.NewReader(data))
	}
	return string(data), nil
}

func isWorkbook(mediaType, name string) bool {
	return mediaType == export.ContentType(export.FormatXLSX) ||
		strings.EqualFold(filepath.Ext(name), ".xlsx")
}
