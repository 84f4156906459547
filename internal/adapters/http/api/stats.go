package api

import (
	"errors"
	"net/http"
)

// StatsProvider reports service counters for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service counters.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats. It answers 503 when no provider is wired or the
// provider has nothing to report.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.statsProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable",
			WrapKind(op, ErrUnavailable, errors.New("no stats provider")))
		return
	}
	stats := h.statsProvider.GetStats()
	if stats == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
