package handlers

import (
	"context"
	"net/http"

	"github.com/dom/civ-draft/internal/analytics"
)

// LeaderStatsSource is implemented by the ClickHouse recorder.
type LeaderStatsSource interface {
	LeaderStats(ctx context.Context) ([]analytics.LeaderStat, error)
}

type StatsHandler struct {
	source LeaderStatsSource
}

// NewStatsHandler accepts a nil source; every request then answers 404.
func NewStatsHandler(source LeaderStatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

type LeaderStatsResponse struct {
	Leaders []analytics.LeaderStat `json:"leaders"`
}

func (h *StatsHandler) Leaders(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		http.Error(w, "Analytics is not enabled", http.StatusNotFound)
		return
	}

	stats, err := h.source.LeaderStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []analytics.LeaderStat{}
	}
	writeJSON(w, http.StatusOK, LeaderStatsResponse{Leaders: stats})
}
