package handler

import (
	"log/slog"
	"net/http"

	"github.com/apizfit/racekit/internal/api/middleware"
	"github.com/apizfit/racekit/internal/api/response"
	"github.com/apizfit/racekit/internal/stats"
)

type dashboardResponse struct {
	TotalRunners   int `json:"totalRunners"`
	PendingKits    int `json:"pendingKits"`
	CollectedKits  int `json:"collectedKits"`
	CollectionRate int `json:"collectionRate"`
}

// DashboardHandler handles the GET /dashboard endpoint.
type DashboardHandler struct {
	statsRepo stats.Repository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(statsRepo stats.Repository) *DashboardHandler {
	return &DashboardHandler{statsRepo: statsRepo}
}

// ServeHTTP returns runner and kit totals plus the collection rate, all
// derived from one snapshot read.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	summary, err := h.statsRepo.Summary(r.Context())
	if err != nil {
		slog.Error("failed to fetch dashboard summary", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch dashboard stats", requestID)
		return
	}

	response.Success(w, http.StatusOK, dashboardResponse{
		TotalRunners:   summary.TotalRunners,
		PendingKits:    summary.PendingKits,
		CollectedKits:  summary.CollectedKits,
		CollectionRate: summary.CollectionRate(),
	}, requestID)
}
