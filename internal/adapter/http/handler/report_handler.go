package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/adledger/internal/adapter/http/dto"
	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Leaderboard(ctx context.Context, adID string) ([]*domain.ViewerStat, error)
	ListViews(ctx context.Context, input usecase.ListViewsInput) ([]*domain.ViewRecord, error)
}

// ReportHandler handles per-ad reporting HTTP requests.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Leaderboard returns billed views and earnings per viewer for an ad.
func (h *ReportHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "id")
	if adID == "" {
		writeError(w, http.StatusBadRequest, "missing ad ID", "")
		return
	}

	stats, err := h.reportUC.Leaderboard(r.Context(), adID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to build leaderboard", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LeaderboardFromDomain(adID, stats))
}

// ListViews lists an ad's view records, newest first.
func (h *ReportHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "id")
	if adID == "" {
		writeError(w, http.StatusBadRequest, "missing ad ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	views, err := h.reportUC.ListViews(r.Context(), usecase.ListViewsInput{
		AdID:   adID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list views", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ListViewsResponse{
		Views: dto.ViewsFromDomain(views),
		Total: int64(len(views)),
	})
}
