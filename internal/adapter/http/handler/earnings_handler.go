package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/adledger/internal/adapter/http/dto"
	"github.com/iho/adledger/internal/domain"
)

// EarningsService defines the behavior needed by EarningsHandler.
type EarningsService interface {
	GetEarnings(ctx context.Context, viewerID string) (*domain.EarningsAccount, error)
}

// EarningsHandler handles viewer earnings HTTP requests.
type EarningsHandler struct {
	earningsUC EarningsService
}

// NewEarningsHandler creates a new EarningsHandler.
func NewEarningsHandler(earningsUC EarningsService) *EarningsHandler {
	return &EarningsHandler{earningsUC: earningsUC}
}

// Get returns a viewer's earnings balance. Unknown viewers report a
// zero balance rather than a 404, since accounts are created lazily on
// first credit.
func (h *EarningsHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := chi.URLParam(r, "viewerID")
	if viewerID == "" {
		writeError(w, http.StatusBadRequest, "missing viewer ID", "")
		return
	}

	account, err := h.earningsUC.GetEarnings(r.Context(), viewerID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get earnings", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EarningsFromDomain(account))
}
