package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/adledger/internal/adapter/http/dto"
	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

// AdService defines the behavior needed by AdHandler.
type AdService interface {
	CreateAd(ctx context.Context, input usecase.CreateAdInput) (*domain.Ad, error)
	GetAd(ctx context.Context, id string) (*domain.Ad, error)
	DeleteAd(ctx context.Context, id string) error
	ListAdsByAdvertiser(ctx context.Context, input usecase.ListAdsByAdvertiserInput) ([]*domain.Ad, error)
}

// AdHandler handles ad management HTTP requests.
type AdHandler struct {
	adUC AdService
}

// NewAdHandler creates a new AdHandler.
func NewAdHandler(adUC AdService) *AdHandler {
	return &AdHandler{adUC: adUC}
}

// Create creates a new ad.
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ad, err := h.adUC.CreateAd(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create ad", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AdFromDomain(ad))
}

// Get retrieves an ad by ID.
func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ad ID", "")
		return
	}

	ad, err := h.adUC.GetAd(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get ad", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AdFromDomain(ad))
}

// Delete removes an ad. Its view records go with it; earnings already
// credited stay.
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ad ID", "")
		return
	}

	if err := h.adUC.DeleteAd(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete ad", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists ads owned by an advertiser.
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	advertiserID := r.URL.Query().Get("advertiser_id")
	if advertiserID == "" {
		writeError(w, http.StatusBadRequest, "missing advertiser_id", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	ads, err := h.adUC.ListAdsByAdvertiser(r.Context(), usecase.ListAdsByAdvertiserInput{
		AdvertiserID: advertiserID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ads", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAdsResponse{
		Ads:   dto.AdsFromDomain(ads),
		Total: int64(len(ads)),
	})
}
