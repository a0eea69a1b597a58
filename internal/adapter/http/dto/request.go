package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/usecase"
)

// CreateAdRequest represents a request to create an ad.
type CreateAdRequest struct {
	AdvertiserID string          `json:"advertiser_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	TargetLink   string          `json:"target_link"`
	BidPerView   decimal.Decimal `json:"bid_per_view"`
	TotalBudget  decimal.Decimal `json:"total_budget"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAdRequest) ToUseCaseInput() usecase.CreateAdInput {
	return usecase.CreateAdInput{
		AdvertiserID: r.AdvertiserID,
		Title:        r.Title,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		TargetLink:   r.TargetLink,
		BidPerView:   r.BidPerView,
		TotalBudget:  r.TotalBudget,
	}
}
