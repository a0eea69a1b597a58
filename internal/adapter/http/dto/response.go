package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
)

// AdResponse represents an ad in API responses.
type AdResponse struct {
	ID              string          `json:"id"`
	AdvertiserID    string          `json:"advertiser_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	TargetLink      string          `json:"target_link"`
	BidPerView      decimal.Decimal `json:"bid_per_view"`
	TotalBudget     decimal.Decimal `json:"total_budget"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
	ViewCount       int64           `json:"view_count"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AdFromDomain converts a domain ad to a response.
func AdFromDomain(a *domain.Ad) *AdResponse {
	return &AdResponse{
		ID:              a.ID,
		AdvertiserID:    a.AdvertiserID,
		Title:           a.Title,
		Description:     a.Description,
		ImageURL:        a.ImageURL,
		TargetLink:      a.TargetLink,
		BidPerView:      a.BidPerView,
		TotalBudget:     a.TotalBudget,
		RemainingBudget: a.RemainingBudget,
		ViewCount:       a.ViewCount,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AdsFromDomain converts domain ads to responses.
func AdsFromDomain(ads []*domain.Ad) []*AdResponse {
	result := make([]*AdResponse, len(ads))
	for i, a := range ads {
		result[i] = AdFromDomain(a)
	}
	return result
}

// ListAdsResponse wraps a page of ads.
type ListAdsResponse struct {
	Ads   []*AdResponse `json:"ads"`
	Total int64         `json:"total"`
}

// ViewResponse represents a view record in API responses.
type ViewResponse struct {
	AdID      string          `json:"ad_id"`
	DeviceID  string          `json:"device_id"`
	ViewerID  string          `json:"viewer_id"`
	Billed    bool            `json:"billed"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ViewFromDomain converts a domain view record to a response.
func ViewFromDomain(v *domain.ViewRecord) *ViewResponse {
	return &ViewResponse{
		AdID:      v.AdID,
		DeviceID:  v.DeviceID,
		ViewerID:  v.ViewerID,
		Billed:    v.Billed,
		Amount:    v.Amount,
		CreatedAt: v.CreatedAt,
	}
}

// ViewsFromDomain converts domain view records to responses.
func ViewsFromDomain(views []*domain.ViewRecord) []*ViewResponse {
	result := make([]*ViewResponse, len(views))
	for i, v := range views {
		result[i] = ViewFromDomain(v)
	}
	return result
}

// ListViewsResponse wraps a page of view records.
type ListViewsResponse struct {
	Views []*ViewResponse `json:"views"`
	Total int64           `json:"total"`
}

// EarningsResponse represents a viewer's earnings balance.
type EarningsResponse struct {
	ViewerID string          `json:"viewer_id"`
	Earnings decimal.Decimal `json:"earnings"`
}

// EarningsFromDomain converts a domain earnings account to a response.
func EarningsFromDomain(e *domain.EarningsAccount) *EarningsResponse {
	return &EarningsResponse{
		ViewerID: e.ViewerID,
		Earnings: e.Earnings,
	}
}

// ViewerStatResponse is one leaderboard row.
type ViewerStatResponse struct {
	ViewerID string          `json:"viewer_id"`
	Views    int64           `json:"views"`
	Earned   decimal.Decimal `json:"earned"`
}

// LeaderboardResponse wraps leaderboard rows for one ad.
type LeaderboardResponse struct {
	AdID    string                `json:"ad_id"`
	Viewers []*ViewerStatResponse `json:"viewers"`
}

// LeaderboardFromDomain converts viewer stats to a response.
func LeaderboardFromDomain(adID string, stats []*domain.ViewerStat) *LeaderboardResponse {
	viewers := make([]*ViewerStatResponse, len(stats))
	for i, s := range stats {
		viewers[i] = &ViewerStatResponse{
			ViewerID: s.ViewerID,
			Views:    s.Views,
			Earned:   s.Earned,
		}
	}
	return &LeaderboardResponse{AdID: adID, Viewers: viewers}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
