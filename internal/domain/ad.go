package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ad represents an advertiser-funded ad with a pay-per-view budget.
// BidPerView is frozen at creation; RemainingBudget, ViewCount and
// IsActive are mutated only through settlement.
type Ad struct {
	ID              string
	AdvertiserID    string
	Title           string
	Description     string
	ImageURL        string
	TargetLink      string
	BidPerView      decimal.Decimal
	TotalBudget     decimal.Decimal
	RemainingBudget decimal.Decimal
	ViewCount       int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanBill reports whether the ad can pay for one more view.
func (a *Ad) CanBill() bool {
	return a.IsActive && a.RemainingBudget.GreaterThanOrEqual(a.BidPerView)
}

// Validate checks the creation invariants.
func (a *Ad) Validate() error {
	if a.AdvertiserID == "" {
		return ErrMissingAdvertiser
	}

	if a.Title == "" {
		return ErrMissingTitle
	}

	if a.TargetLink == "" {
		return ErrMissingTargetLink
	}

	if a.BidPerView.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidBid
	}

	if a.TotalBudget.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidBudget
	}

	if a.TotalBudget.LessThan(a.BidPerView) {
		return ErrBudgetBelowBid
	}

	return nil
}
