package dto

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateAdRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAdRequest{
		AdvertiserID: "adv-1",
		Title:        "Spring Sale",
		Description:  "Half off everything",
		ImageURL:     "https://cdn.example.com/sale.png",
		TargetLink:   "https://shop.example.com/sale",
		BidPerView:   decimal.RequireFromString("0.20"),
		TotalBudget:  decimal.RequireFromString("100"),
	}

	got := req.ToUseCaseInput()

	if got.AdvertiserID != "adv-1" || got.Title != "Spring Sale" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.TargetLink != req.TargetLink || got.ImageURL != req.ImageURL {
		t.Fatalf("unexpected link fields: %+v", got)
	}
	if !got.BidPerView.Equal(req.BidPerView) || !got.TotalBudget.Equal(req.TotalBudget) {
		t.Fatalf("unexpected money fields: %+v", got)
	}
}
