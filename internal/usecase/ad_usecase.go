package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/infrastructure/metrics"
)

// AdUseCase handles the advertiser-facing ad lifecycle. It never touches
// budget state after creation; settlement owns that.
type AdUseCase struct {
	adRepo  AdRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
}

// NewAdUseCase creates a new AdUseCase. metrics may be nil.
func NewAdUseCase(adRepo AdRepository, idGen IDGenerator, metrics *metrics.Metrics) *AdUseCase {
	return &AdUseCase{
		adRepo:  adRepo,
		idGen:   idGen,
		metrics: metrics,
	}
}

// CreateAdInput represents input for creating an ad.
type CreateAdInput struct {
	AdvertiserID string
	Title        string
	Description  string
	ImageURL     string
	TargetLink   string
	BidPerView   decimal.Decimal
	TotalBudget  decimal.Decimal
}

// CreateAd creates a new ad with the full budget remaining and the bid
// frozen.
func (uc *AdUseCase) CreateAd(ctx context.Context, input CreateAdInput) (*domain.Ad, error) {
	now := time.Now().UTC()

	ad := &domain.Ad{
		ID:              uc.idGen.Generate(),
		AdvertiserID:    input.AdvertiserID,
		Title:           input.Title,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		TargetLink:      input.TargetLink,
		BidPerView:      input.BidPerView,
		TotalBudget:     input.TotalBudget,
		RemainingBudget: input.TotalBudget,
		ViewCount:       0,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := ad.Validate(); err != nil {
		return nil, err
	}

	if err := uc.adRepo.Create(ctx, ad); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdsCreated.Inc()
	}

	return ad, nil
}

// GetAd retrieves an ad by ID.
func (uc *AdUseCase) GetAd(ctx context.Context, id string) (*domain.Ad, error) {
	return uc.adRepo.GetByID(ctx, id)
}

// DeleteAd deletes an ad. An in-flight settlement racing with the delete
// observes the row as gone and terminates with a no-such-ad outcome.
func (uc *AdUseCase) DeleteAd(ctx context.Context, id string) error {
	if err := uc.adRepo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AdsDeleted.Inc()
	}

	return nil
}

// ListAdsByAdvertiserInput represents input for listing an advertiser's ads.
type ListAdsByAdvertiserInput struct {
	AdvertiserID string
	Limit        int
	Offset       int
}

// ListAdsByAdvertiser lists ads owned by an advertiser.
func (uc *AdUseCase) ListAdsByAdvertiser(ctx context.Context, input ListAdsByAdvertiserInput) ([]*domain.Ad, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.adRepo.ListByAdvertiser(ctx, input.AdvertiserID, input.Limit, input.Offset)
}
