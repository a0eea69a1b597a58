package usecase

import (
	"context"

	"github.com/iho/adledger/internal/domain"
)

// ReportUseCase serves read projections over the view ledger for the
// dashboards. It imposes no invariants of its own.
type ReportUseCase struct {
	adRepo   AdRepository
	viewRepo ViewRepository
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(adRepo AdRepository, viewRepo ViewRepository) *ReportUseCase {
	return &ReportUseCase{
		adRepo:   adRepo,
		viewRepo: viewRepo,
	}
}

// Leaderboard groups an ad's billed views by the viewer who shared the
// link, ordered by amount earned.
func (uc *ReportUseCase) Leaderboard(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
	if _, err := uc.adRepo.GetByID(ctx, adID); err != nil {
		return nil, err
	}

	return uc.viewRepo.StatsByViewer(ctx, adID)
}

// ListViewsInput represents input for listing an ad's view records.
type ListViewsInput struct {
	AdID   string
	Limit  int
	Offset int
}

// ListViews lists an ad's view records, newest first.
func (uc *ReportUseCase) ListViews(ctx context.Context, input ListViewsInput) ([]*domain.ViewRecord, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.viewRepo.ListByAd(ctx, input.AdID, input.Limit, input.Offset)
}
