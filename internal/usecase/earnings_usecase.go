package usecase

import (
	"context"

	"github.com/iho/adledger/internal/domain"
)

// EarningsUseCase exposes the read side of earnings accounts. Credits
// only ever happen inside settlement.
type EarningsUseCase struct {
	earningsRepo EarningsRepository
}

// NewEarningsUseCase creates a new EarningsUseCase.
func NewEarningsUseCase(earningsRepo EarningsRepository) *EarningsUseCase {
	return &EarningsUseCase{earningsRepo: earningsRepo}
}

// GetEarnings returns a viewer's balance. A viewer that was never
// credited gets a zero-balance account.
func (uc *EarningsUseCase) GetEarnings(ctx context.Context, viewerID string) (*domain.EarningsAccount, error) {
	return uc.earningsRepo.Get(ctx, viewerID)
}
