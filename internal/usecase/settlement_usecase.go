package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/adledger/internal/domain"
)

// SettlementUseCase decides whether a view is billable and moves money
// from the ad's budget to the viewer's earnings. It is the only writer
// of view records, earnings accounts and ad budget state.
type SettlementUseCase struct {
	txManager    TransactionManager
	adRepo       AdRepository
	viewRepo     ViewRepository
	earningsRepo EarningsRepository
	outboxRepo   OutboxRepository
	deviceCache  DeviceSeenCache
	retrier      Retrier
	idGen        IDGenerator
}

// NewSettlementUseCase creates a new SettlementUseCase. deviceCache may
// be nil, in which case every request goes straight to the store.
func NewSettlementUseCase(
	txManager TransactionManager,
	adRepo AdRepository,
	viewRepo ViewRepository,
	earningsRepo EarningsRepository,
	outboxRepo OutboxRepository,
	deviceCache DeviceSeenCache,
	retrier Retrier,
	idGen IDGenerator,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:    txManager,
		adRepo:       adRepo,
		viewRepo:     viewRepo,
		earningsRepo: earningsRepo,
		outboxRepo:   outboxRepo,
		deviceCache:  deviceCache,
		retrier:      retrier,
		idGen:        idGen,
	}
}

// SettleView runs one settlement attempt to a terminal outcome.
//
// Check order matters: the dedup gate comes before the budget decrement
// so a flood of repeat opens from an already-seen device never contends
// on the ad row. The dedup insert, the budget decrement and the earnings
// credit share one transaction, so the decrement and the credit are
// both-or-neither for any outside observer. The dedup record survives a
// failed decrement on purpose: a device that arrived after the budget
// ran out has consumed its slot for this ad.
func (uc *SettlementUseCase) SettleView(ctx context.Context, adID, viewerID, deviceID string) (*domain.Settlement, error) {
	ad, err := uc.adRepo.GetByID(ctx, adID)
	if errors.Is(err, domain.ErrAdNotFound) {
		return uc.terminal(domain.OutcomeNoSuchAd, adID, viewerID, deviceID), nil
	}

	if err != nil {
		return nil, err
	}

	if !ad.IsActive {
		return uc.terminal(domain.OutcomeNotBillable, adID, viewerID, deviceID), nil
	}

	if uc.deviceCache != nil {
		if seen, cacheErr := uc.deviceCache.Seen(ctx, adID, deviceID); cacheErr == nil && seen {
			return uc.terminal(domain.OutcomeDuplicate, adID, viewerID, deviceID), nil
		}
	}

	var settlement *domain.Settlement

	err = uc.retrier.Retry(ctx, func() error {
		s, txErr := uc.settleOnce(ctx, ad, viewerID, deviceID)
		if txErr != nil {
			return txErr
		}

		settlement = s

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.deviceCache != nil && settlement.Outcome != domain.OutcomeNoSuchAd {
		// Device now holds (or already held) its dedup slot.
		_ = uc.deviceCache.MarkSeen(ctx, adID, deviceID)
	}

	return settlement, nil
}

func (uc *SettlementUseCase) settleOnce(ctx context.Context, ad *domain.Ad, viewerID, deviceID string) (*domain.Settlement, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	record := &domain.ViewRecord{
		AdID:      ad.ID,
		DeviceID:  deviceID,
		ViewerID:  viewerID,
		CreatedAt: now,
	}

	err = uc.viewRepo.Insert(ctx, tx, record)

	switch {
	case errors.Is(err, domain.ErrDuplicateView):
		return uc.terminal(domain.OutcomeDuplicate, ad.ID, viewerID, deviceID), nil
	case errors.Is(err, domain.ErrAdNotFound):
		// Ad deleted between the read and the insert.
		return uc.terminal(domain.OutcomeNoSuchAd, ad.ID, viewerID, deviceID), nil
	case err != nil:
		return nil, err
	}

	result, err := uc.adRepo.TrySettle(ctx, tx, ad.ID, ad.BidPerView, now)

	switch {
	case errors.Is(err, domain.ErrAdNotFound):
		return uc.terminal(domain.OutcomeNoSuchAd, ad.ID, viewerID, deviceID), nil
	case errors.Is(err, domain.ErrAdInactive):
		// Commit so the dedup record is retained.
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return nil, commitErr
		}

		return uc.terminal(domain.OutcomeInactive, ad.ID, viewerID, deviceID), nil
	case errors.Is(err, domain.ErrInsufficientBudget):
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return nil, commitErr
		}

		return uc.terminal(domain.OutcomeInsufficientBudget, ad.ID, viewerID, deviceID), nil
	case err != nil:
		return nil, err
	}

	if err := uc.viewRepo.MarkBilled(ctx, tx, ad.ID, deviceID, ad.BidPerView); err != nil {
		return nil, err
	}

	if _, err := uc.earningsRepo.Credit(ctx, tx, viewerID, ad.BidPerView, now); err != nil {
		return nil, err
	}

	if err := uc.writeSettlementEvents(ctx, tx, ad, viewerID, deviceID, result, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.Settlement{
		Outcome:         domain.OutcomeSettled,
		AdID:            ad.ID,
		ViewerID:        viewerID,
		DeviceID:        deviceID,
		Amount:          ad.BidPerView,
		RemainingBudget: result.RemainingBudget,
		AdStillActive:   result.StillActive,
		SettledAt:       now,
	}, nil
}

func (uc *SettlementUseCase) writeSettlementEvents(
	ctx context.Context,
	tx Transaction,
	ad *domain.Ad,
	viewerID, deviceID string,
	result *SettleResult,
	now time.Time,
) error {
	err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   ad.ID,
		AggregateType: domain.AggregateTypeAd,
		EventType:     domain.EventTypeViewSettled,
		Payload: map[string]any{
			"ad_id":            ad.ID,
			"viewer_id":        viewerID,
			"device_id":        deviceID,
			"amount":           ad.BidPerView.String(),
			"remaining_budget": result.RemainingBudget.String(),
			"settled_at":       now.Format(time.RFC3339Nano),
		},
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	if result.StillActive {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   ad.ID,
		AggregateType: domain.AggregateTypeAd,
		EventType:     domain.EventTypeAdExhausted,
		Payload: map[string]any{
			"ad_id":            ad.ID,
			"remaining_budget": result.RemainingBudget.String(),
			"view_count":       result.ViewCount,
		},
		CreatedAt: now,
	})
}

func (uc *SettlementUseCase) terminal(outcome domain.Outcome, adID, viewerID, deviceID string) *domain.Settlement {
	return &domain.Settlement{
		Outcome:  outcome,
		AdID:     adID,
		ViewerID: viewerID,
		DeviceID: deviceID,
	}
}
