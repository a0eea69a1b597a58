package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/adapter/repository/postgres"
	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
	"github.com/iho/adledger/tests/testutil"
)

// newConcurrentStack is newSettlementStack with the outbox swapped for a
// no-op repository, so the race assertions are not skewed by outbox writes.
func newConcurrentStack(pool *testutil.TestDB) (*usecase.SettlementUseCase, *postgres.AdRepository, *postgres.EarningsRepository, *postgres.ViewRepository) {
	adRepo := postgres.NewAdRepository(pool.Pool)
	viewRepo := postgres.NewViewRepository(pool.Pool)
	earningsRepo := postgres.NewEarningsRepository(pool.Pool)
	txManager := postgres.NewTxManager(pool.Pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()

	uc := usecase.NewSettlementUseCase(txManager, adRepo, viewRepo, earningsRepo, postgres.NewNullOutboxRepository(), nil, retrier, idGen)

	return uc, adRepo, earningsRepo, viewRepo
}

func TestConcurrentSettlement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	uc, adRepo, earningsRepo, viewRepo := newConcurrentStack(testDB)

	t.Run("distinct devices never overdraw the budget", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// Budget funds exactly 20 of the 40 competing devices.
		bid := decimal.RequireFromString("5")
		ad := testDB.CreateTestAd(ctx, "adv-1", bid, decimal.RequireFromString("100"))

		const devices = 40

		var wg sync.WaitGroup
		outcomes := make([]domain.Outcome, devices)
		errs := make([]error, devices)

		for i := 0; i < devices; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				settlement, err := uc.SettleView(ctx, ad.ID, "viewer-1", fmt.Sprintf("device-%d", i))
				if err != nil {
					errs[i] = err
					return
				}
				outcomes[i] = settlement.Outcome
			}(i)
		}
		wg.Wait()

		settled := 0
		for i := 0; i < devices; i++ {
			if errs[i] != nil {
				t.Fatalf("SettleView %d failed: %v", i, errs[i])
			}
			switch outcomes[i] {
			case domain.OutcomeSettled:
				settled++
			case domain.OutcomeInsufficientBudget:
				// Lost the race inside the settlement transaction.
			case domain.OutcomeNotBillable:
				// Loaded the ad after exhaustion deactivated it.
			default:
				t.Fatalf("unexpected outcome for device %d: %s", i, outcomes[i])
			}
		}
		if settled != 20 {
			t.Fatalf("expected exactly 20 settled views, got %d", settled)
		}

		updated, err := adRepo.GetByID(ctx, ad.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !updated.RemainingBudget.IsZero() {
			t.Fatalf("expected zero remaining budget, got %s", updated.RemainingBudget)
		}
		if updated.IsActive {
			t.Fatal("expected ad to be inactive")
		}
		if updated.ViewCount != 20 {
			t.Fatalf("expected view count 20, got %d", updated.ViewCount)
		}

		// Conservation: every cent leaving the budget arrived in the
		// viewer's earnings.
		account, err := earningsRepo.Get(ctx, "viewer-1")
		if err != nil {
			t.Fatalf("earnings Get failed: %v", err)
		}
		if !account.Earnings.Equal(decimal.RequireFromString("100")) {
			t.Fatalf("expected earnings 100, got %s", account.Earnings)
		}
	})

	t.Run("same device settles exactly once", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		ad := testDB.CreateTestAd(ctx, "adv-1", decimal.RequireFromString("1"), decimal.RequireFromString("50"))

		const attempts = 20

		var wg sync.WaitGroup
		outcomes := make([]domain.Outcome, attempts)
		errs := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				settlement, err := uc.SettleView(ctx, ad.ID, "viewer-1", "shared-device")
				if err != nil {
					errs[i] = err
					return
				}
				outcomes[i] = settlement.Outcome
			}(i)
		}
		wg.Wait()

		settled := 0
		for i := 0; i < attempts; i++ {
			if errs[i] != nil {
				t.Fatalf("SettleView %d failed: %v", i, errs[i])
			}
			if outcomes[i] == domain.OutcomeSettled {
				settled++
			}
		}
		if settled != 1 {
			t.Fatalf("expected exactly 1 settled view, got %d", settled)
		}

		views, err := viewRepo.ListByAd(ctx, ad.ID, 100, 0)
		if err != nil {
			t.Fatalf("ListByAd failed: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected a single view record, got %d", len(views))
		}

		updated, err := adRepo.GetByID(ctx, ad.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !updated.RemainingBudget.Equal(decimal.RequireFromString("49")) {
			t.Fatalf("expected remaining 49, got %s", updated.RemainingBudget)
		}
	})
}
