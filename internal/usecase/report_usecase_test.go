package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
	"github.com/iho/adledger/internal/usecase/mocks"
)

func TestLeaderboard(t *testing.T) {
	f := newSettlementFixture()
	f.seedAd("ad-1", 10, 100)

	ctx := context.Background()

	// viewer-1 brings three devices, viewer-2 brings one.
	for _, view := range []struct{ viewer, device string }{
		{"viewer-1", "device-a"},
		{"viewer-1", "device-b"},
		{"viewer-1", "device-c"},
		{"viewer-2", "device-d"},
	} {
		s, err := f.uc.SettleView(ctx, "ad-1", view.viewer, view.device)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeSettled, s.Outcome)
	}

	reportUC := usecase.NewReportUseCase(f.adRepo, f.viewRepo)

	stats, err := reportUC.Leaderboard(ctx, "ad-1")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "viewer-1", stats[0].ViewerID)
	assert.Equal(t, int64(3), stats[0].Views)
	assert.True(t, stats[0].Earned.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, "viewer-2", stats[1].ViewerID)
	assert.Equal(t, int64(1), stats[1].Views)
}

func TestLeaderboard_AdNotFound(t *testing.T) {
	reportUC := usecase.NewReportUseCase(mocks.NewMockAdRepository(), mocks.NewMockViewRepository())

	_, err := reportUC.Leaderboard(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAdNotFound)
}

func TestListViews(t *testing.T) {
	f := newSettlementFixture()
	f.seedAd("ad-1", 10, 100)

	ctx := context.Background()

	for _, device := range []string{"device-a", "device-b"} {
		_, err := f.uc.SettleView(ctx, "ad-1", "viewer-1", device)
		require.NoError(t, err)
	}

	reportUC := usecase.NewReportUseCase(f.adRepo, f.viewRepo)

	records, err := reportUC.ListViews(ctx, usecase.ListViewsInput{AdID: "ad-1"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGetEarnings_UnknownViewerIsZero(t *testing.T) {
	uc := usecase.NewEarningsUseCase(mocks.NewMockEarningsRepository())

	account, err := uc.GetEarnings(context.Background(), "viewer-x")
	require.NoError(t, err)
	assert.Equal(t, "viewer-x", account.ViewerID)
	assert.True(t, account.Earnings.IsZero())
}
