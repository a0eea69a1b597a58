package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/adapter/http/dto"
	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

type reportServiceStub struct {
	leaderboardFn func(ctx context.Context, adID string) ([]*domain.ViewerStat, error)
	listViewsFn   func(ctx context.Context, input usecase.ListViewsInput) ([]*domain.ViewRecord, error)
}

func (s *reportServiceStub) Leaderboard(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
	return s.leaderboardFn(ctx, adID)
}

func (s *reportServiceStub) ListViews(ctx context.Context, input usecase.ListViewsInput) ([]*domain.ViewRecord, error) {
	return s.listViewsFn(ctx, input)
}

func TestReportHandler_Leaderboard(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		leaderboardFn: func(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
			return []*domain.ViewerStat{
				{ViewerID: "viewer-1", Views: 2, Earned: decimal.RequireFromString("0.40")},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ads/ad-1/leaderboard", nil)
	req = setChiURLParams(req, map[string]string{"id": "ad-1"})
	rec := httptest.NewRecorder()

	handler.Leaderboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.LeaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AdID != "ad-1" || len(resp.Viewers) != 1 {
		t.Fatalf("unexpected leaderboard: %+v", resp)
	}
}

func TestReportHandler_Leaderboard_UnknownAd(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		leaderboardFn: func(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
			return nil, domain.ErrAdNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ads/missing/leaderboard", nil)
	req = setChiURLParams(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.Leaderboard(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReportHandler_ListViews(t *testing.T) {
	handler := NewReportHandler(&reportServiceStub{
		listViewsFn: func(ctx context.Context, input usecase.ListViewsInput) ([]*domain.ViewRecord, error) {
			if input.AdID != "ad-1" {
				t.Fatalf("expected ad-1, got %s", input.AdID)
			}
			return []*domain.ViewRecord{
				{AdID: "ad-1", DeviceID: "dev-1", ViewerID: "viewer-1", Billed: true, Amount: decimal.RequireFromString("0.20")},
				{AdID: "ad-1", DeviceID: "dev-2", ViewerID: "viewer-1", Billed: false, Amount: decimal.Zero},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ads/ad-1/views", nil)
	req = setChiURLParams(req, map[string]string{"id": "ad-1"})
	rec := httptest.NewRecorder()

	handler.ListViews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListViewsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(resp.Views))
	}
}
