package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

// AdRepository implements usecase.AdRepository.
type AdRepository struct {
	pool *pgxpool.Pool
}

// NewAdRepository creates a new AdRepository.
func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

const adColumns = `id, advertiser_id, title, description, image_url, target_link,
	bid_per_view, total_budget, remaining_budget, view_count, is_active, created_at, updated_at`

// Create creates a new ad.
func (r *AdRepository) Create(ctx context.Context, ad *domain.Ad) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ads (`+adColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ad.ID,
		ad.AdvertiserID,
		ad.Title,
		ad.Description,
		ad.ImageURL,
		ad.TargetLink,
		decimalToNumeric(ad.BidPerView),
		decimalToNumeric(ad.TotalBudget),
		decimalToNumeric(ad.RemainingBudget),
		ad.ViewCount,
		ad.IsActive,
		timeToPgTimestamptz(ad.CreatedAt),
		timeToPgTimestamptz(ad.UpdatedAt),
	)

	return err
}

// GetByID retrieves an ad by ID.
func (r *AdRepository) GetByID(ctx context.Context, id string) (*domain.Ad, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id)

	ad, err := scanAd(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdNotFound
		}

		return nil, err
	}

	return ad, nil
}

// ListByAdvertiser lists an advertiser's ads, newest first.
func (r *AdRepository) ListByAdvertiser(ctx context.Context, advertiserID string, limit, offset int) ([]*domain.Ad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adColumns+`
		FROM ads
		WHERE advertiser_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		advertiserID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Ad, error) {
		return scanAd(row)
	})
}

// Delete deletes an ad. View records cascade with the row.
func (r *AdRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAdNotFound
	}

	return nil
}

// TrySettle decrements the budget, increments the view count and
// recomputes is_active in one conditional update. Concurrent callers on
// the same ad serialize on the row lock, so no two settlements can spend
// the same budget increment.
func (r *AdRepository) TrySettle(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, now time.Time) (*usecase.SettleResult, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var (
		remaining   pgtype.Numeric
		viewCount   int64
		stillActive bool
	)

	err := pgxTx.QueryRow(ctx, `
		UPDATE ads
		SET remaining_budget = remaining_budget - $2,
		    view_count = view_count + 1,
		    is_active = (remaining_budget - $2 >= bid_per_view),
		    updated_at = $3
		WHERE id = $1
		  AND is_active
		  AND remaining_budget >= $2
		RETURNING remaining_budget, view_count, is_active`,
		id, decimalToNumeric(amount), timeToPgTimestamptz(now),
	).Scan(&remaining, &viewCount, &stillActive)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyRejection(ctx, pgxTx, id, amount)
	}

	if err != nil {
		return nil, err
	}

	return &usecase.SettleResult{
		RemainingBudget: numericToDecimal(remaining),
		ViewCount:       viewCount,
		StillActive:     stillActive,
	}, nil
}

// classifyRejection decides why the conditional update matched no row.
func (r *AdRepository) classifyRejection(ctx context.Context, pgxTx pgx.Tx, id string, amount decimal.Decimal) error {
	var (
		isActive  bool
		remaining pgtype.Numeric
	)

	err := pgxTx.QueryRow(ctx, `SELECT is_active, remaining_budget FROM ads WHERE id = $1`, id).
		Scan(&isActive, &remaining)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrAdNotFound
	case err != nil:
		return err
	case numericToDecimal(remaining).LessThan(amount):
		// Checked before is_active: an ad deactivated by exhaustion has
		// remaining < bid, and the device that lost the race for the
		// last increment must see the budget rejection, not the
		// deactivation it caused.
		return domain.ErrInsufficientBudget
	case !isActive:
		return domain.ErrAdInactive
	default:
		// Unreachable in practice: the conditional update and this read
		// run in one transaction and see the same committed row, so a
		// row that qualifies here would have matched the update.
		return domain.ErrInsufficientBudget
	}
}

func scanAd(row pgx.Row) (*domain.Ad, error) {
	var (
		ad        domain.Ad
		bid       pgtype.Numeric
		total     pgtype.Numeric
		remaining pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&ad.ID,
		&ad.AdvertiserID,
		&ad.Title,
		&ad.Description,
		&ad.ImageURL,
		&ad.TargetLink,
		&bid,
		&total,
		&remaining,
		&ad.ViewCount,
		&ad.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ad.BidPerView = numericToDecimal(bid)
	ad.TotalBudget = numericToDecimal(total)
	ad.RemainingBudget = numericToDecimal(remaining)
	ad.CreatedAt = createdAt.Time
	ad.UpdatedAt = updatedAt.Time

	return &ad, nil
}
