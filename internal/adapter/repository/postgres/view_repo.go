package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/usecase"
)

const pgErrForeignKeyViolation = "23503"

// ViewRepository implements usecase.ViewRepository. The (ad_id,
// device_id) primary key is the dedup index: the insert and the
// existence check are one statement.
type ViewRepository struct {
	pool *pgxpool.Pool
}

// NewViewRepository creates a new ViewRepository.
func NewViewRepository(pool *pgxpool.Pool) *ViewRepository {
	return &ViewRepository{pool: pool}
}

// Insert claims the dedup slot for (record.AdID, record.DeviceID).
func (r *ViewRepository) Insert(ctx context.Context, tx usecase.Transaction, record *domain.ViewRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		INSERT INTO view_records (ad_id, device_id, viewer_id, billed, amount, created_at)
		VALUES ($1, $2, $3, FALSE, 0, $4)
		ON CONFLICT (ad_id, device_id) DO NOTHING`,
		record.AdID, record.DeviceID, record.ViewerID, timeToPgTimestamptz(record.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			return domain.ErrAdNotFound
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateView
	}

	return nil
}

// MarkBilled flags the record as billed with the charged amount.
func (r *ViewRepository) MarkBilled(ctx context.Context, tx usecase.Transaction, adID, deviceID string, amount decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE view_records
		SET billed = TRUE, amount = $3
		WHERE ad_id = $1 AND device_id = $2`,
		adID, deviceID, decimalToNumeric(amount),
	)

	return err
}

// ListByAd lists an ad's view records, newest first.
func (r *ViewRepository) ListByAd(ctx context.Context, adID string, limit, offset int) ([]*domain.ViewRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ad_id, device_id, viewer_id, billed, amount, created_at
		FROM view_records
		WHERE ad_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		adID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ViewRecord, error) {
		var (
			record    domain.ViewRecord
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := row.Scan(&record.AdID, &record.DeviceID, &record.ViewerID, &record.Billed, &amount, &createdAt)
		if err != nil {
			return nil, err
		}

		record.Amount = numericToDecimal(amount)
		record.CreatedAt = createdAt.Time

		return &record, nil
	})
}

// StatsByViewer groups billed views by the crediting viewer, biggest
// earners first.
func (r *ViewRepository) StatsByViewer(ctx context.Context, adID string) ([]*domain.ViewerStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT viewer_id, COUNT(*), COALESCE(SUM(amount), 0)
		FROM view_records
		WHERE ad_id = $1 AND billed
		GROUP BY viewer_id
		ORDER BY 3 DESC, viewer_id`,
		adID,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ViewerStat, error) {
		var (
			stat   domain.ViewerStat
			earned pgtype.Numeric
		)

		if err := row.Scan(&stat.ViewerID, &stat.Views, &earned); err != nil {
			return nil, err
		}

		stat.Earned = numericToDecimal(earned)

		return &stat, nil
	})
}
