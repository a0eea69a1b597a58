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

// EarningsRepository implements usecase.EarningsRepository.
type EarningsRepository struct {
	pool *pgxpool.Pool
}

// NewEarningsRepository creates a new EarningsRepository.
func NewEarningsRepository(pool *pgxpool.Pool) *EarningsRepository {
	return &EarningsRepository{pool: pool}
}

// Credit adds amount to the viewer's balance, creating the account on
// first credit. The upsert add is commutative, so concurrent credits to
// the same account cannot lose updates.
func (r *EarningsRepository) Credit(ctx context.Context, tx usecase.Transaction, viewerID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var balance pgtype.Numeric

	err := pgxTx.QueryRow(ctx, `
		INSERT INTO earnings_accounts (viewer_id, earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (viewer_id) DO UPDATE
		SET earnings = earnings_accounts.earnings + EXCLUDED.earnings,
		    updated_at = EXCLUDED.updated_at
		RETURNING earnings`,
		viewerID, decimalToNumeric(amount), timeToPgTimestamptz(now),
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// Get returns a viewer's account, or a zero balance when the viewer was
// never credited.
func (r *EarningsRepository) Get(ctx context.Context, viewerID string) (*domain.EarningsAccount, error) {
	var (
		account   domain.EarningsAccount
		earnings  pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT viewer_id, earnings, created_at, updated_at
		FROM earnings_accounts
		WHERE viewer_id = $1`,
		viewerID,
	).Scan(&account.ViewerID, &earnings, &createdAt, &updatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.EarningsAccount{ViewerID: viewerID, Earnings: decimal.Zero}, nil
	}

	if err != nil {
		return nil, err
	}

	account.Earnings = numericToDecimal(earnings)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}
