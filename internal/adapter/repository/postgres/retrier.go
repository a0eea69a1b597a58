package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Retryable PostgreSQL error codes. Every settlement for an ad updates
// the same budget row, so deadlocks and serialization failures are the
// expected contention signature under a view burst.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"

	// Class 08: the connection died mid-transaction; the settlement
	// rolled back and is safe to re-run from the top.
	pgErrClassConnection = "08"
)

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

// NewRetrier creates a retrier tuned for settlement transactions: short
// initial backoff because budget-row contention clears in milliseconds,
// bounded total wait because a settlement job holds a worker slot.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn("retryable database error, retrying",
			"error", err,
			"retry", retryCount,
		)

		return err
	}, backoff.WithContext(b, ctx))
}

// isRetryableError reports whether re-running the transaction can
// succeed. Business rejections (duplicate view, exhausted budget) never
// land here; they are mapped to domain errors before the retrier sees
// them.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgErrClassConnection)
	}
	return false
}
