package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/adledger/internal/domain"
)

// AdRepository defines data access for ads.
type AdRepository interface {
	Create(ctx context.Context, ad *domain.Ad) error
	GetByID(ctx context.Context, id string) (*domain.Ad, error)
	ListByAdvertiser(ctx context.Context, advertiserID string, limit, offset int) ([]*domain.Ad, error)
	Delete(ctx context.Context, id string) error
	// TrySettle atomically checks that the ad is active and the remaining
	// budget covers amount, then decrements the budget, increments the
	// view count and recomputes is_active in a single conditional update.
	// Returns domain.ErrAdNotFound, domain.ErrAdInactive or
	// domain.ErrInsufficientBudget when the check fails; no mutation
	// happens in those cases.
	TrySettle(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, now time.Time) (*SettleResult, error)
}

// SettleResult is the ad state immediately after a successful TrySettle.
type SettleResult struct {
	RemainingBudget decimal.Decimal
	ViewCount       int64
	StillActive     bool
}

// ViewRepository defines data access for view records.
type ViewRepository interface {
	// Insert claims the (adID, deviceID) dedup slot. The check and the
	// insert are one atomic statement; domain.ErrDuplicateView is
	// returned when the slot is already taken.
	Insert(ctx context.Context, tx Transaction, record *domain.ViewRecord) error
	// MarkBilled flags an inserted record as billed with the charged
	// amount.
	MarkBilled(ctx context.Context, tx Transaction, adID, deviceID string, amount decimal.Decimal) error
	ListByAd(ctx context.Context, adID string, limit, offset int) ([]*domain.ViewRecord, error)
	// StatsByViewer groups billed view records of an ad by viewer.
	StatsByViewer(ctx context.Context, adID string) ([]*domain.ViewerStat, error)
}

// EarningsRepository defines data access for earnings accounts.
type EarningsRepository interface {
	// Credit adds amount to the viewer's balance, creating the account if
	// absent. The add is commutative and safe under concurrent callers.
	Credit(ctx context.Context, tx Transaction, viewerID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	Get(ctx context.Context, viewerID string) (*domain.EarningsAccount, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// DeviceSeenCache is a fast-path duplicate filter in front of the
// authoritative unique index. Both methods are best effort: errors are
// ignored by callers.
type DeviceSeenCache interface {
	Seen(ctx context.Context, adID, deviceID string) (bool, error)
	MarkSeen(ctx context.Context, adID, deviceID string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
