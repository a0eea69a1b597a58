package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EarningsAccount holds a viewer's running balance. Created lazily on
// the first credit; only ever incremented.
type EarningsAccount struct {
	ViewerID  string
	Earnings  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
