package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the terminal result of one settlement attempt.
type Outcome string

const (
	// OutcomeSettled means the view was billed: budget decremented,
	// viewer credited.
	OutcomeSettled Outcome = "settled"
	// OutcomeDuplicate means the device already holds the dedup slot for
	// this ad.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeNotBillable means the ad was already inactive before the
	// dedup gate; nothing was recorded.
	OutcomeNotBillable Outcome = "not_billable"
	// OutcomeInactive means the ad went inactive between the dedup insert
	// and the budget decrement; the dedup record is retained unbilled.
	OutcomeInactive Outcome = "inactive"
	// OutcomeInsufficientBudget means the remaining budget could not cover
	// the bid; the dedup record is retained unbilled.
	OutcomeInsufficientBudget Outcome = "insufficient_budget"
	// OutcomeNoSuchAd means the ad does not exist.
	OutcomeNoSuchAd Outcome = "no_such_ad"
)

// Billable reports whether the outcome moved money.
func (o Outcome) Billable() bool {
	return o == OutcomeSettled
}

// Settlement describes what one SettleView attempt did.
type Settlement struct {
	Outcome         Outcome
	AdID            string
	ViewerID        string
	DeviceID        string
	Amount          decimal.Decimal
	RemainingBudget decimal.Decimal
	AdStillActive   bool
	SettledAt       time.Time
}
