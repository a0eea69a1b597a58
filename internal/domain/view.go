package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ViewRecord is the append-only record of one device opening one ad.
// The (AdID, DeviceID) pair is unique across all time for an ad: the
// record doubles as the dedup index. Billed is false when the record was
// inserted but the budget could no longer cover the bid at settlement
// time; such a device keeps its dedup slot and forfeits billing.
type ViewRecord struct {
	AdID      string
	DeviceID  string
	ViewerID  string
	Billed    bool
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// ViewerStat is a leaderboard row: billed views and earnings attributed
// to one viewer for one ad.
type ViewerStat struct {
	ViewerID string
	Views    int64
	Earned   decimal.Decimal
}
