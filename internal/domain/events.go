package domain

import "time"

// Event types
const (
	EventTypeViewSettled    = "view.settled"
	EventTypeAdCreated      = "ad.created"
	EventTypeAdDeleted      = "ad.deleted"
	EventTypeAdExhausted    = "ad.exhausted"
	EventTypeViewerCredited = "viewer.credited"
)

// Aggregate types
const (
	AggregateTypeAd     = "ad"
	AggregateTypeViewer = "viewer"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ViewSettledEvent payload
type ViewSettledEvent struct {
	AdID            string `json:"ad_id"`
	ViewerID        string `json:"viewer_id"`
	DeviceID        string `json:"device_id"`
	Amount          string `json:"amount"`
	RemainingBudget string `json:"remaining_budget"`
	SettledAt       string `json:"settled_at"`
}

// AdExhaustedEvent payload
type AdExhaustedEvent struct {
	AdID            string `json:"ad_id"`
	RemainingBudget string `json:"remaining_budget"`
	ViewCount       int64  `json:"view_count"`
}

// AdCreatedEvent payload
type AdCreatedEvent struct {
	AdID         string `json:"ad_id"`
	AdvertiserID string `json:"advertiser_id"`
	BidPerView   string `json:"bid_per_view"`
	TotalBudget  string `json:"total_budget"`
}
