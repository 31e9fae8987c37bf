package rental

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventRentalCreated       = "RentalCreated"
	EventRentalStatusChanged = "RentalStatusChanged"
	EventRentalDeleted       = "RentalDeleted"
	EventItemCreated         = "ItemCreated"
	EventItemTotalsChanged   = "ItemTotalsChanged"
	EventItemDeleted         = "ItemDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "tool-rental-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya rental_id
	ItemID        int64           `json:"item_id"`
	Payload       json.RawMessage `json:"payload"`
}

// EventPublisher receives envelopes after the owning transaction committed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, env Envelope) error
}

// ---- Payload tipe per event ----

type RentalCreatedPayload struct {
	RentalID     int64  `json:"rental_id"`
	ItemID       int64  `json:"item_id"`
	CustomerID   int64  `json:"customer_id"`
	Quantity     int    `json:"quantity"`
	TotalAmount  string `json:"total_amount"`
	AvailableNow int    `json:"available_now"`
}

type RentalStatusChangedPayload struct {
	RentalID     int64  `json:"rental_id"`
	ItemID       int64  `json:"item_id"`
	From         Status `json:"from"`
	To           Status `json:"to"`
	Credited     int    `json:"credited"`
	AvailableNow int    `json:"available_now"`
}

type RentalDeletedPayload struct {
	RentalID     int64  `json:"rental_id"`
	ItemID       int64  `json:"item_id"`
	Status       Status `json:"status"`
	Credited     int    `json:"credited"`
	AvailableNow int    `json:"available_now"`
}

type ItemTotalsPayload struct {
	ItemID    int64 `json:"item_id"`
	OldTotal  int   `json:"old_total"`
	NewTotal  int   `json:"new_total"`
	Available int   `json:"available"`
}

type ItemDeletedPayload struct {
	ItemID int64 `json:"item_id"`
}

type traceKey struct{}

// WithTraceID stores the request id so emitted events can carry it.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceID(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}
