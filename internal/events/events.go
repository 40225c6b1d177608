// Package events defines domain event emission. Emission is fire-and-forget
// from the caller's point of view: a failing broker never rolls back the
// state change the event describes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source events.go -destination mock_events.go -package events

// Envelope wraps a message with metadata for tracing and routing.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Key       string          `json:"key"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope creates an envelope with a generated event ID.
func NewEnvelope(key, msgType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:   uuid.New().String(),
		Key:       key,
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// TransactionUpdated is emitted on every transaction status change so
// external collaborators (notifications, real-time feeds) can react.
type TransactionUpdated struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ListingID     uuid.UUID `json:"listing_id"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	Status        string    `json:"status"`
	TotalAmount   int64     `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const TypeTransactionUpdated = "payments.transaction_updated"

// Emitter hands an event to the dispatcher. Never blocks, never fails the
// caller.
type Emitter interface {
	EmitTransactionUpdated(ctx context.Context, event TransactionUpdated)
}

// Publisher sends envelopes to a broker or sink.
type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
	Close() error
}
