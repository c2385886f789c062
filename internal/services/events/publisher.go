// Package events streams recorded transaction events to downstream consumers.
//
// Publishing happens after the event row is committed and is best-effort:
// a failed publish is logged and counted but never changes the decision or
// causes a second write.
package events

import (
	"context"
	"encoding/json"
	"time"

	"cardguard/internal/models"
)

// Publisher delivers committed events. Publish must not block on the broker.
type Publisher interface {
	Publish(ctx context.Context, event *models.TransactionEvent)
	Close()
}

// Message is the wire form of a published event.
type Message struct {
	TransactionID  string    `json:"transaction_id"`
	CardholderHash *string   `json:"cchash,omitempty"`
	MerchantAPIKey *string   `json:"merchant_api_key,omitempty"`
	Amount         float64   `json:"amount"`
	Location       string    `json:"location"`
	Status         int       `json:"status"`
	StatusName     string    `json:"status_name"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewMessage(event *models.TransactionEvent) Message {
	return Message{
		TransactionID:  event.Reference,
		CardholderHash: event.CardholderHash,
		MerchantAPIKey: event.MerchantAPIKey,
		Amount:         event.Amount,
		Location:       event.Location,
		Status:         int(event.Status),
		StatusName:     event.Status.String(),
		Timestamp:      event.Timestamp.UTC(),
	}
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.TransactionEvent) {}
func (NoopPublisher) Close()                                            {}
