// Package events publishes catalog change notifications.
package events

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProductCreated      = "product.created"
	ProductUpdated      = "product.updated"
	ProductDeleted      = "product.deleted"
	ProductStockUpdated = "product.stock_updated"
	CategoryCreated     = "category.created"
	CategoryUpdated     = "category.updated"
	CategoryDeleted     = "category.deleted"
)

// Event is the message body. Type doubles as the routing key.
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(eventType string, id primitive.ObjectID, payload any) Event {
	return Event{
		Type:       eventType,
		ID:         id.Hex(),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
