package inventory

import (
	"context"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
)

// StockLocationEvent is published for every stock-location notification.
type StockLocationEvent struct {
	UserProductID  string `json:"user_product_id"`
	Resource       string `json:"resource"`
	NotificationID string `json:"notification_id"`
	Source         string `json:"source"`
}

// KafkaForwarder publishes stock-location changes to the message bus.
type KafkaForwarder struct {
	publisher ports.EventPublisher
}

// NewKafkaForwarder creates a forwarder on top of publisher.
func NewKafkaForwarder(publisher ports.EventPublisher) *KafkaForwarder {
	return &KafkaForwarder{publisher: publisher}
}

// Dispatch publishes the event keyed by user product id.
func (f *KafkaForwarder) Dispatch(ctx context.Context, n *domain.Notification, userProductID string) error {
	return f.publisher.Publish(ctx, userProductID, StockLocationEvent{
		UserProductID:  userProductID,
		Resource:       n.Resource,
		NotificationID: n.ID,
		Source:         ForwardSource,
	})
}
