package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DeliveryDedupe implements ports.DeliveryDedupe using Redis SET NX.
type DeliveryDedupe struct {
	client *goredis.Client
	prefix string
}

// NewDeliveryDedupe creates a new Redis-backed delivery dedupe store.
func NewDeliveryDedupe(client *goredis.Client) *DeliveryDedupe {
	return &DeliveryDedupe{
		client: client,
		prefix: "notification:seen:",
	}
}

// CheckAndSet atomically records a delivery id.
// Returns true if the id is new, false if it was seen within ttl.
func (s *DeliveryDedupe) CheckAndSet(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+id, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Key already exists
			return false, nil
		}
		return false, fmt.Errorf("redis dedupe check: %w", err)
	}
	return result == "OK", nil
}
