package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"meli-reconciler/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// CredentialCache implements ports.CredentialCache using Redis.
type CredentialCache struct {
	client *goredis.Client
	prefix string
}

// NewCredentialCache creates a new Redis-backed credential cache.
func NewCredentialCache(client *goredis.Client) *CredentialCache {
	return &CredentialCache{
		client: client,
		prefix: "credentials:",
	}
}

// Get returns cached credentials for a seller.
// Returns nil, nil if nothing is cached.
func (c *CredentialCache) Get(ctx context.Context, userID int64) (*domain.Credentials, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis credentials get: %w", err)
	}
	var creds domain.Credentials
	if err := json.Unmarshal(val, &creds); err != nil {
		return nil, fmt.Errorf("decode cached credentials: %w", err)
	}
	return &creds, nil
}

// Set caches credentials for ttl. A non-positive ttl is a no-op.
func (c *CredentialCache) Set(ctx context.Context, creds *domain.Credentials, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := c.client.Set(ctx, c.key(creds.UserID), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis credentials set: %w", err)
	}
	return nil
}

// Delete drops the cached credentials of a seller.
func (c *CredentialCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis credentials delete: %w", err)
	}
	return nil
}

func (c *CredentialCache) key(userID int64) string {
	return c.prefix + strconv.FormatInt(userID, 10)
}
