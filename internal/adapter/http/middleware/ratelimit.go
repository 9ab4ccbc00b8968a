package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "meli-reconciler/internal/adapter/storage/redis"
	"meli-reconciler/pkg/apperror"
	"meli-reconciler/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Endpoint groups with their own counters.
const (
	GroupNotifications = "notifications"
	GroupAdmin         = "admin"
)

// DefaultRateLimitRules returns the limits per endpoint group. webhookPerMinute
// bounds marketplace deliveries per client IP; values <= 0 keep the default.
func DefaultRateLimitRules(webhookPerMinute int64) map[string]RateLimitRule {
	if webhookPerMinute <= 0 {
		webhookPerMinute = 600
	}
	return map[string]RateLimitRule{
		GroupNotifications: {Limit: webhookPerMinute, Window: time.Minute},
		GroupAdmin:         {Limit: 30, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", c.ClientIP(), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		// Always set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Round(time.Second)/time.Second)))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}
