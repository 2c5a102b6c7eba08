package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	// FailClosed answers 503 instead of letting the request through.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// RateLimiter counts requests per resource and caller in fixed Redis windows.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	policy  FailPolicy
}

// NewRateLimiter returns a limiter backed by rdb. A disabled limiter lets
// everything through, which is what test and development runs use.
func NewRateLimiter(rdb *redis.Client, enabled bool, policy FailPolicy) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: enabled, policy: policy}
}

// RateLimitEnabled reports whether env is one that enforces rate limits.
func RateLimitEnabled(env string) bool {
	switch env {
	case "", "test", "development":
		return false
	}
	return true
}

// Allow records one hit for id on resource and reports whether it is within limit.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// Handler enforces limit requests per window on the named resource, keyed by
// user when the request is authenticated and by remote IP otherwise.
func (l *RateLimiter) Handler(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			log := LoggerFromContext(c.UserContext())
			if l.policy == FailClosed {
				log.Warn("rate limit store unavailable, failing closed", zap.String("resource", resource), zap.Error(err))
				return fiber.NewError(fiber.StatusServiceUnavailable, "Service temporarily unavailable, please try again later.")
			}
			log.Debug("rate limit store unavailable, failing open", zap.String("resource", resource), zap.Error(err))
			return c.Next()
		}

		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, please try again later.")
		}
		return c.Next()
	}
}
