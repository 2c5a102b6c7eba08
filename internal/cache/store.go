package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"shortlink/internal/middleware"
	"shortlink/internal/observability"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store wraps an optional Redis client. A nil Store, or one without a client,
// behaves as an always-missing cache so callers never branch on availability.
type Store struct {
	client *redis.Client
}

// NewStore returns a Store backed by client, which may be nil.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying client or nil.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool {
	return s.Client() != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// and stores the result with ttl. Cache failures degrade to a direct fetch.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)

	found, err := s.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	}
	if s.Enabled() {
		observability.CacheLookups.WithLabelValues(family, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.LoggerFromContext(ctx).Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Version reads a counter written by Bump; missing, disabled or unreadable counters are 0.
func (s *Store) Version(ctx context.Context, key string) int64 {
	if !s.Enabled() {
		return 0
	}
	v, err := s.client.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.LoggerFromContext(ctx).Warn("cache version read failed", zap.String("key", key), zap.Error(err))
	}
	return v
}

// Bump increments a version counter so entries keyed on the old version are no
// longer read, including ones a concurrent reader writes after the bump.
func (s *Store) Bump(ctx context.Context, key string) {
	if !s.Enabled() {
		return
	}
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		middleware.LoggerFromContext(ctx).Warn("cache version bump failed", zap.String("key", key), zap.Error(err))
	}
}

// Revoke blacklists a token id until its natural expiry.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !s.Enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token id has been blacklisted.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() || jti == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks connectivity; a disabled store reports redis.ErrClosed.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return redis.ErrClosed
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
