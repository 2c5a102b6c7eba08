package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ShortenRequests counts shorten attempts by outcome (created, existing, rejected, upstream_error, store_error).
	ShortenRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_shorten_requests_total",
		Help: "Total number of shorten requests by outcome",
	}, []string{"outcome"})

	// ProviderLatency records shortening provider call latency.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shortlink_provider_latency_seconds",
		Help:    "Shortening provider call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "result"})

	// AuthEvents counts registrations, logins and logouts by result.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_auth_events_total",
		Help: "Total number of authentication events",
	}, []string{"event", "result"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})
)
