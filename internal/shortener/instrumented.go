package shortener

import (
	"context"
	"time"

	"shortlink/internal/middleware"
	"shortlink/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type instrumented struct {
	next Provider
}

// Instrument records latency, a client span and a log line around every call.
func Instrument(p Provider) Provider {
	if _, ok := p.(*instrumented); ok {
		return p
	}
	return &instrumented{next: p}
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Shorten(ctx context.Context, longURL string) (string, error) {
	ctx, span := observability.StartClientSpan(ctx, "shortener."+i.next.Name(),
		attribute.String("shortener.provider", i.next.Name()),
	)
	start := time.Now()

	short, err := i.next.Shorten(ctx, longURL)

	result := "ok"
	if err != nil {
		result = "error"
		middleware.LoggerFromContext(ctx).Warn("shortening provider failed",
			zap.String("provider", i.next.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
	observability.ProviderLatency.WithLabelValues(i.next.Name(), result).Observe(time.Since(start).Seconds())
	observability.EndSpan(span, err)
	return short, err
}
