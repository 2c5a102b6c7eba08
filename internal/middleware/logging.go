// Package middleware provides the cross-cutting Fiber middleware: logging, metrics, tracing and rate limiting.
package middleware

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *zap.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

func init() {
	l, err := buildLogger(os.Getenv("APP_ENV"), "info")
	if err != nil {
		l = zap.NewNop()
	}
	Logger = l
}

// InitLogger rebuilds the global logger once configuration is known.
func InitLogger(env, level string) error {
	l, err := buildLogger(env, level)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func buildLogger(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if env == "production" || env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// SyncLogger flushes buffered entries, called on shutdown.
func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerFromContext returns the global logger decorated with the request-scoped fields found in ctx.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Logger
	}
	l := Logger
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With(zap.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(uint); ok {
		l = l.With(zap.Uint("user_id", uid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok {
		l = l.With(zap.String("trace_id", tid))
	}
	return l
}

// ContextMiddleware injects request ID and trace ID from Fiber locals into the request context
// so that LoggerFromContext picks them up in service and repository layers.
// The session gate adds the user ID once it has resolved the caller.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, RequestIDKey, utils.CopyString(rid))
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			ctx = context.WithValue(ctx, UserIDKey, uid)
		}
		if tid, ok := c.Locals("traceID").(string); ok {
			ctx = context.WithValue(ctx, TraceIDKey, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware that logs one line per request.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Fiber strings alias the request buffer, which is reused once the handler returns.
		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
		}

		log := LoggerFromContext(c.UserContext())
		if err != nil {
			log.Error("request failed", append(fields, zap.Error(err))...)
		} else {
			log.Info("request processed", fields...)
		}

		return err
	}
}
