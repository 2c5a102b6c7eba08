package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })
	return logs
}

func TestStructuredLogger_RequestFields(t *testing.T) {
	logs := observeLogs(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0]
	assert.Equal(t, "request processed", ok.Message)
	fields := ok.ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(fiber.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	failed := entries[1]
	assert.Equal(t, "request failed", failed.Message)
	assert.Equal(t, zapcore.ErrorLevel, failed.Level)
	assert.Equal(t, "boom", failed.ContextMap()["error"])
}

func TestInitLogger_RejectsUnknownLevel(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	assert.Error(t, InitLogger("development", "verbose"))
	assert.Same(t, prev, Logger)
	assert.NoError(t, InitLogger("production", "warn"))
}

func TestStructuredLogger_FieldsSurviveLaterRequests(t *testing.T) {
	logs := observeLogs(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.All("/*", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	first := httptest.NewRequest("GET", "/first/path", nil)
	first.Header.Set("User-Agent", "agent-one")
	first.Header.Set("X-Request-ID", "req-one")
	_, err := app.Test(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		later := httptest.NewRequest("DELETE", "/zzzzzzzzzzzzzzzzzzzz", nil)
		later.Header.Set("User-Agent", "yyyyyyyyyyyyyyyyyyyy")
		later.Header.Set("X-Request-ID", "xxxxxxxxxxxxxxxxxxxx")
		_, err = app.Test(later)
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, 6)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/first/path", fields["path"])
	assert.Equal(t, "agent-one", fields["user_agent"])
	assert.Equal(t, "req-one", fields["request_id"])
}
