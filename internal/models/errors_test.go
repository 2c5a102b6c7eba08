package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusUnprocessableEntity},
		{"mismatch", NewPasswordMismatchError(), fiber.StatusUnprocessableEntity},
		{"duplicate", NewDuplicateUsernameError("alice01"), fiber.StatusConflict},
		{"authentication", NewAuthenticationError(), fiber.StatusUnauthorized},
		{"unauthorized", NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"not found", NewNotFoundError("User", 7), fiber.StatusNotFound},
		{"upstream", NewUpstreamProviderError("tinyurl", errors.New("boom")), fiber.StatusBadGateway},
		{"internal", NewInternalError(errors.New("db")), fiber.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("outer: %w", NewNotFoundError("Link", "x")), fiber.StatusNotFound},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed},
		{"plain error", errors.New("plain"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("register: %w", NewDuplicateUsernameError("alice01"))
	assert.True(t, HasCode(err, CodeDuplicateUser))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeDuplicateUser))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamProviderError("tinyurl", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "tinyurl")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("secret dsn")))
	})
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadGateway, NewUpstreamProviderError("tinyurl", errors.New("timeout")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), CodeInternal)
	assert.NotContains(t, string(body), "secret dsn")

	resp, err = app.Test(httptest.NewRequest("GET", "/upstream", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "timeout")
}
