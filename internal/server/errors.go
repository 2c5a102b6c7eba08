package server

import (
	"errors"
	"strings"

	"shortlink/internal/middleware"
	"shortlink/internal/models"
	"shortlink/internal/views"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func isAPIRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api"
}

// apiStatus is HTTPStatus with input errors reported as 400.
func apiStatus(err error) int {
	status := models.HTTPStatus(err)
	if status == fiber.StatusUnprocessableEntity {
		return fiber.StatusBadRequest
	}
	return status
}

// ErrorHandler renders errors returned by handlers: JSON under /api, the error page elsewhere.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	log := middleware.LoggerFromContext(c.UserContext())

	status := models.HTTPStatus(err)
	if isAPIRequest(c) {
		status = apiStatus(err)
	}
	if status >= fiber.StatusInternalServerError {
		log.Error("request error", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	var appErr *models.AppError
	var fe *fiber.Error
	if isAPIRequest(c) {
		if !errors.As(err, &appErr) && !errors.As(err, &fe) {
			err = models.NewInternalError(err)
		}
		return models.RespondWithError(c, status, err)
	}

	message := "Something went wrong."
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case errors.As(err, &fe):
		message = fe.Message
	}

	_, loggedIn := c.Locals(identityKey).(models.Identity)
	renderErr := c.Status(status).Render(views.Error, views.Page{
		LoggedIn: loggedIn,
		Status:   status,
		Message:  message,
	})
	if renderErr != nil {
		log.Error("failed to render error page", zap.Error(renderErr))
		return c.Status(status).SendString(message)
	}
	return nil
}
