package server

import (
	"shortlink/internal/models"
	"shortlink/internal/observability"
	"shortlink/internal/service"

	"github.com/gofiber/fiber/v2"
)

func recordLogout() {
	observability.AuthEvents.WithLabelValues("logout", "success").Inc()
}

// APIRegister handles POST /api/auth/register
func (s *Server) APIRegister(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		Name            string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

// APILogin handles POST /api/auth/login
func (s *Server) APILogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, _, err := s.issueToken(user)
	if err != nil {
		return models.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// APILogout handles POST /api/auth/logout
func (s *Server) APILogout(c *fiber.Ctx) error {
	s.revokeToken(c.UserContext(), identity(c))
	recordLogout()
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// APIShorten handles POST /api/shorten
func (s *Server) APIShorten(c *fiber.Ctx) error {
	var req struct {
		LongURL string `json:"long_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	res, err := s.linkService.Shorten(c.UserContext(), identity(c).UserID, req.LongURL)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if res.Existing {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"original_url": res.Pair.OriginalURL,
		"short_url":    res.Pair.ShortURL,
		"existing":     res.Existing,
	})
}

// APIListURLs handles GET /api/urls
func (s *Server) APIListURLs(c *fiber.Ctx) error {
	pairs, err := s.linkService.ListPairs(c.UserContext(), identity(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"urls": pairs,
	})
}
