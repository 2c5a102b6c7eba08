package server

import (
	"errors"

	"shortlink/internal/middleware"
	"shortlink/internal/models"
	"shortlink/internal/service"
	"shortlink/internal/shortener"
	"shortlink/internal/validation"
	"shortlink/internal/views"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func render(c *fiber.Ctx, status int, name string, page views.Page) error {
	return c.Status(status).Render(name, page)
}

// displayName looks up the caller's name for page greetings, falling back to the username.
func (s *Server) displayName(c *fiber.Ctx, id models.Identity) string {
	user, err := s.userService.GetUserByID(c.UserContext(), id.UserID)
	if err != nil {
		middleware.LoggerFromContext(c.UserContext()).Warn("failed to load user for greeting", zap.Error(err))
		return id.Username
	}
	return user.DisplayName()
}

// HomePage handles GET /
func (s *Server) HomePage(c *fiber.Ctx) error {
	page := views.Page{}
	if id, ok := s.resolveIdentity(c); ok {
		page.LoggedIn = true
		page.Name = s.displayName(c, id)
	}
	return render(c, fiber.StatusOK, views.Home, page)
}

// RegisterPage handles GET /register
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, views.Register, views.Page{})
}

// Register handles POST /register
func (s *Server) Register(c *fiber.Ctx) error {
	in := service.RegisterInput{
		Username:        c.FormValue("username"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
		Name:            c.FormValue("name"),
	}

	_, err := s.userService.Register(c.UserContext(), in)
	if err == nil {
		return c.Redirect("/login", fiber.StatusFound)
	}

	page := views.Page{Username: in.Username, FormName: in.Name}
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Code {
	case models.CodeDuplicateUser:
		page.UsernameExists = in.Username
	case models.CodePasswordMismatch:
		page.PasswordMismatch = true
	case models.CodeValidation:
		if verr := validation.ValidateUsername(in.Username); verr != nil {
			page.UsernameInvalid = verr.Error()
		} else {
			page.Error = appErr.Message
		}
	default:
		return err
	}
	return render(c, models.HTTPStatus(err), views.Register, page)
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, views.Login, views.Page{Next: safeNext(c.Query("next"))})
}

// Login handles POST /login. On success the caller is sent to a local next
// path when one was given, otherwise the home page greets them.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	next = safeNext(next)

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if models.HasCode(err, models.CodeAuthentication) {
			return render(c, fiber.StatusUnauthorized, views.Login, views.Page{
				Error:    err.Error(),
				Username: username,
				Next:     next,
			})
		}
		return err
	}

	token, expires, err := s.issueToken(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.setSessionCookie(c, token, expires)

	if next != "" {
		return c.Redirect(next, fiber.StatusFound)
	}
	return render(c, fiber.StatusOK, views.Home, views.Page{LoggedIn: true, Name: user.DisplayName()})
}

// ShortenPage handles GET /shorten
func (s *Server) ShortenPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, views.Shorten, views.Page{
		LoggedIn: true,
		Name:     s.displayName(c, identity(c)),
	})
}

// Shorten handles POST /shorten
func (s *Server) Shorten(c *fiber.Ctx) error {
	id := identity(c)
	longURL := c.FormValue("long_url")
	page := views.Page{LoggedIn: true, Name: s.displayName(c, id), OriginalURL: longURL}

	res, err := s.linkService.Shorten(c.UserContext(), id.UserID, longURL)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) || models.HasCode(err, models.CodeUpstream) {
			var appErr *models.AppError
			errors.As(err, &appErr)
			page.Error = appErr.Message
			return render(c, models.HTTPStatus(err), views.Shorten, page)
		}
		return err
	}

	page.OriginalURL = res.Pair.OriginalURL
	page.ShortURL = res.Pair.ShortURL
	page.Existing = res.Existing
	return render(c, fiber.StatusOK, views.Shorten, page)
}

// ShortURLsPage handles GET /shortend_urls
func (s *Server) ShortURLsPage(c *fiber.Ctx) error {
	id := identity(c)
	pairs, err := s.linkService.ListPairs(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return render(c, fiber.StatusOK, views.ShortURLs, views.Page{
		LoggedIn: true,
		Name:     s.displayName(c, id),
		URLs:     pairs,
	})
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.revokeToken(c.UserContext(), identity(c))
	s.clearSessionCookie(c)
	recordLogout()
	return c.Redirect("/", fiber.StatusFound)
}

// Redirect handles GET /s/:code for links issued by the local provider.
func (s *Server) Redirect(c *fiber.Ctx) error {
	short := shortener.LocalShortURL(s.config.BaseURL, c.Params("code"))
	pair, err := s.linkService.Resolve(c.UserContext(), short)
	if err != nil {
		return err
	}
	return c.Redirect(pair.OriginalURL, fiber.StatusTemporaryRedirect)
}
