package server

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shortlink/internal/middleware"
	"shortlink/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionCookie = "session"
	tokenIssuer   = "shortlink"
	tokenAudience = "shortlink-client"
	identityKey   = "identity"
)

var errRevoked = errors.New("token has been revoked")

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// issueToken signs a session token for user.
func (s *Server) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.config.SessionTTL())
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// parseToken validates a session token and checks the revocation list.
func (s *Server) parseToken(ctx context.Context, tokenString string) (models.Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.SessionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Identity{}, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return models.Identity{}, errors.New("invalid subject claim")
	}

	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("revocation check failed", zap.Error(err))
	} else if revoked {
		return models.Identity{}, errRevoked
	}

	return models.Identity{
		UserID:    uint(userID),
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// revokeToken blacklists the caller's token for the rest of its lifetime.
func (s *Server) revokeToken(ctx context.Context, id models.Identity) {
	err := s.store.Revoke(ctx, id.TokenID, time.Until(id.ExpiresAt))
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to revoke session token", zap.Error(err))
	}
}

// tokenFromRequest prefers a bearer token and falls back to the session cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(sessionCookie)
}

// resolveIdentity returns the caller's identity when the request carries a valid token.
func (s *Server) resolveIdentity(c *fiber.Ctx) (models.Identity, bool) {
	if id, ok := c.Locals(identityKey).(models.Identity); ok {
		return id, true
	}
	token := tokenFromRequest(c)
	if token == "" {
		return models.Identity{}, false
	}
	id, err := s.parseToken(c.UserContext(), token)
	if err != nil {
		middleware.LoggerFromContext(c.UserContext()).Debug("rejected session token", zap.Error(err))
		return models.Identity{}, false
	}
	attachIdentity(c, id)
	return id, true
}

func attachIdentity(c *fiber.Ctx, id models.Identity) {
	c.Locals(identityKey, id)
	c.Locals("userID", id.UserID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, id.UserID)
	c.SetUserContext(ctx)
}

// identity returns the identity set by SessionRequired or AuthRequired.
func identity(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals(identityKey).(models.Identity)
	return id
}

// SessionRequired guards HTML pages. Anonymous callers are sent to the login
// page with the requested path in next.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := s.resolveIdentity(c); ok {
			return c.Next()
		}
		if c.Cookies(sessionCookie) != "" {
			s.clearSessionCookie(c)
		}
		return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	}
}

// AuthRequired guards the JSON API.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenFromRequest(c) == "" {
			return models.NewUnauthorizedError("Authorization required")
		}
		if _, ok := s.resolveIdentity(c); !ok {
			return models.NewUnauthorizedError("Invalid or expired token")
		}
		return c.Next()
	}
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeNext returns next re-serialised as a local path and query, or "" when
// it could leave the site or carries control bytes into the Location header.
func safeNext(next string) string {
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return ""
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return ""
	}
	return u.RequestURI()
}
