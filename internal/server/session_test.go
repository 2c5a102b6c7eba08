package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"shortlink/internal/cache"
	"shortlink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, withRedis bool) *Server {
	t.Helper()
	s := &Server{config: testConfig(), store: cache.NewStore(nil)}
	if withRedis {
		mr := miniredis.RunT(t)
		client, err := cache.NewClient(mr.Addr())
		require.NoError(t, err)
		s.store = cache.NewStore(client)
	}
	return s
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/shorten", "/shorten"},
		{"/shortend_urls?page=2", "/shortend_urls?page=2"},
		{"", ""},
		{"shorten", ""},
		{"//evil.example.com", ""},
		{"/\\evil.example.com", ""},
		{"https://evil.example.com/", ""},
		{"/x\r\nSet-Cookie: session=attacker", ""},
		{"/\t/evil.example", ""},
		{"/ok\x00", ""},
		{"/ok\x7f", ""},
		{"/a b", "/a%20b"},
		{"/shorten#top", "/shorten"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.in))
		})
	}
}

func TestSafeNext_EncodedControlBytesStayEncoded(t *testing.T) {
	got := safeNext("/x%0d%0aSet-Cookie:%20session=attacker")
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, "\n")
	assert.True(t, strings.HasPrefix(got, "/x%"))
}

func TestIssueAndParseToken(t *testing.T) {
	s := newTokenServer(t, false)
	user := &models.User{ID: 42, Username: "alice01"}

	token, expires, err := s.issueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	id, err := s.parseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id.UserID)
	assert.Equal(t, "alice01", id.Username)
	assert.NotEmpty(t, id.TokenID)
	assert.WithinDuration(t, expires, id.ExpiresAt, time.Second)
}

func TestParseTokenRejects(t *testing.T) {
	s := newTokenServer(t, false)
	now := time.Now()

	sign := func(claims sessionClaims, secret string) string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}
	valid := func() sessionClaims {
		return sessionClaims{
			Username: "alice01",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    tokenIssuer,
				Audience:  jwt.ClaimStrings{tokenAudience},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				ID:        "jti",
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	wrongAudience := valid()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	badSubject := valid()
	badSubject.Subject = "abc"

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   sign(valid(), "another-secret"),
		"expired":        sign(expired, s.config.SessionSecret),
		"no expiry":      sign(noExpiry, s.config.SessionSecret),
		"wrong audience": sign(wrongAudience, s.config.SessionSecret),
		"wrong issuer":   sign(wrongIssuer, s.config.SessionSecret),
		"bad subject":    sign(badSubject, s.config.SessionSecret),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.parseToken(context.Background(), token)
			assert.Error(t, err)
		})
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	s := newTokenServer(t, true)
	ctx := context.Background()

	token, _, err := s.issueToken(&models.User{ID: 7, Username: "bobby01"})
	require.NoError(t, err)
	id, err := s.parseToken(ctx, token)
	require.NoError(t, err)

	s.revokeToken(ctx, id)

	_, err = s.parseToken(ctx, token)
	assert.ErrorIs(t, err, errRevoked)
}

func TestRevocationIsNoopWithoutRedis(t *testing.T) {
	s := newTokenServer(t, false)
	ctx := context.Background()

	token, _, err := s.issueToken(&models.User{ID: 7, Username: "bobby01"})
	require.NoError(t, err)
	id, err := s.parseToken(ctx, token)
	require.NoError(t, err)

	s.revokeToken(ctx, id)

	_, err = s.parseToken(ctx, token)
	assert.NoError(t, err)
}
