// Package shortener contains the URL shortening providers.
package shortener

import (
	"context"
	"fmt"
	"strings"

	"shortlink/internal/config"
)

// Provider turns a long URL into a short one.
type Provider interface {
	Name() string
	Shorten(ctx context.Context, longURL string) (string, error)
}

// New builds the provider selected by SHORTENER_PROVIDER, wrapped with metrics and tracing.
func New(cfg *config.Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.ShortenerProvider {
	case "", "tinyurl":
		p = NewTinyURL(cfg.TinyURLEndpoint, cfg.ShortenerTimeout())
	case "local":
		p, err = NewLocal(cfg.BaseURL)
	default:
		err = fmt.Errorf("unknown shortener provider %q", cfg.ShortenerProvider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(p), nil
}

// LocalPath is the route prefix under which locally issued codes resolve.
const LocalPath = "/s/"

// LocalShortURL is the public URL for a locally issued code.
func LocalShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + LocalPath + code
}
