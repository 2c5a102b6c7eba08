package shortener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// TinyURL calls the public api-create endpoint, which answers with the short URL as plain text.
type TinyURL struct {
	endpoint string
	client   *resty.Client
}

// NewTinyURL returns a client for endpoint. Calls are not retried.
func NewTinyURL(endpoint string, timeout time.Duration) *TinyURL {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/plain")
	return &TinyURL{endpoint: endpoint, client: client}
}

func (t *TinyURL) Name() string {
	return "tinyurl"
}

func (t *TinyURL) Shorten(ctx context.Context, longURL string) (string, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("url", longURL).
		Get(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("tinyurl request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("tinyurl returned status %d", resp.StatusCode())
	}

	short := strings.TrimSpace(resp.String())
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return "", fmt.Errorf("tinyurl returned unexpected body %q", truncate(short, 64))
	}
	return short, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
