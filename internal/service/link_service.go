package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shortlink/internal/middleware"
	"shortlink/internal/models"
	"shortlink/internal/observability"
	"shortlink/internal/repository"
	"shortlink/internal/shortener"
	"shortlink/internal/validation"

	"go.uber.org/zap"
)

type LinkService struct {
	links    repository.LinkRepository
	provider shortener.Provider
	timeout  time.Duration
}

// ShortenResult is the pair shown to the user. Existing is set when the URL
// had already been shortened by the same user and the provider was not called.
type ShortenResult struct {
	Pair     *models.ShortURLPair
	Existing bool
}

// NewLinkService returns a LinkService. A zero timeout leaves provider calls
// bounded only by ctx.
func NewLinkService(links repository.LinkRepository, provider shortener.Provider, timeout time.Duration) *LinkService {
	return &LinkService{links: links, provider: provider, timeout: timeout}
}

// Shorten returns userID's short URL for longURL, calling the provider only
// for URLs the user has not shortened before.
func (s *LinkService) Shorten(ctx context.Context, userID uint, longURL string) (*ShortenResult, error) {
	longURL = strings.TrimSpace(longURL)
	if err := validation.ValidateLongURL(longURL); err != nil {
		observability.ShortenRequests.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.links.FindPair(ctx, userID, longURL)
	if err != nil {
		observability.ShortenRequests.WithLabelValues("store_error").Inc()
		return nil, err
	}
	if existing != nil {
		observability.ShortenRequests.WithLabelValues("existing").Inc()
		return &ShortenResult{Pair: existing, Existing: true}, nil
	}

	short, err := s.callProvider(ctx, longURL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			observability.ShortenRequests.WithLabelValues("rejected").Inc()
			return nil, models.NewValidationError("not a valid URL")
		}
		observability.ShortenRequests.WithLabelValues("upstream_error").Inc()
		return nil, models.NewUpstreamProviderError(s.provider.Name(), err)
	}

	pair, err := s.links.SavePair(ctx, userID, longURL, short)
	if err != nil {
		observability.ShortenRequests.WithLabelValues("store_error").Inc()
		return nil, err
	}

	observability.ShortenRequests.WithLabelValues("created").Inc()
	middleware.LoggerFromContext(ctx).Info("short url created",
		zap.Uint("pair_id", pair.ID),
		zap.String("provider", s.provider.Name()),
	)
	return &ShortenResult{Pair: pair}, nil
}

func (s *LinkService) callProvider(ctx context.Context, longURL string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.provider.Shorten(ctx, longURL)
}

// ListPairs returns userID's pairs in the order they were created.
func (s *LinkService) ListPairs(ctx context.Context, userID uint) ([]models.ShortURLPair, error) {
	return s.links.ListPairs(ctx, userID)
}

// Resolve looks up the original URL behind a short URL.
func (s *LinkService) Resolve(ctx context.Context, shortURL string) (*models.ShortURLPair, error) {
	return s.links.GetByShortURL(ctx, shortURL)
}
