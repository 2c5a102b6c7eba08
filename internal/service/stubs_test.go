package service

import (
	"context"
	"errors"
	"testing"

	"shortlink/internal/models"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
	}
}

type linkRepoStub struct {
	findOrCreateGroupFn func(context.Context, uint) (*models.ShortURLGroup, error)
	addPairFn           func(context.Context, *models.ShortURLGroup, string, string) (*models.ShortURLPair, error)
	savePairFn          func(context.Context, uint, string, string) (*models.ShortURLPair, error)
	findPairFn          func(context.Context, uint, string) (*models.ShortURLPair, error)
	listPairsFn         func(context.Context, uint) ([]models.ShortURLPair, error)
	getByShortURLFn     func(context.Context, string) (*models.ShortURLPair, error)
}

func (s *linkRepoStub) FindOrCreateGroup(ctx context.Context, userID uint) (*models.ShortURLGroup, error) {
	return s.findOrCreateGroupFn(ctx, userID)
}
func (s *linkRepoStub) AddPair(ctx context.Context, g *models.ShortURLGroup, o, sh string) (*models.ShortURLPair, error) {
	return s.addPairFn(ctx, g, o, sh)
}
func (s *linkRepoStub) SavePair(ctx context.Context, userID uint, o, sh string) (*models.ShortURLPair, error) {
	return s.savePairFn(ctx, userID, o, sh)
}
func (s *linkRepoStub) FindPair(ctx context.Context, userID uint, o string) (*models.ShortURLPair, error) {
	return s.findPairFn(ctx, userID, o)
}
func (s *linkRepoStub) ListPairs(ctx context.Context, userID uint) ([]models.ShortURLPair, error) {
	return s.listPairsFn(ctx, userID)
}
func (s *linkRepoStub) GetByShortURL(ctx context.Context, sh string) (*models.ShortURLPair, error) {
	return s.getByShortURLFn(ctx, sh)
}

func noopLinkRepo() *linkRepoStub {
	return &linkRepoStub{
		findOrCreateGroupFn: func(context.Context, uint) (*models.ShortURLGroup, error) { return &models.ShortURLGroup{}, nil },
		addPairFn: func(_ context.Context, g *models.ShortURLGroup, o, sh string) (*models.ShortURLPair, error) {
			return &models.ShortURLPair{OriginalURL: o, ShortURL: sh, ShortURLID: g.ID}, nil
		},
		savePairFn: func(_ context.Context, _ uint, o, sh string) (*models.ShortURLPair, error) {
			return &models.ShortURLPair{ID: 1, OriginalURL: o, ShortURL: sh}, nil
		},
		findPairFn:      func(context.Context, uint, string) (*models.ShortURLPair, error) { return nil, nil },
		listPairsFn:     func(context.Context, uint) ([]models.ShortURLPair, error) { return []models.ShortURLPair{}, nil },
		getByShortURLFn: func(_ context.Context, sh string) (*models.ShortURLPair, error) { return nil, models.NewNotFoundError("Short URL", sh) },
	}
}

type providerStub struct {
	calls     int
	shortenFn func(context.Context, string) (string, error)
}

func (p *providerStub) Name() string { return "stub" }

func (p *providerStub) Shorten(ctx context.Context, longURL string) (string, error) {
	p.calls++
	return p.shortenFn(ctx, longURL)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
