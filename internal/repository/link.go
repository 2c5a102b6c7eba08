package repository

import (
	"context"
	"errors"

	"shortlink/internal/cache"
	"shortlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepository persists short-link groups and their pairs.
type LinkRepository interface {
	// FindOrCreateGroup returns the user's group, creating it atomically on first use.
	FindOrCreateGroup(ctx context.Context, userID uint) (*models.ShortURLGroup, error)
	// AddPair appends a pair to group without de-duplication.
	AddPair(ctx context.Context, group *models.ShortURLGroup, originalURL, shortURL string) (*models.ShortURLPair, error)
	// SavePair runs FindOrCreateGroup and AddPair in one transaction.
	SavePair(ctx context.Context, userID uint, originalURL, shortURL string) (*models.ShortURLPair, error)
	// FindPair returns the user's pair for an exact original URL, or nil, nil.
	FindPair(ctx context.Context, userID uint, originalURL string) (*models.ShortURLPair, error)
	// ListPairs returns the user's pairs in insertion order.
	ListPairs(ctx context.Context, userID uint) ([]models.ShortURLPair, error)
	// GetByShortURL returns the first pair issued with shortURL.
	GetByShortURL(ctx context.Context, shortURL string) (*models.ShortURLPair, error)
}

type linkRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewLinkRepository returns a new LinkRepository implementation. store may be nil.
func NewLinkRepository(db *gorm.DB, store *cache.Store) LinkRepository {
	return &linkRepository{db: db, cache: store}
}

func (r *linkRepository) FindOrCreateGroup(ctx context.Context, userID uint) (*models.ShortURLGroup, error) {
	group, err := findOrCreateGroup(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return group, nil
}

func findOrCreateGroup(tx *gorm.DB, userID uint) (*models.ShortURLGroup, error) {
	uid := userID
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.ShortURLGroup{UserID: &uid}).Error
	if err != nil {
		return nil, err
	}

	var group models.ShortURLGroup
	if err := tx.Where("user_id = ?", userID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *linkRepository) AddPair(ctx context.Context, group *models.ShortURLGroup, originalURL, shortURL string) (*models.ShortURLPair, error) {
	pair, err := addPair(r.db.WithContext(ctx), group, originalURL, shortURL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if group.UserID != nil {
		r.cache.Bump(ctx, cache.LinksVersionKey(*group.UserID))
	}
	return pair, nil
}

func addPair(tx *gorm.DB, group *models.ShortURLGroup, originalURL, shortURL string) (*models.ShortURLPair, error) {
	pair := &models.ShortURLPair{
		OriginalURL: originalURL,
		ShortURL:    shortURL,
		ShortURLID:  group.ID,
	}
	if err := tx.Create(pair).Error; err != nil {
		return nil, err
	}
	return pair, nil
}

func (r *linkRepository) SavePair(ctx context.Context, userID uint, originalURL, shortURL string) (*models.ShortURLPair, error) {
	var pair *models.ShortURLPair
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := findOrCreateGroup(tx, userID)
		if err != nil {
			return err
		}
		pair, err = addPair(tx, group, originalURL, shortURL)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	r.cache.Bump(ctx, cache.LinksVersionKey(userID))
	return pair, nil
}

func (r *linkRepository) FindPair(ctx context.Context, userID uint, originalURL string) (*models.ShortURLPair, error) {
	var pair models.ShortURLPair
	err := r.db.WithContext(ctx).
		Joins("JOIN short_urls ON short_urls.id = short_url_pairs.short_url_id").
		Where("short_urls.user_id = ? AND short_url_pairs.original_url = ?", userID, originalURL).
		Order("short_url_pairs.id").
		First(&pair).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &pair, nil
}

func (r *linkRepository) ListPairs(ctx context.Context, userID uint) ([]models.ShortURLPair, error) {
	pairs := []models.ShortURLPair{}

	// Read the version before the query: a list fetched before a concurrent
	// save is cached under the old version, which the save has moved past.
	version := r.cache.Version(ctx, cache.LinksVersionKey(userID))
	err := r.cache.Aside(ctx, cache.LinksKey(userID, version), &pairs, cache.LinksTTL, func() error {
		if err := r.db.WithContext(ctx).
			Joins("JOIN short_urls ON short_urls.id = short_url_pairs.short_url_id").
			Where("short_urls.user_id = ?", userID).
			Order("short_url_pairs.id ASC").
			Find(&pairs).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *linkRepository) GetByShortURL(ctx context.Context, shortURL string) (*models.ShortURLPair, error) {
	var pair models.ShortURLPair
	if err := r.db.WithContext(ctx).Where("short_url = ?", shortURL).First(&pair).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Short URL", shortURL)
		}
		return nil, models.NewInternalError(err)
	}
	return &pair, nil
}
