package seed

import (
	"context"
	"errors"
	"fmt"

	"shortlink/internal/middleware"
	"shortlink/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls a seeding run.
type Options struct {
	NumUsers     int
	LinksPerUser int
	ShouldClean  bool
	BaseURL      string
	BcryptCost   int
}

// Summary reports what a run created.
type Summary struct {
	Users []*models.User
	Links int
}

// Seed populates db with demo users and links.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < 0 || opts.NumUsers > 9999 {
		return nil, errors.New("number of users must be between 0 and 9999")
	}
	log := middleware.LoggerFromContext(ctx)
	log.Info("seeding database", zap.Int("users", opts.NumUsers), zap.Int("links_per_user", opts.LinksPerUser))

	if opts.ShouldClean {
		if err := ClearData(db.WithContext(ctx)); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f, err := NewFactory(db.WithContext(ctx), opts.BaseURL, opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(i)
		if err != nil {
			log.Warn("failed to create demo user", zap.Int("n", i), zap.Error(err))
			continue
		}
		summary.Users = append(summary.Users, user)

		pairs, err := f.CreateLinks(ctx, user, opts.LinksPerUser)
		summary.Links += len(pairs)
		if err != nil {
			return summary, fmt.Errorf("create links for %s: %w", user.Username, err)
		}
	}

	log.Info("seeding completed", zap.Int("users", len(summary.Users)), zap.Int("links", summary.Links))
	return summary, nil
}

// ClearData deletes every row, children first, on any supported dialect.
func ClearData(db *gorm.DB) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.ShortURLPair{}, &models.ShortURLGroup{}, &models.User{}} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
