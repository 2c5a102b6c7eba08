// Package seed creates demo users and short links for development databases.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"shortlink/internal/models"
	"shortlink/internal/repository"
	"shortlink/internal/shortener"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user gets.
const DemoPassword = "password123"

// Factory builds users and links and persists them.
type Factory struct {
	db       *gorm.DB
	links    repository.LinkRepository
	provider shortener.Provider
	hash     string
}

// NewFactory hashes DemoPassword once at cost and issues links through a local provider rooted at baseURL.
func NewFactory(db *gorm.DB, baseURL string, cost int) (*Factory, error) {
	provider, err := shortener.NewLocal(baseURL)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		db:       db,
		links:    repository.NewLinkRepository(db, nil),
		provider: provider,
		hash:     string(hash),
	}, nil
}

// CreateUser persists a user whose username is unique for distinct n below 10000.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:     Username(gofakeit.FirstName(), n),
		PasswordHash: f.hash,
		Name:         gofakeit.Name(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateLinks shortens count random URLs for user.
func (f *Factory) CreateLinks(ctx context.Context, user *models.User, count int) ([]*models.ShortURLPair, error) {
	pairs := make([]*models.ShortURLPair, 0, count)
	for i := 0; i < count; i++ {
		original := gofakeit.URL()
		short, err := f.provider.Shorten(ctx, original)
		if err != nil {
			return pairs, err
		}
		pair, err := f.links.SavePair(ctx, user.ID, original, short)
		if err != nil {
			return pairs, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// Username builds a 9 character login from the first five letters of base and n.
func Username(base string, n int) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(base) {
		if sb.Len() == 5 {
			break
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	for sb.Len() < 5 {
		sb.WriteByte('x')
	}
	return fmt.Sprintf("%s%04d", sb.String(), n%10000)
}
