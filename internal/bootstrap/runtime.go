// Package bootstrap wires the database and Redis for the commands.
package bootstrap

import (
	"context"
	"fmt"

	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/database"
	"shortlink/internal/middleware"
	"shortlink/internal/seed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoUsers creates that many demo users, each with DemoLinks links, when the users table is empty.
	SeedDemoUsers int
	DemoLinks     int
}

// InitRuntime connects to the database and Redis. The Redis client is nil when
// Redis is not configured or unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.InitRedis(cfg.RedisURL)

	if err := seedDemoData(cfg, db, opts); err != nil {
		return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	return db, r, nil
}

func seedDemoData(cfg *config.Config, db *gorm.DB, opts Options) error {
	if opts.SeedDemoUsers <= 0 || cfg.IsProduction() {
		return nil
	}

	var count int64
	if err := db.Table("users").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		middleware.Logger.Info("skipping demo seed, users already exist", zap.Int64("users", count))
		return nil
	}

	_, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:     opts.SeedDemoUsers,
		LinksPerUser: opts.DemoLinks,
		BaseURL:      cfg.BaseURL,
		BcryptCost:   cfg.BcryptCost,
	})
	return err
}
