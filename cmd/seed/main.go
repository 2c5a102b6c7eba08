// Command seed populates the database with demo users and short URLs.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"shortlink/internal/config"
	"shortlink/internal/database"
	"shortlink/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numLinks := flag.Int("links", 5, "Short URLs to create per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d links each, clean=%v\n", *numUsers, *numLinks, *shouldClean)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	summary, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:     *numUsers,
		LinksPerUser: *numLinks,
		ShouldClean:  *shouldClean,
		BaseURL:      cfg.BaseURL,
		BcryptCost:   cfg.BcryptCost,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users and %d short URLs.", len(summary.Users), summary.Links)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
