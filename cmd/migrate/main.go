package main

import (
	"context" // Context for seeding
	"errors"  // Error inspection

	"catalogue_app/internal/config" // Custom import path (Config)
	"catalogue_app/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	// Migrations do not need the Google client ID
	if err != nil && !errors.Is(err, config.ErrMissingClientID) {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	database, err := db.Open(cfg) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	// Categories have no create route, seed them here
	if len(cfg.SeedCategories) > 0 {
		if _, err := db.SeedCategories(context.Background(), database, cfg.SeedCategories); err != nil {
			logrus.Fatalf("seeding failed: %v", err)
		}
	}
}
