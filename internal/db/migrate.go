package db

import (
	"context" // Context for queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"catalogue_app/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Category{}, &domain.CategoryItem{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// SeedCategories creates every named category that does not exist yet
func SeedCategories(ctx context.Context, db *gorm.DB, names []string) (int, error) {
	created := 0 // Number of new rows
	for _, name := range names {
		var existing domain.Category
		err := db.WithContext(ctx).Where("name = ?", name).Take(&existing).Error
		switch {
		case err == nil:
			continue // Already present
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.WithContext(ctx).Create(&domain.Category{Name: name}).Error; err != nil {
				return created, fmt.Errorf("create category %q: %w", name, err)
			}
			created++
		default:
			return created, fmt.Errorf("find category %q: %w", name, err)
		}
	}
	// Log how many categories were added
	logrus.WithFields(logrus.Fields{
		"requested": len(names), // Names passed in
		"created":   created,    // New rows
	}).Info("Categories seeded")
	return created, nil
}
