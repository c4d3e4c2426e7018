package api

import (
	"context" // Context for queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"catalogue_app/internal/domain"   // Importing domain models
	"catalogue_app/internal/identity" // Verified claims

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// FindOrCreateUser returns the user for the claims' email, creating it on first login.
// The second return value reports whether a row was inserted.
func FindOrCreateUser(ctx context.Context, db *gorm.DB, claims *identity.Claims) (*domain.User, bool, error) {
	var user domain.User
	tx := db.WithContext(ctx) // Request-scoped session
	err := tx.Where("email = ?", claims.Email).Take(&user).Error
	switch {
	case err == nil:
		return &user, false, nil // Existing user
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = domain.User{
			Username: claims.Name,    // Display name from the token
			Email:    claims.Email,   // Identity key
			Picture:  claims.Picture, // Profile picture
		}
		if err := tx.Create(&user).Error; err != nil {
			// A concurrent first login may have inserted the same email
			var existing domain.User
			if findErr := tx.Where("email = ?", claims.Email).Take(&existing).Error; findErr == nil {
				return &existing, false, nil
			}
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		// Log the new user
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // Generated ID
			"username": user.Username, // Display name
		}).Info("User added")
		return &user, true, nil
	default:
		return nil, false, fmt.Errorf("find user: %w", err)
	}
}
