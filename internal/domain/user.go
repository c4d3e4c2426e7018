package domain

// User Model
type User struct {
	ID       uint           `gorm:"primaryKey"`                   // Primary key
	Username string         `gorm:"not null"`                     // Display name from the identity provider
	Email    string         `gorm:"uniqueIndex;size:255;not null"` // External identity key
	Picture  string         // Profile picture URL
	Items    []CategoryItem `gorm:"constraint:OnUpdate:CASCADE;"` // Items created by this user
}
