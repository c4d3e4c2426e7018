package domain

// CategoryItem Model
type CategoryItem struct {
	ID          uint   `gorm:"primaryKey"`        // Primary key
	Name        string `gorm:"size:250;not null"` // Item name
	Description string `gorm:"size:1000"`         // Item description
	CategoryID  uint   `gorm:"index;not null"`    // Foreign key to the owning Category
	UserID      uint   `gorm:"index;not null"`    // Foreign key to the creating User
}

// CategoryItemJSON is the public serial form of an item
type CategoryItemJSON struct {
	ID          uint   `json:"id"`          // Item ID
	Name        string `json:"name"`        // Item name
	Description string `json:"description"` // Item description
	CategoryID  uint   `json:"category_id"` // Owning category
	UserID      uint   `json:"user_id"`     // Creator
}

// Serialize returns the public form of the item
func (i CategoryItem) Serialize() CategoryItemJSON {
	return CategoryItemJSON{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		CategoryID:  i.CategoryID,
		UserID:      i.UserID,
	}
}

// OwnedBy reports whether the user created the item
func (i CategoryItem) OwnedBy(userID uint) bool {
	return userID != 0 && i.UserID == userID
}

// SerializeItems converts items to their public form; the result is never nil
func SerializeItems(items []CategoryItem) []CategoryItemJSON {
	out := make([]CategoryItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, item.Serialize())
	}
	return out
}
