package domain

// Category Model
type Category struct {
	ID    uint           `gorm:"primaryKey"`                   // Primary key
	Name  string         `gorm:"size:250;not null"`            // Category name
	Items []CategoryItem `gorm:"constraint:OnUpdate:CASCADE;"` // Items in this category
}

// CategoryJSON is the public serial form of a category
type CategoryJSON struct {
	ID   uint   `json:"id"`   // Category ID
	Name string `json:"name"` // Category name
}

// CategoryWithItemsJSON is a category carrying its nested items
type CategoryWithItemsJSON struct {
	ID    uint               `json:"id"`    // Category ID
	Name  string             `json:"name"`  // Category name
	Items []CategoryItemJSON `json:"items"` // Nested items, never null
}

// Serialize returns the public form of the category
func (c Category) Serialize() CategoryJSON {
	return CategoryJSON{ID: c.ID, Name: c.Name}
}

// SerializeWithItems returns the category with its loaded items nested
func (c Category) SerializeWithItems() CategoryWithItemsJSON {
	return CategoryWithItemsJSON{ID: c.ID, Name: c.Name, Items: SerializeItems(c.Items)}
}
