package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Building redirect paths
	"strings"  // Form value trimming

	"catalogue_app/internal/domain"     // Importing domain models
	"catalogue_app/internal/middleware" // Identity accessors

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// NewItemForm is the body of the create item form
type NewItemForm struct {
	Name        string `form:"name" binding:"required"`        // Item name
	Description string `form:"description" binding:"required"` // Item description
}

// EditItemForm is the body of the edit item form; empty fields are left unchanged
type EditItemForm struct {
	UpdatedName        string `form:"updatedName"`        // New item name
	UpdatedDescription string `form:"updatedDescription"` // New item description
}

func categoryPath(id uint) string { return "/category/" + strconv.FormatUint(uint64(id), 10) + "/" }
func itemPath(id uint) string     { return "/category/item/" + strconv.FormatUint(uint64(id), 10) + "/" }

// listCategories returns every category ordered by ID
func listCategories(db *gorm.DB) ([]domain.Category, error) {
	var categories []domain.Category
	err := db.Order("id").Find(&categories).Error
	return categories, err
}

// findCategory loads exactly one category
func findCategory(db *gorm.DB, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := db.Take(&category, id).Error; err != nil {
		return nil, lookupErr(err, "category", id)
	}
	return &category, nil
}

// findItem loads exactly one item
func findItem(db *gorm.DB, id uint) (*domain.CategoryItem, error) {
	var item domain.CategoryItem
	if err := db.Take(&item, id).Error; err != nil {
		return nil, lookupErr(err, "item", id)
	}
	return &item, nil
}

// CatalogueHandler lists all categories and items
func CatalogueHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx := db.WithContext(c.Request.Context()) // Request-scoped session
		categories, err := listCategories(tx)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		var items []domain.CategoryItem // All items
		if err := tx.Order("id").Find(&items).Error; err != nil {
			respondHTMLError(c, err)
			return
		}
		render(c, http.StatusOK, "catalogue.html", gin.H{
			"title":      "Catalogue", // Page title
			"categories": categories,  // All categories
			"items":      items,       // All items
		})
	}
}

// CategoryRoute serves /category/<id>/ as HTML and /category/<id>.json/ as JSON
func CategoryRoute(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, asJSON, err := parseRef(c)
		if asJSON {
			categoryJSON(c, db, id, err)
			return
		}
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		tx := db.WithContext(c.Request.Context())
		category, err := findCategory(tx, id)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		categories, err := listCategories(tx) // Sidebar
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		var items []domain.CategoryItem // Items in this category
		if err := tx.Where("category_id = ?", id).Order("id").Find(&items).Error; err != nil {
			respondHTMLError(c, err)
			return
		}
		render(c, http.StatusOK, "category.html", gin.H{
			"title":       category.Name, // Page title
			"categories":  categories,    // All categories
			"category":    category,      // Current category
			"items":       items,         // Items in the category
			"count_items": len(items),    // Item count
		})
	}
}

// ItemRoute serves /category/item/<id>/ to signed-in users and
// /category/item/<id>.json/ to everyone
func ItemRoute(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, asJSON, err := parseRef(c)
		if asJSON {
			itemJSON(c, db, id, err)
			return
		}
		// The HTML view requires a signed-in user
		if !middleware.Authenticate(c, secret) {
			return
		}
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		item, err := findItem(db.WithContext(c.Request.Context()), id)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		user, _ := middleware.CurrentIdentity(c) // Signed-in user
		// Owners get the editable view
		if item.OwnedBy(user.UserID) {
			render(c, http.StatusOK, "item.html", gin.H{"title": item.Name, "item": item})
			return
		}
		render(c, http.StatusOK, "item_restricted.html", gin.H{"title": item.Name, "item": item})
	}
}

// NewItemPageHandler renders the create item form
func NewItemPageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		category, err := findCategory(db.WithContext(c.Request.Context()), id)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		render(c, http.StatusOK, "new_item.html", gin.H{"title": "New item", "category": category})
	}
}

// CreateItemHandler inserts an item owned by the signed-in user
func CreateItemHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentIdentity(c) // Signed-in user
		id, err := parseID(c)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		tx := db.WithContext(c.Request.Context())
		category, err := findCategory(tx, id)
		if err != nil {
			respondHTMLError(c, err)
			return
		}
		var form NewItemForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Description) == "" {
			respondHTMLError(c, ErrValidation)
			return
		}
		item := domain.CategoryItem{
			Name:        strings.TrimSpace(form.Name),        // Item name
			Description: strings.TrimSpace(form.Description), // Item description
			CategoryID:  category.ID,                         // Owning category
			UserID:      user.UserID,                         // Creator
		}
		if err := tx.Create(&item).Error; err != nil {
			respondHTMLError(c, err)
			return
		}
		// Log the new item
		logrus.WithFields(logrus.Fields{
			"item_id":     item.ID,     // Item ID
			"category_id": category.ID, // Category ID
			"user_id":     user.UserID, // Creator
		}).Info("Category item created")
		invalidateCatalogue(c, rdb) // Cached catalogue is stale
		middleware.CurrentSession(c).AddFlash("New Category item created!", "")
		seeOther(c, categoryPath(category.ID))
	}
}

// ownedItem loads the item at :id and checks the signed-in user created it.
// Non-owners are sent to the restricted view on GET and refused on POST.
func ownedItem(c *gin.Context, db *gorm.DB, action string) (*domain.CategoryItem, bool) {
	user, _ := middleware.CurrentIdentity(c) // Signed-in user
	id, err := parseID(c)
	if err != nil {
		respondHTMLError(c, err)
		return nil, false
	}
	item, err := findItem(db.WithContext(c.Request.Context()), id)
	if err != nil {
		respondHTMLError(c, err)
		return nil, false
	}
	if item.OwnedBy(user.UserID) {
		return item, true
	}
	// Log the denied attempt
	logrus.WithFields(logrus.Fields{
		"item_id": item.ID,          // Item ID
		"user_id": user.UserID,      // Caller
		"owner":   item.UserID,      // Creator
		"action":  action,           // edit or delete
		"method":  c.Request.Method, // HTTP method
	}).Warn("Item not created by user")
	if c.Request.Method == http.MethodGet {
		redirect(c, http.StatusSeeOther, itemPath(item.ID))
		return nil, false
	}
	respondHTMLError(c, ErrForbidden)
	return nil, false
}

// EditItemPageHandler renders the edit form for the item's creator
func EditItemPageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := ownedItem(c, db, "edit")
		if !ok {
			return
		}
		render(c, http.StatusOK, "edit_item.html", gin.H{"title": "Edit " + item.Name, "item": item})
	}
}

// UpdateItemHandler applies the non-empty submitted fields to the item
func UpdateItemHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := ownedItem(c, db, "edit")
		if !ok {
			return
		}
		var form EditItemForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil {
			respondHTMLError(c, ErrValidation)
			return
		}
		updates := map[string]interface{}{} // Only changed columns
		if v := strings.TrimSpace(form.UpdatedName); v != "" {
			updates["name"] = v
			item.Name = v
		}
		if v := strings.TrimSpace(form.UpdatedDescription); v != "" {
			updates["description"] = v
			item.Description = v
		}
		if len(updates) > 0 {
			if err := db.WithContext(c.Request.Context()).Model(&domain.CategoryItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
				respondHTMLError(c, err)
				return
			}
		}
		// Log the update
		logrus.WithFields(logrus.Fields{
			"item_id": item.ID,      // Item ID
			"fields":  len(updates), // Number of changed fields
		}).Info("Category item updated")
		invalidateCatalogue(c, rdb) // Cached catalogue is stale
		middleware.CurrentSession(c).AddFlash(item.Name+" updated!", "success")
		seeOther(c, categoryPath(item.CategoryID))
	}
}

// DeleteItemPageHandler asks the item's creator to confirm deletion
func DeleteItemPageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := ownedItem(c, db, "delete")
		if !ok {
			return
		}
		render(c, http.StatusOK, "delete_item.html", gin.H{"title": "Delete " + item.Name, "item": item})
	}
}

// DeleteItemHandler removes the item after a confirmed submission
func DeleteItemHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := ownedItem(c, db, "delete")
		if !ok {
			return
		}
		if err := db.WithContext(c.Request.Context()).Delete(&domain.CategoryItem{}, item.ID).Error; err != nil {
			respondHTMLError(c, err)
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"item_id":     item.ID,         // Item ID
			"category_id": item.CategoryID, // Category ID
		}).Info("Category item deleted")
		invalidateCatalogue(c, rdb) // Cached catalogue is stale
		middleware.CurrentSession(c).AddFlash("Category item deleted!", "danger")
		seeOther(c, categoryPath(item.CategoryID))
	}
}
