package api

import (
	"net/http" // HTTP status codes
	"time"     // Cache TTL

	"catalogue_app/internal/domain" // Importing domain models
	"catalogue_app/internal/utils"  // Redis JSON helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cached copy of the full catalogue document
const (
	catalogueCacheKey = "catalogue:json" // Redis key
	catalogueCacheTTL = 60 * time.Second // Upper bound on staleness
)

// orderByID keeps preloaded associations in a stable order
func orderByID(db *gorm.DB) *gorm.DB { return db.Order("id") }

// CatalogueJSONHandler returns every category with its items nested. When
// rdb is set the document is served from Redis until an item changes.
func CatalogueJSONHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Bounded by the request timeout
		if rdb != nil {
			var cached []domain.CategoryWithItemsJSON
			found, err := utils.GetJSON(ctx, rdb, catalogueCacheKey, &cached)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"Catalog": cached})
				return
			}
		}
		var categories []domain.Category // All categories
		// Preload Items relation, both levels ordered by ID
		if err := db.WithContext(ctx).Preload("Items", orderByID).Order("id").Find(&categories).Error; err != nil {
			respondJSONError(c, err)
			return
		}
		catalog := make([]domain.CategoryWithItemsJSON, 0, len(categories))
		for _, category := range categories {
			catalog = append(catalog, category.SerializeWithItems())
		}
		// Cache the response for future requests
		if rdb != nil {
			_ = utils.SetJSON(ctx, rdb, catalogueCacheKey, catalog, catalogueCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"Catalog": catalog})
	}
}

// invalidateCatalogue drops the cached catalogue after an item changes
func invalidateCatalogue(c *gin.Context, rdb redis.Cmdable) {
	if rdb == nil {
		return
	}
	if err := utils.DeleteKey(c.Request.Context(), rdb, catalogueCacheKey); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   catalogueCacheKey, // Cache key
			"error": err.Error(),       // Error message
		}).Warn("Failed to invalidate catalogue cache")
	}
}

// CategoriesJSONHandler returns a flat list of categories
func CategoriesJSONHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := listCategories(db.WithContext(c.Request.Context()))
		if err != nil {
			respondJSONError(c, err)
			return
		}
		out := make([]domain.CategoryJSON, 0, len(categories))
		for _, category := range categories {
			out = append(out, category.Serialize())
		}
		c.JSON(http.StatusOK, gin.H{"Categories": out})
	}
}

// CategoryItemsJSONHandler returns the items of one category
func CategoryItemsJSONHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondJSONError(c, err)
			return
		}
		tx := db.WithContext(c.Request.Context())
		// The category itself must exist; an empty one yields an empty list
		if _, err := findCategory(tx, id); err != nil {
			respondJSONError(c, err)
			return
		}
		var items []domain.CategoryItem // Items in the category
		if err := tx.Where("category_id = ?", id).Order("id").Find(&items).Error; err != nil {
			respondJSONError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": domain.SerializeItems(items)})
	}
}

// categoryJSON writes one category; reached through CategoryRoute
func categoryJSON(c *gin.Context, db *gorm.DB, id uint, refErr error) {
	if refErr != nil {
		respondJSONError(c, refErr)
		return
	}
	category, err := findCategory(db.WithContext(c.Request.Context()), id)
	if err != nil {
		respondJSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Category": category.Serialize()})
}

// itemJSON writes one item; reached through ItemRoute
func itemJSON(c *gin.Context, db *gorm.DB, id uint, refErr error) {
	if refErr != nil {
		respondJSONError(c, refErr)
		return
	}
	item, err := findItem(db.WithContext(c.Request.Context()), id)
	if err != nil {
		respondJSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categoryItem": item.Serialize()})
}
