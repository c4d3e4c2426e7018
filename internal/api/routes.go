package api

import (
	"fmt"  // Error wrapping
	"time" // Time durations

	"catalogue_app/internal/identity"   // Identity token verification
	"catalogue_app/internal/middleware" // Custom middleware
	"catalogue_app/internal/view"       // Embedded templates

	"github.com/gin-contrib/sessions" // Gin session middleware
	"github.com/gin-gonic/gin"        // Gin web framework
	"github.com/redis/go-redis/v9"    // Redis client
	"gorm.io/gorm"                    // GORM ORM library
)

// Deps are the collaborators shared by all handlers
type Deps struct {
	DB             *gorm.DB          // Database handle
	Sessions       sessions.Store    // Session store behind the cookie
	Redis          redis.Cmdable     // Response cache, nil to disable
	Verifier       identity.Verifier // Identity token verifier
	Secret         []byte            // Per-process secret for session credentials
	GoogleClientID string            // Rendered into the login page
	RequestTimeout time.Duration     // Upper bound for a single request
}

// NewRouter wires every route of the catalogue
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	templates, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(templates)

	// Every request is bounded and carries its session
	r.Use(middleware.RequestTimeout(d.RequestTimeout), middleware.Sessions(d.Sessions))
	loginRequired := middleware.LoginRequired(d.Secret)

	// Auth routes
	r.GET("/login/", LoginPageHandler(d.GoogleClientID))                     // Login entry point
	r.POST("/oauth/google/", GoogleLoginHandler(d.DB, d.Verifier, d.Secret)) // Google sign-in callback
	r.GET("/logout/", loginRequired, LogoutHandler())                        // Logout

	// JSON routes (public, read-only)
	r.GET("/catalogue.json/", CatalogueJSONHandler(d.DB, d.Redis))     // Full catalogue
	r.GET("/categories.json/", CategoriesJSONHandler(d.DB))            // All categories
	r.GET("/category/:id/items.json/", CategoryItemsJSONHandler(d.DB)) // Items of a category

	// Page routes
	r.GET("/", loginRequired, CatalogueHandler(d.DB))           // Home
	r.GET("/catalogue/", loginRequired, CatalogueHandler(d.DB)) // Catalogue
	r.GET("/category/:id/", CategoryRoute(d.DB))                // Category page or /category/<id>.json/
	r.GET("/category/item/:id/", ItemRoute(d.DB, d.Secret))     // Item page or /category/item/<id>.json/

	// Item management (signed-in users, creators only for edit and delete)
	items := r.Group("/category", loginRequired)
	items.GET("/:id/newitem/", NewItemPageHandler(d.DB))              // Create form
	items.POST("/:id/newitem/", CreateItemHandler(d.DB, d.Redis))     // Create
	items.GET("/item/:id/edit/", EditItemPageHandler(d.DB))           // Edit form
	items.POST("/item/:id/edit/", UpdateItemHandler(d.DB, d.Redis))   // Edit
	items.GET("/item/:id/delete/", DeleteItemPageHandler(d.DB))       // Delete confirmation
	items.POST("/item/:id/delete/", DeleteItemHandler(d.DB, d.Redis)) // Delete

	return r, nil
}
