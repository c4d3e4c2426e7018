package main

import (
	"context"     // context package is needed for Redis operations
	"crypto/rand" // Per-process session secret

	"catalogue_app/internal/api"      // Custom package for API handlers
	"catalogue_app/internal/config"   // Custom package for configuration
	"catalogue_app/internal/db"       // Custom package for the database
	"catalogue_app/internal/identity" // Custom package for Google sign-in
	"catalogue_app/internal/session"  // Custom package for sessions

	"github.com/gin-contrib/sessions" // Gin session middleware
	"github.com/gin-gonic/gin"        // Gin web framework
	"github.com/redis/go-redis/v9"    // Redis client
	"github.com/sirupsen/logrus"      // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Connect to the database
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// SQLite databases are created on the fly for local runs
	if cfg.DBDriver == config.DriverSQLite {
		if err := db.Migrate(database); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
	}

	// New secret on every start: restarting signs everyone out
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logrus.Fatalf("failed to generate session secret: %v", err)
	}

	sessionOpts := session.Options{
		TTL:    cfg.SessionTTL, // Session lifetime
		Secure: cfg.IsProd,     // HTTPS-only cookie in production
	}
	// Setup session store and response cache, Redis when configured
	var (
		store sessions.Store // Session store behind the cookie
		cache redis.Cmdable  // Response cache, nil when Redis is off
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = redisClient
		store, err = session.NewRedisStore(session.RedisOptions{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		}, secret, sessionOpts)
	} else {
		logrus.Warn("REDIS_ADDR not set, sessions are kept in memory")
		store, err = session.NewMemoryStore(secret, sessionOpts)
	}
	if err != nil {
		logrus.Fatalf("failed to set up sessions: %v", err)
	}

	// Setup Google identity token verifier
	verifier, err := identity.NewGoogleVerifier(context.Background(), cfg.GoogleClientID, cfg.RequestTimeout)
	if err != nil {
		logrus.Fatalf("failed to set up Google sign-in: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.Deps{
		DB:             database,           // Database handle
		Sessions:       store,              // Session store
		Redis:          cache,              // Response cache
		Verifier:       verifier,           // Identity verifier
		Secret:         secret,             // Session credential secret
		GoogleClientID: cfg.GoogleClientID, // Login page client ID
		RequestTimeout: cfg.RequestTimeout, // Request timeout
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
