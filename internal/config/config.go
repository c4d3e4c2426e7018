package config

import (
	"errors"  // For configuration errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For trimming and splitting values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL  = "mysql"  // Production database
	DriverSQLite = "sqlite" // Local development database
)

// ErrMissingClientID is returned when no Google client id is configured
var ErrMissingClientID = errors.New("GOOGLE_CLIENT_ID is required")

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBDriver       string        // Database driver: mysql or sqlite
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	SQLitePath     string        // SQLite database file
	GoogleClientID string        // OAuth client id, the expected token audience
	RedisAddr      string        // Redis server address, empty for in-memory sessions
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	IsProd         bool          // Is production environment
	RequestTimeout time.Duration // Upper bound for a single request
	SessionTTL     time.Duration // Lifetime of a server-side session
	SeedCategories []string      // Category names created by the migrate command
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:        envOr("APP_PORT", "8000"),                                          // Application port
		DBDriver:       strings.ToLower(envOr("DB_DRIVER", DriverSQLite)),                  // Database driver
		DBUser:         os.Getenv("DB_USER"),                                               // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                                           // Database password
		DBHost:         envOr("DB_HOST", "127.0.0.1"),                                      // Database host
		DBPort:         envOr("DB_PORT", "3306"),                                           // Database port
		DBName:         os.Getenv("DB_NAME"),                                               // Database name
		SQLitePath:     envOr("SQLITE_PATH", "catalogue.db"),                               // SQLite file
		GoogleClientID: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),                   // Token audience
		RedisAddr:      os.Getenv("REDIS_ADDR"),                                            // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                                            // Redis password
		RedisDB:        redisDB,                                                            // Redis database number
		IsProd:         os.Getenv("IS_PROD") == "true",                                     // Is production environment
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second, // Request timeout
		SessionTTL:     time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,         // Session lifetime
		SeedCategories: splitList(os.Getenv("SEED_CATEGORIES")),                            // Seeded categories
	}
	// Only the two drivers above are wired
	if cfg.DBDriver != DriverMySQL && cfg.DBDriver != DriverSQLite {
		return nil, errors.New("DB_DRIVER must be mysql or sqlite")
	}
	// Tokens cannot be verified without an audience
	if cfg.GoogleClientID == "" {
		return cfg, ErrMissingClientID
	}
	return cfg, nil
}

// envOr returns the trimmed environment value or a fallback
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envInt returns a positive integer environment value or a fallback
func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
