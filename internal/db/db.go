package db

import (
	"fmt"           // Error wrapping
	"net"           // Host/port joining
	"os"            // Directory creation for SQLite files
	"path/filepath" // Parent directory of the SQLite file
	"strings"       // DSN prefix checks
	"time"          // Pool lifetimes

	"catalogue_app/internal/config" // Application configuration

	mysqldrv "github.com/go-sql-driver/mysql" // DSN formatting
	"github.com/sirupsen/logrus"              // Logging library
	"gorm.io/driver/mysql"                    // MySQL driver for GORM
	"gorm.io/driver/sqlite"                   // SQLite driver for GORM
	"gorm.io/gorm"                            // GORM ORM library
	"gorm.io/gorm/logger"                     // GORM logger
)

// MySQLDSN builds the Data Source Name for the configured MySQL database
func MySQLDSN(cfg *config.Config) string {
	mc := mysqldrv.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	return mc.FormatDSN()
}

// Open connects to the configured database and tunes the connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(MySQLDSN(cfg))
	default:
		if err := ensureDirForSQLite(cfg.SQLitePath); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	}
	return OpenDialector(dialector)
}

// OpenDialector opens a gorm connection with the shared logger and pool settings
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	// Route gorm's own logs through logrus
	dbLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
