// SPDX-License-Identifier: MIT

// Package db opens the gorm connection shared by the server and the CLI.
package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection set by InitDB.
var DB *gorm.DB

const slowQuery = 500 * time.Millisecond

// gormWriter sends gorm's warnings and slow query reports to zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

func newLogger() logger.Interface {
	return logger.New(gormWriter{log: logging.For("db")}, logger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// sqliteDSN adds a busy timeout to file databases so the server and a CLI
// command can share one file.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// Open connects to a sqlite file or a MySQL/MariaDB DSN without touching DB.
func Open(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "mysql", "mariadb":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if conn.Dialector.Name() == "mysql" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	return conn, nil
}

// Migrate creates or updates every table.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// InitDB opens and migrates the database and stores it in DB.
func InitDB(dbType, dsn string) error {
	conn, err := Open(dbType, dsn)
	if err != nil {
		return err
	}
	if err := Migrate(conn); err != nil {
		return err
	}
	DB = conn
	return nil
}

// GetDB returns the connection set by InitDB or SetDB.
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the process-wide connection.
func SetDB(conn *gorm.DB) {
	DB = conn
}

// Close releases the process-wide connection, if any.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	DB = nil
	return sqlDB.Close()
}
