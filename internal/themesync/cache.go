// SPDX-License-Identifier: MIT

// Package themesync keeps a document's theme in step with the server: a
// cached first paint, an authoritative fetch, and refetches on every
// trigger that could mean the theme changed.
package themesync

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Cache is a durable client-side key-value store. It is only ever an
// optimization; the fetched theme always wins.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryCache is a Cache that lives as long as the process.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *MemoryCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

// clientSetting is one row of the durable cache.
type clientSetting struct {
	Name  string `gorm:"primaryKey;size:128"`
	Value string `gorm:"type:text"`
}

func (clientSetting) TableName() string {
	return "client_settings"
}

// DBCache is a Cache backed by a SQLite table, so it survives restarts.
type DBCache struct {
	db  *gorm.DB
	log zerolog.Logger
}

// OpenDBCache opens or creates a SQLite cache file.
func OpenDBCache(path string) (*DBCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return NewDBCache(db)
}

// NewDBCache uses an existing connection, creating the table if needed.
func NewDBCache(db *gorm.DB) (*DBCache, error) {
	if err := db.AutoMigrate(&clientSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return &DBCache{db: db, log: logging.For("themesync")}, nil
}

// Get returns false on a miss and on read errors; errors are logged.
func (c *DBCache) Get(key string) (string, bool) {
	var row clientSetting
	err := c.db.Where("name = ?", key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return "", false
	}
	return row.Value, true
}

func (c *DBCache) Set(key, value string) error {
	row := clientSetting{Name: key, Value: value}
	if err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
