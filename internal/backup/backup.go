// SPDX-License-Identifier: MIT

// Package backup snapshots the database and exports single restaurants.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thatcatcamp/menukitty/internal/logging"
	"gorm.io/gorm"
)

const (
	filePrefix = "menukitty-"
	fileSuffix = ".db"
	timeLayout = "20060102-150405.000"
)

// ErrUnsupportedDialect is returned for databases that cannot be snapshotted
// from inside the process.
var ErrUnsupportedDialect = errors.New("database snapshots require sqlite")

// Info describes one snapshot on disk.
type Info struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// BackupManager writes and prunes database snapshots under BackupPath.
type BackupManager struct {
	BackupPath string
	// Retention is how many snapshots Prune keeps. Zero keeps everything.
	Retention int

	now func() time.Time
}

// NewBackupManager creates a new backup manager
func NewBackupManager(backupPath string, retention int) *BackupManager {
	return &BackupManager{
		BackupPath: backupPath,
		Retention:  retention,
		now:        time.Now,
	}
}

// CreateBackup writes a consistent copy of db with VACUUM INTO and returns
// its path.
func (m *BackupManager) CreateBackup(ctx context.Context, db *gorm.DB) (string, error) {
	if db == nil {
		return "", fmt.Errorf("database is required")
	}
	if name := db.Dialector.Name(); name != "sqlite" {
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedDialect, name)
	}
	if err := os.MkdirAll(m.BackupPath, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now().UTC()
	path := filepath.Join(m.BackupPath, filePrefix+ts.Format(timeLayout)+fileSuffix)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", filepath.Base(path))
	}

	if err := db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}

	log := logging.For("backup")
	log.Info().Str("path", path).Msg("Database snapshot written")
	return path, nil
}

// List returns the snapshots in BackupPath, newest first. A missing
// directory is an empty list.
func (m *BackupManager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ts, err := time.Parse(timeLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Info{
			Name:      name,
			Path:      filepath.Join(m.BackupPath, name),
			Size:      fi.Size(),
			CreatedAt: ts,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Prune removes all but the newest Retention snapshots and returns how many
// were deleted.
func (m *BackupManager) Prune() (int, error) {
	if m.Retention <= 0 {
		return 0, nil
	}
	list, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(list) <= m.Retention {
		return 0, nil
	}

	removed := 0
	for _, old := range list[m.Retention:] {
		if err := os.Remove(old.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", old.Name, err)
		}
		removed++
	}
	log := logging.For("backup")
	log.Info().Int("removed", removed).Msg("Old snapshots pruned")
	return removed, nil
}
