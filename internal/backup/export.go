// SPDX-License-Identifier: MIT
package backup

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/menu"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"gorm.io/gorm"
)

// ExportVersion is bumped when the archive layout changes.
const ExportVersion = 1

// Export is the content of a restaurant archive. Media blobs are left out;
// only their metadata is listed.
type Export struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Restaurant models.Restaurant `json:"restaurant"`
	Theme      themes.ThemeView  `json:"theme"`
	Vars       themes.Vars       `json:"vars"`
	Branding   themes.Branding   `json:"branding"`
	UISettings models.UISettings `json:"uiSettings"`
	Menu       []models.Section  `json:"menu"`
	Media      []models.Media    `json:"media"`
}

// RestaurantExporter builds per-restaurant archives.
type RestaurantExporter struct {
	BackupPath string
	db         *gorm.DB
	now        func() time.Time
}

// NewRestaurantExporter creates an exporter writing files under
// backupPath/restaurant-exports.
func NewRestaurantExporter(db *gorm.DB, backupPath string) *RestaurantExporter {
	return &RestaurantExporter{BackupPath: backupPath, db: db, now: time.Now}
}

// Build collects everything about r into an Export.
func (e *RestaurantExporter) Build(ctx context.Context, r *models.Restaurant) (*Export, error) {
	store := themes.NewStore(e.db)

	th, err := store.Get(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	branding, err := store.GetBranding(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	ui, err := store.GetUISettings(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	tree, err := menu.NewService(e.db).Tree(ctx, r.ID, false)
	if err != nil {
		return nil, err
	}
	mediaList, err := media.NewStore(e.db, 0, 0).List(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	view := themes.ViewOf(th, r.Slug)
	return &Export{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC(),
		Restaurant: *r,
		Theme:      view,
		Vars:       themes.VarsOf(view),
		Branding:   branding,
		UISettings: *ui,
		Menu:       tree,
		Media:      mediaList,
	}, nil
}

// WriteArchive writes exp as gzip-compressed JSON.
func WriteArchive(w io.Writer, exp *Export) error {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gz.Close()
}

// ReadArchive decodes an archive written by WriteArchive.
func ReadArchive(r io.Reader) (*Export, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("not a gzip archive: %w", err)
	}
	defer gz.Close()

	var exp Export
	if err := json.NewDecoder(gz).Decode(&exp); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &exp, nil
}

// Filename is the archive name for slug at t.
func Filename(slug string, t time.Time) string {
	return fmt.Sprintf("restaurant-%s-%s.json.gz", slug, t.UTC().Format("2006-01-02-150405"))
}

// CreateExport writes an archive of r to disk and returns its path.
func (e *RestaurantExporter) CreateExport(ctx context.Context, r *models.Restaurant) (string, error) {
	exp, err := e.Build(ctx, r)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(e.BackupPath, "restaurant-exports")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(r.Slug, exp.ExportedAt))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteArchive(f, exp); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
