// SPDX-License-Identifier: MIT
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("media not found")
	ErrInvalidType = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
	ErrTooLarge    = errors.New("file is too large")
	ErrEmpty       = errors.New("file is empty")
)

// InUseError is returned when deleting media that is still referenced.
type InUseError struct {
	Usages []Usage
}

func (e *InUseError) Error() string {
	parts := make([]string, 0, len(e.Usages))
	for _, u := range e.Usages {
		parts = append(parts, u.String())
	}
	return "media is still used by " + strings.Join(parts, ", ")
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store keeps uploaded images as database blobs.
type Store struct {
	db            *gorm.DB
	maxBytes      int64
	thumbnailSize int
	log           zerolog.Logger
}

// NewStore creates a store. maxBytes <= 0 disables the size limit and
// thumbnailSize <= 0 uses DefaultThumbnailSize.
func NewStore(db *gorm.DB, maxBytes int64, thumbnailSize int) *Store {
	if thumbnailSize <= 0 {
		thumbnailSize = DefaultThumbnailSize
	}
	return &Store{db: db, maxBytes: maxBytes, thumbnailSize: thumbnailSize, log: logging.For("media")}
}

// Sniff returns the content type of data when it is an allowed image.
func Sniff(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	if _, ok := allowedTypes[contentType]; !ok {
		return contentType, fmt.Errorf("%w: got %s", ErrInvalidType, contentType)
	}
	return contentType, nil
}

// Save validates data by its magic bytes, builds a thumbnail and stores both.
func (s *Store) Save(ctx context.Context, restaurantID uint, filename string, data []byte) (*models.Media, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), s.maxBytes)
	}

	contentType, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	width, height, err := Dimensions(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidType, err)
	}

	thumb, err := Thumbnail(data, s.thumbnailSize, s.thumbnailSize)
	if err != nil {
		// The original is still usable as a background
		s.log.Warn().Err(err).Str("filename", filename).Msg("Thumbnail generation failed")
	}

	m := &models.Media{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Filename:     cleanFilename(filename, contentType),
		MimeType:     contentType,
		Size:         int64(len(data)),
		Width:        width,
		Height:       height,
		Data:         data,
		Thumbnail:    thumb,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}

	s.log.Info().Uint("restaurant_id", restaurantID).Str("media", m.ID).Str("type", contentType).Int64("size", m.Size).Msg("Media saved")
	return m, nil
}

// Get loads one media row including its blobs.
func (s *Store) Get(ctx context.Context, restaurantID uint, id string) (*models.Media, error) {
	var m models.Media
	err := s.db.WithContext(ctx).Where("restaurant_id = ? AND id = ?", restaurantID, id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load media: %w", err)
	}
	return &m, nil
}

// List returns metadata of every media row, newest first. Blobs are not
// loaded.
func (s *Store) List(ctx context.Context, restaurantID uint) ([]models.Media, error) {
	var out []models.Media
	err := s.db.WithContext(ctx).
		Omit("data", "thumbnail").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return out, nil
}

// Delete removes media that nothing references. Referenced media yields an
// *InUseError.
func (s *Store) Delete(ctx context.Context, restaurantID uint, id string) error {
	usages, err := FindUsage(ctx, s.db, restaurantID, id)
	if err != nil {
		return err
	}
	if len(usages) > 0 {
		return &InUseError{Usages: usages}
	}

	res := s.db.WithContext(ctx).Where("restaurant_id = ? AND id = ?", restaurantID, id).Delete(&models.Media{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete media: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Detach clears item and logo references to id. Theme references are
// cleared by the theme service so the change is announced.
func (s *Store) Detach(ctx context.Context, restaurantID uint, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).
			Where("restaurant_id = ? AND image_media_id = ?", restaurantID, id).
			Update("image_media_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach item images: %w", err)
		}
		if err := tx.Model(&models.Restaurant{}).
			Where("id = ? AND logo_media_id = ?", restaurantID, id).
			Update("logo_media_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach logo: %w", err)
		}
		return nil
	})
}

func cleanFilename(name, contentType string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	if filepath.Ext(name) == "" {
		name += allowedTypes[contentType]
	}
	return name
}
