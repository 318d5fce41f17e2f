// SPDX-License-Identifier: MIT
package themes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/palette"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidColor is returned when a theme save has no background color.
	ErrInvalidColor = errors.New("appBg must be a non-empty string")
	// ErrInvalidBranding is returned for brand color values that are not a
	// string or a number.
	ErrInvalidBranding = errors.New("invalid brand colors")
)

// Store persists themes, brand colors and UI settings per restaurant.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the restaurant's theme, creating it with defaults if it does
// not exist yet.
func (s *Store) Get(ctx context.Context, restaurantID uint) (*models.Theme, error) {
	db := s.db.WithContext(ctx)

	var t models.Theme
	err := db.Where("restaurant_id = ?", restaurantID).First(&t).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}

	// Two first reads may race; the loser's insert is a no-op.
	t = models.Theme{RestaurantID: restaurantID, AppBg: DefaultAppBg}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}},
		DoNothing: true,
	}).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("failed to create default theme: %w", err)
	}

	var created models.Theme
	if err := db.Where("restaurant_id = ?", restaurantID).First(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	return &created, nil
}

// Put upserts the restaurant's theme. The color is only required to be
// non-blank. rgb() and hsl() forms are stored as hex; any other string is
// stored as given and normalized when rendered.
func (s *Store) Put(ctx context.Context, restaurantID uint, in ThemeInput) (*models.Theme, error) {
	bg := strings.TrimSpace(in.AppBg)
	if bg == "" {
		return nil, ErrInvalidColor
	}
	if hex, ok := palette.ToHex(bg); ok {
		bg = hex
	}

	var imageID *string
	if in.BackgroundImageMediaID != nil && strings.TrimSpace(*in.BackgroundImageMediaID) != "" {
		id := strings.TrimSpace(*in.BackgroundImageMediaID)
		imageID = &id
	}

	db := s.db.WithContext(ctx)
	t := models.Theme{RestaurantID: restaurantID, AppBg: bg, BackgroundImageMediaID: imageID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"app_bg", "background_image_media_id", "updated_at"}),
	}).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("failed to save theme: %w", err)
	}

	var saved models.Theme
	if err := db.Where("restaurant_id = ?", restaurantID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	return &saved, nil
}

// ClearBackgroundImage drops a background image reference, e.g. when the
// media is deleted. It reports whether a theme referenced mediaID.
func (s *Store) ClearBackgroundImage(ctx context.Context, restaurantID uint, mediaID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Theme{}).
		Where("restaurant_id = ? AND background_image_media_id = ?", restaurantID, mediaID).
		Update("background_image_media_id", nil)
	if res.Error != nil {
		return false, fmt.Errorf("failed to clear background image: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
