// SPDX-License-Identifier: MIT
package media

import (
	"context"
	"fmt"

	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

// Usage is one place that references a media id.
type Usage struct {
	Kind  string // "theme", "logo" or "item"
	ID    uint
	Label string
}

func (u Usage) String() string {
	if u.Label == "" {
		return u.Kind
	}
	return fmt.Sprintf("%s %q", u.Kind, u.Label)
}

// FindUsage lists the theme background, restaurant logo and menu items
// that reference mediaID.
func FindUsage(ctx context.Context, db *gorm.DB, restaurantID uint, mediaID string) ([]Usage, error) {
	var usages []Usage
	db = db.WithContext(ctx)

	var themeCount int64
	if err := db.Model(&models.Theme{}).
		Where("restaurant_id = ? AND background_image_media_id = ?", restaurantID, mediaID).
		Count(&themeCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check theme usage: %w", err)
	}
	if themeCount > 0 {
		usages = append(usages, Usage{Kind: "theme", Label: "background image"})
	}

	var logoCount int64
	if err := db.Model(&models.Restaurant{}).
		Where("id = ? AND logo_media_id = ?", restaurantID, mediaID).
		Count(&logoCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check logo usage: %w", err)
	}
	if logoCount > 0 {
		usages = append(usages, Usage{Kind: "logo", ID: restaurantID})
	}

	var items []models.Item
	if err := db.Where("restaurant_id = ? AND image_media_id = ?", restaurantID, mediaID).
		Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to check item usage: %w", err)
	}
	for _, item := range items {
		usages = append(usages, Usage{Kind: "item", ID: item.ID, Label: firstName(item.Name)})
	}

	return usages, nil
}

func firstName(l models.Localized) string {
	if v, ok := l["en"]; ok && v != "" {
		return v
	}
	for _, v := range l {
		if v != "" {
			return v
		}
	}
	return ""
}
