// SPDX-License-Identifier: MIT
package themes

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/models"
)

// Branding is an open key to string-or-number document of manually chosen
// colors. It is independent of the derived palette.
type Branding map[string]interface{}

const maxBrandValueLen = 128

// DefaultBranding returns the documented brand color roles with their
// defaults.
func DefaultBranding() Branding {
	return Branding{
		"menuGradientStart":     "#400810",
		"menuGradientEnd":       "#1A0306",
		"sectionCardBg":         "rgba(255,255,255,0.08)",
		"categoryCardBg":        "rgba(255,255,255,0.06)",
		"itemCardBg":            "rgba(255,255,255,0.05)",
		"sectionTitleColor":     "#FFFFFF",
		"categoryTitleColor":    "#FBBF24",
		"itemTitleColor":        "#FFFFFF",
		"itemDescriptionColor":  "rgba(255,255,255,0.75)",
		"itemPriceColor":        "#FBBF24",
		"bottomNavBg":           "rgba(0,0,0,0.6)",
		"bottomNavText":         "rgba(255,255,255,0.7)",
		"bottomNavActive":       "#FBBF24",
		"modalBg":               "#1F1F1F",
		"modalText":             "#FFFFFF",
		"modalBorder":           "rgba(255,255,255,0.2)",
		"buttonBg":              "#800020",
		"buttonText":            "#FFFFFF",
		"welcomeOverlayColor":   "#000000",
		"welcomeOverlayOpacity": 0.4,
	}
}

// Validate checks value types. welcomeOverlayOpacity must be a number in
// [0,1]; every other value must be a short string or a number.
func (b Branding) Validate() map[string]string {
	fields := map[string]string{}
	for k, v := range b {
		if strings.TrimSpace(k) == "" {
			fields[k] = "key must not be empty"
			continue
		}
		switch x := v.(type) {
		case string:
			if k == "welcomeOverlayOpacity" {
				fields[k] = "must be a number between 0 and 1"
			} else if len(x) > maxBrandValueLen {
				fields[k] = fmt.Sprintf("must be at most %d characters", maxBrandValueLen)
			}
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				fields[k] = "must be a finite number"
			} else if k == "welcomeOverlayOpacity" && (x < 0 || x > 1) {
				fields[k] = "must be a number between 0 and 1"
			}
		default:
			fields[k] = "must be a string or a number"
		}
	}
	return fields
}

func (s *Store) loadBrandOverrides(ctx context.Context, restaurantID uint) (Branding, error) {
	var r models.Restaurant
	if err := s.db.WithContext(ctx).Select("id", "brand_colors").First(&r, restaurantID).Error; err != nil {
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	stored := Branding{}
	if strings.TrimSpace(r.BrandColors) != "" {
		if err := json.Unmarshal([]byte(r.BrandColors), &stored); err != nil {
			return nil, fmt.Errorf("failed to decode brand colors: %w", err)
		}
	}
	return stored, nil
}

// GetBranding returns the stored brand colors merged over the defaults.
func (s *Store) GetBranding(ctx context.Context, restaurantID uint) (Branding, error) {
	stored, err := s.loadBrandOverrides(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	merged := DefaultBranding()
	for k, v := range stored {
		merged[k] = v
	}
	return merged, nil
}

// PutBranding merges patch into the stored document and returns the result
// merged over the defaults. Nothing is written when a value is invalid.
func (s *Store) PutBranding(ctx context.Context, restaurantID uint, patch Branding) (Branding, error) {
	if fields := patch.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	stored, err := s.loadBrandOverrides(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		stored[k] = v
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode brand colors: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		Update("brand_colors", string(raw)).Error; err != nil {
		return nil, fmt.Errorf("failed to save brand colors: %w", err)
	}

	return s.GetBranding(ctx, restaurantID)
}
