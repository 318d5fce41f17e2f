// SPDX-License-Identifier: MIT
package themes

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationError lists every rejected field by its JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// UIField is one named size of a UISettings row.
type UIField struct {
	Name  string
	Value int
}

// UIFields lists the sizes in a stable order using their JSON names.
func UIFields(s models.UISettings) []UIField {
	return []UIField{
		{"sectionTitleSize", s.SectionTitleSize},
		{"categoryTitleSize", s.CategoryTitleSize},
		{"itemTitleSize", s.ItemTitleSize},
		{"itemDescriptionSize", s.ItemDescriptionSize},
		{"itemPriceSize", s.ItemPriceSize},
		{"headerLogoSize", s.HeaderLogoSize},
		{"bottomNavLabelSize", s.BottomNavLabelSize},
		{"welcomeTitleSize", s.WelcomeTitleSize},
	}
}

// ValidateUISettings checks every field and reports all failures at once.
func ValidateUISettings(s models.UISettings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "min":
			fields[fe.Field()] = "must be at least " + fe.Param()
		case "max":
			fields[fe.Field()] = "must be at most " + fe.Param()
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}

// GetUISettings returns the restaurant's settings, creating the default row
// on first read.
func (s *Store) GetUISettings(ctx context.Context, restaurantID uint) (*models.UISettings, error) {
	db := s.db.WithContext(ctx)

	var out models.UISettings
	err := db.Where("restaurant_id = ?", restaurantID).First(&out).Error
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load ui settings: %w", err)
	}

	def := models.DefaultUISettings(restaurantID)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}},
		DoNothing: true,
	}).Create(&def).Error; err != nil {
		return nil, fmt.Errorf("failed to create ui settings: %w", err)
	}

	if err := db.Where("restaurant_id = ?", restaurantID).First(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load ui settings: %w", err)
	}
	return &out, nil
}

// PutUISettings validates every field, then replaces the stored row. If
// any field is out of range nothing is written.
func (s *Store) PutUISettings(ctx context.Context, restaurantID uint, in models.UISettings) (*models.UISettings, error) {
	if err := ValidateUISettings(in); err != nil {
		return nil, err
	}

	cur, err := s.GetUISettings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	in.ID = cur.ID
	in.RestaurantID = restaurantID

	if err := s.db.WithContext(ctx).Save(&in).Error; err != nil {
		return nil, fmt.Errorf("failed to save ui settings: %w", err)
	}
	return &in, nil
}
