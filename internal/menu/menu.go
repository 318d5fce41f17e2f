// SPDX-License-Identifier: MIT
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("menu entry not found")
	ErrInvalidName = errors.New("name needs at least one non-empty translation")
)

// SectionInput creates or updates a section.
type SectionInput struct {
	Name models.Localized `json:"name"`
}

// CategoryInput creates or updates a category.
type CategoryInput struct {
	SectionID   uint             `json:"sectionId" validate:"required"`
	Name        models.Localized `json:"name"`
	Description models.Localized `json:"description"`
}

// ItemInput creates or updates an item.
type ItemInput struct {
	CategoryID   uint             `json:"categoryId" validate:"required"`
	Name         models.Localized `json:"name"`
	Description  models.Localized `json:"description"`
	PriceCents   int              `json:"priceCents" validate:"min=0,max=10000000"`
	ImageMediaID *string          `json:"imageMediaId"`
	Available    *bool            `json:"available"`
}

// Service manages the menu tree of restaurants.
type Service struct {
	db       *gorm.DB
	validate *validator.Validate
	log      zerolog.Logger
}

// NewService creates a menu service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validate: validator.New(), log: logging.For("menu")}
}

// Tree returns every section with its categories and items ordered by
// position. With onlyAvailable, unavailable items are left out.
func (s *Service) Tree(ctx context.Context, restaurantID uint, onlyAvailable bool) ([]models.Section, error) {
	var sections []models.Section
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("position, id").
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, id")
		}).
		Preload("Categories.Items", func(db *gorm.DB) *gorm.DB {
			if onlyAvailable {
				db = db.Where("available = ?", true)
			}
			return db.Order("position, id")
		}).
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return sections, nil
}

// CreateSection appends a section.
func (s *Service) CreateSection(ctx context.Context, restaurantID uint, in SectionInput) (*models.Section, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	sec := &models.Section{RestaurantID: restaurantID, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &models.Section{}, "restaurant_id = ?", restaurantID)
		if err != nil {
			return err
		}
		sec.Position = pos
		return tx.Create(sec).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return sec, nil
}

// UpdateSection renames a section.
func (s *Service) UpdateSection(ctx context.Context, restaurantID, id uint, in SectionInput) (*models.Section, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	var sec models.Section
	if err := s.find(ctx, &sec, restaurantID, id); err != nil {
		return nil, err
	}
	sec.Name = name
	if err := s.db.WithContext(ctx).Save(&sec).Error; err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return &sec, nil
}

// DeleteSection removes a section with its categories and items.
func (s *Service) DeleteSection(ctx context.Context, restaurantID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var catIDs []uint
		if err := tx.Model(&models.Category{}).
			Where("restaurant_id = ? AND section_id = ?", restaurantID, id).
			Pluck("id", &catIDs).Error; err != nil {
			return err
		}
		if len(catIDs) > 0 {
			if err := tx.Where("restaurant_id = ? AND category_id IN ?", restaurantID, catIDs).
				Delete(&models.Item{}).Error; err != nil {
				return err
			}
			if err := tx.Where("restaurant_id = ? AND id IN ?", restaurantID, catIDs).
				Delete(&models.Category{}).Error; err != nil {
				return err
			}
		}
		return deleteOne(tx, &models.Section{}, restaurantID, id)
	})
}

// CreateCategory appends a category to a section.
func (s *Service) CreateCategory(ctx context.Context, restaurantID uint, in CategoryInput) (*models.Category, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	var parent models.Section
	if err := s.find(ctx, &parent, restaurantID, in.SectionID); err != nil {
		return nil, err
	}

	cat := &models.Category{
		RestaurantID: restaurantID,
		SectionID:    in.SectionID,
		Name:         name,
		Description:  cleanText(in.Description),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &models.Category{}, "section_id = ?", in.SectionID)
		if err != nil {
			return err
		}
		cat.Position = pos
		return tx.Create(cat).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

// UpdateCategory changes a category's texts. A different SectionID moves it
// to the end of that section.
func (s *Service) UpdateCategory(ctx context.Context, restaurantID, id uint, in CategoryInput) (*models.Category, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	var cat models.Category
	if err := s.find(ctx, &cat, restaurantID, id); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SectionID != cat.SectionID {
			var parent models.Section
			if err := tx.Where("restaurant_id = ?", restaurantID).First(&parent, in.SectionID).Error; err != nil {
				return notFound(err)
			}
			pos, err := nextPosition(tx, &models.Category{}, "section_id = ?", in.SectionID)
			if err != nil {
				return err
			}
			cat.SectionID = in.SectionID
			cat.Position = pos
		}
		cat.Name = name
		cat.Description = cleanText(in.Description)
		return tx.Save(&cat).Error
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category with its items.
func (s *Service) DeleteCategory(ctx context.Context, restaurantID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ? AND category_id = ?", restaurantID, id).
			Delete(&models.Item{}).Error; err != nil {
			return err
		}
		return deleteOne(tx, &models.Category{}, restaurantID, id)
	})
}

// CreateItem appends an item to a category.
func (s *Service) CreateItem(ctx context.Context, restaurantID uint, in ItemInput) (*models.Item, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	var parent models.Category
	if err := s.find(ctx, &parent, restaurantID, in.CategoryID); err != nil {
		return nil, err
	}

	item := &models.Item{
		RestaurantID: restaurantID,
		CategoryID:   in.CategoryID,
		Name:         name,
		Description:  cleanText(in.Description),
		PriceCents:   in.PriceCents,
		ImageMediaID: mediaRef(in.ImageMediaID),
		Available:    in.Available == nil || *in.Available,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &models.Item{}, "category_id = ?", in.CategoryID)
		if err != nil {
			return err
		}
		item.Position = pos
		// Create backfills the schema default of true, so false is written
		// separately
		available := item.Available
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if !available {
			item.Available = false
			return tx.Model(item).Update("available", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces an item's fields. A different CategoryID moves it to
// the end of that category. A nil Available keeps the current value.
func (s *Service) UpdateItem(ctx context.Context, restaurantID, id uint, in ItemInput) (*models.Item, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := s.find(ctx, &item, restaurantID, id); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CategoryID != item.CategoryID {
			var parent models.Category
			if err := tx.Where("restaurant_id = ?", restaurantID).First(&parent, in.CategoryID).Error; err != nil {
				return notFound(err)
			}
			pos, err := nextPosition(tx, &models.Item{}, "category_id = ?", in.CategoryID)
			if err != nil {
				return err
			}
			item.CategoryID = in.CategoryID
			item.Position = pos
		}
		item.Name = name
		item.Description = cleanText(in.Description)
		item.PriceCents = in.PriceCents
		item.ImageMediaID = mediaRef(in.ImageMediaID)
		if in.Available != nil {
			item.Available = *in.Available
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetAvailable marks an item as available or sold out.
func (s *Service) SetAvailable(ctx context.Context, restaurantID, id uint, available bool) error {
	res := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		Update("available", available)
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes one item.
func (s *Service) DeleteItem(ctx context.Context, restaurantID, id uint) error {
	return deleteOne(s.db.WithContext(ctx), &models.Item{}, restaurantID, id)
}

func (s *Service) find(ctx context.Context, dst interface{}, restaurantID, id uint) error {
	err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).First(dst, id).Error
	return notFound(err)
}

func deleteOne(tx *gorm.DB, model interface{}, restaurantID, id uint) error {
	res := tx.Where("restaurant_id = ?", restaurantID).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func nextPosition(tx *gorm.DB, model interface{}, where string, arg uint) (int, error) {
	var max int
	if err := tx.Model(model).Where(where, arg).Select("COALESCE(MAX(position), -1)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func cleanText(l models.Localized) models.Localized {
	out := models.Localized{}
	for k, v := range l {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func cleanName(l models.Localized) (models.Localized, error) {
	out := cleanText(l)
	if len(out) == 0 {
		return nil, ErrInvalidName
	}
	return out, nil
}

func mediaRef(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}
