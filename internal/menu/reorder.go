// SPDX-License-Identifier: MIT
package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

// Kind names one level of the menu tree.
type Kind string

const (
	KindSection  Kind = "section"
	KindCategory Kind = "category"
	KindItem     Kind = "item"
)

var (
	ErrUnknownKind   = errors.New("kind must be section, category or item")
	ErrOrderMismatch = errors.New("order must list every entry of the parent exactly once")
)

// ParseKind validates a kind from a request.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSection, KindCategory, KindItem:
		return k, nil
	}
	return "", ErrUnknownKind
}

// siblings scopes a query to the entries sharing parentID. Sections are
// scoped by restaurant only.
func siblings(tx *gorm.DB, kind Kind, restaurantID, parentID uint) (*gorm.DB, error) {
	switch kind {
	case KindSection:
		return tx.Model(&models.Section{}).Where("restaurant_id = ?", restaurantID), nil
	case KindCategory:
		return tx.Model(&models.Category{}).Where("restaurant_id = ? AND section_id = ?", restaurantID, parentID), nil
	case KindItem:
		return tx.Model(&models.Item{}).Where("restaurant_id = ? AND category_id = ?", restaurantID, parentID), nil
	}
	return nil, ErrUnknownKind
}

func orderedIDs(q *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := q.Order("position, id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func writePositions(tx *gorm.DB, kind Kind, ids []uint) error {
	var model interface{}
	switch kind {
	case KindSection:
		model = &models.Section{}
	case KindCategory:
		model = &models.Category{}
	default:
		model = &models.Item{}
	}
	for pos, id := range ids {
		if err := tx.Model(model).Where("id = ?", id).UpdateColumn("position", pos).Error; err != nil {
			return err
		}
	}
	return nil
}

// Reorder applies a drag-and-drop order. ids must be a permutation of the
// parent's current children; positions become 0..n-1 in one transaction.
func (s *Service) Reorder(ctx context.Context, restaurantID uint, kind Kind, parentID uint, ids []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := siblings(tx, kind, restaurantID, parentID)
		if err != nil {
			return err
		}
		current, err := orderedIDs(q)
		if err != nil {
			return err
		}
		if !samePermutation(current, ids) {
			return ErrOrderMismatch
		}
		return writePositions(tx, kind, ids)
	})
	if err != nil {
		return fmt.Errorf("reorder %s: %w", kind, err)
	}
	s.log.Debug().Uint("restaurant_id", restaurantID).Str("kind", string(kind)).Int("count", len(ids)).Msg("Reordered")
	return nil
}

// MoveUp swaps an entry with its predecessor. It reports false when the
// entry is already first.
func (s *Service) MoveUp(ctx context.Context, restaurantID uint, kind Kind, id uint) (bool, error) {
	return s.move(ctx, restaurantID, kind, id, -1)
}

// MoveDown swaps an entry with its successor. It reports false when the
// entry is already last.
func (s *Service) MoveDown(ctx context.Context, restaurantID uint, kind Kind, id uint) (bool, error) {
	return s.move(ctx, restaurantID, kind, id, 1)
}

func (s *Service) move(ctx context.Context, restaurantID uint, kind Kind, id uint, delta int) (bool, error) {
	moved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parentID, err := parentOf(tx, kind, restaurantID, id)
		if err != nil {
			return err
		}
		q, err := siblings(tx, kind, restaurantID, parentID)
		if err != nil {
			return err
		}
		ids, err := orderedIDs(q)
		if err != nil {
			return err
		}

		idx := -1
		for i, v := range ids {
			if v == id {
				idx = i
				break
			}
		}
		target := idx + delta
		if idx < 0 || target < 0 || target >= len(ids) {
			return nil
		}
		ids[idx], ids[target] = ids[target], ids[idx]
		moved = true
		return writePositions(tx, kind, ids)
	})
	return moved, err
}

func parentOf(tx *gorm.DB, kind Kind, restaurantID, id uint) (uint, error) {
	switch kind {
	case KindSection:
		var sec models.Section
		if err := tx.Where("restaurant_id = ?", restaurantID).First(&sec, id).Error; err != nil {
			return 0, notFound(err)
		}
		return 0, nil
	case KindCategory:
		var cat models.Category
		if err := tx.Where("restaurant_id = ?", restaurantID).First(&cat, id).Error; err != nil {
			return 0, notFound(err)
		}
		return cat.SectionID, nil
	case KindItem:
		var item models.Item
		if err := tx.Where("restaurant_id = ?", restaurantID).First(&item, id).Error; err != nil {
			return 0, notFound(err)
		}
		return item.CategoryID, nil
	}
	return 0, ErrUnknownKind
}

func samePermutation(current, proposed []uint) bool {
	if len(current) != len(proposed) {
		return false
	}
	want := make(map[uint]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	for _, id := range proposed {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}
