// SPDX-License-Identifier: MIT
package menu

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/i18n"
	"github.com/thatcatcamp/menukitty/internal/models"
)

// SearchResult is an item matching a query with the texts shown to the
// guest.
type SearchResult struct {
	Item     models.Item `json:"item"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
}

// Search finds available items whose name or description contains query in
// any language. Names are matched against the JSON columns with LIKE, then
// confirmed against the decoded text so JSON keys never match.
func (s *Service) Search(ctx context.Context, restaurantID uint, query, lang, fallback string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return []SearchResult{}, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	var items []models.Item
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND available = ?", restaurantID, true).
		Where("(name LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\')", pattern, pattern).
		Limit(200).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search menu: %w", err)
	}

	catIDs := make([]uint, 0, len(items))
	for _, it := range items {
		catIDs = append(catIDs, it.CategoryID)
	}
	categories := map[uint]models.Category{}
	if len(catIDs) > 0 {
		var cats []models.Category
		if err := s.db.WithContext(ctx).Where("id IN ?", catIDs).Find(&cats).Error; err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		for _, c := range cats {
			categories[c.ID] = c
		}
	}

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0, len(items))
	for _, it := range items {
		if !containsText(it.Name, needle) && !containsText(it.Description, needle) {
			continue
		}
		results = append(results, SearchResult{
			Item:     it,
			Name:     i18n.Select(it.Name, lang, fallback),
			Category: i18n.Select(categories[it.CategoryID].Name, lang, fallback),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
	})
	return results, nil
}

func containsText(l models.Localized, needle string) bool {
	for _, v := range l {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
