// SPDX-License-Identifier: MIT
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImportDir stores every image file directly inside dir. Files that are
// already present under the same name, or that are not images, are skipped.
// It returns the number of imported files.
func (s *Store) ImportDir(ctx context.Context, restaurantID uint, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	existing, err := s.List(ctx, restaurantID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m.Filename] = true
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		default:
			continue
		}
		if seen[name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return count, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if _, err := s.Save(ctx, restaurantID, name, data); err != nil {
			if errors.Is(err, ErrInvalidType) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrEmpty) {
				s.log.Warn().Err(err).Str("file", name).Msg("Skipping file")
				continue
			}
			return count, err
		}
		seen[name] = true
		count++
	}

	return count, nil
}
