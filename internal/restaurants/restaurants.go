// SPDX-License-Identifier: MIT
package restaurants

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("restaurant not found")
	ErrSlugTaken   = errors.New("slug already in use")
	ErrInvalidSlug = errors.New("slug must be 2-63 lowercase letters, digits or hyphens, not starting or ending with a hyphen")
	ErrReserved    = errors.New("slug is reserved")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// reserved slugs collide with top-level routes or are confusing in URLs.
var reserved = map[string]bool{
	"admin": true, "api": true, "assets": true, "health": true,
	"metrics": true, "static": true, "www": true, "r": true,
}

// ValidateSlug checks that slug can be used in a storefront URL.
func ValidateSlug(slug string) error {
	if len(slug) < 2 || !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	if reserved[slug] {
		return ErrReserved
	}
	return nil
}

// Create creates a new restaurant with an admin PIN
func Create(db *gorm.DB, slug, name, pin string) (*models.Restaurant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = slug
	}

	// Slugs of soft-deleted restaurants stay taken so old links never
	// point at a different tenant.
	var existing models.Restaurant
	if err := db.Unscoped().Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		return nil, err
	}

	r := &models.Restaurant{
		Slug:            slug,
		Name:            strings.TrimSpace(name),
		PINHash:         hash,
		DefaultLanguage: "en",
	}
	if err := db.Create(r).Error; err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	return r, nil
}

// GetBySlug retrieves a restaurant by slug
func GetBySlug(db *gorm.DB, slug string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := db.Where("slug = ?", strings.ToLower(slug)).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// GetByID retrieves a restaurant by ID
func GetByID(db *gorm.DB, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := db.First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// List returns all restaurants ordered by slug
func List(db *gorm.DB) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := db.Order("slug").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return out, nil
}

// Update changes the display fields of a restaurant.
type Update struct {
	Name            *string          `json:"name"`
	DefaultLanguage *string          `json:"defaultLanguage"`
	NotifyEmail     *string          `json:"notifyEmail"`
	Tagline         models.Localized `json:"tagline"`
	LogoMediaID     *string          `json:"logoMediaId"`
}

// Apply saves the non-nil fields of u.
func Apply(db *gorm.DB, id uint, u Update) (*models.Restaurant, error) {
	r, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		r.Name = strings.TrimSpace(*u.Name)
	}
	if u.DefaultLanguage != nil && *u.DefaultLanguage != "" {
		r.DefaultLanguage = *u.DefaultLanguage
	}
	if u.NotifyEmail != nil {
		r.NotifyEmail = strings.TrimSpace(*u.NotifyEmail)
	}
	if u.Tagline != nil {
		r.Tagline = u.Tagline
	}
	if u.LogoMediaID != nil {
		if *u.LogoMediaID == "" {
			r.LogoMediaID = nil
		} else {
			r.LogoMediaID = u.LogoMediaID
		}
	}
	if err := db.Save(r).Error; err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	return r, nil
}

// SetPIN replaces the admin PIN
func SetPIN(db *gorm.DB, id uint, pin string) error {
	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}
	result := db.Model(&models.Restaurant{}).Where("id = ?", id).Update("pin_hash", hash)
	if result.Error != nil {
		return fmt.Errorf("failed to set PIN: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a restaurant
func Delete(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Restaurant{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete restaurant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load restaurant: %w", err)
}
