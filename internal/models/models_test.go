// SPDX-License-Identifier: MIT
package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func TestCreateRestaurant(t *testing.T) {
	db := setupTestDB(t)

	r := Restaurant{Slug: "pasta-place", Name: "Pasta Place"}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("Failed to create restaurant: %v", err)
	}
	if r.ID == 0 {
		t.Error("Restaurant ID should be set after creation")
	}

	var got Restaurant
	if err := db.First(&got, r.ID).Error; err != nil {
		t.Fatalf("Failed to load restaurant: %v", err)
	}
	if got.DefaultLanguage != "en" {
		t.Errorf("expected default language 'en', got %q", got.DefaultLanguage)
	}
}

func TestRestaurantSlugUnique(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Restaurant{Slug: "dup", Name: "One"}).Error; err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := db.Create(&Restaurant{Slug: "dup", Name: "Two"}).Error; err == nil {
		t.Error("expected unique constraint violation on slug")
	}
}

func TestLocalizedRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	section := Section{
		RestaurantID: 1,
		Name:         Localized{"en": "Drinks", "de": "Getränke"},
	}
	if err := db.Create(&section).Error; err != nil {
		t.Fatalf("create section: %v", err)
	}

	var got Section
	if err := db.First(&got, section.ID).Error; err != nil {
		t.Fatalf("load section: %v", err)
	}
	if got.Name["de"] != "Getränke" || got.Name["en"] != "Drinks" {
		t.Errorf("unexpected name map %v", got.Name)
	}
}

func TestLocalizedScanNil(t *testing.T) {
	var l Localized
	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if l == nil || len(l) != 0 {
		t.Errorf("expected empty map, got %v", l)
	}
	if err := l.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}

func TestThemeOnePerRestaurant(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Theme{RestaurantID: 7, AppBg: DefaultAppBg}).Error; err != nil {
		t.Fatalf("create theme: %v", err)
	}
	if err := db.Create(&Theme{RestaurantID: 7, AppBg: "#FFFFFF"}).Error; err == nil {
		t.Error("expected unique violation for second theme row")
	}
}

func TestMediaBlobStored(t *testing.T) {
	db := setupTestDB(t)

	m := Media{
		ID:           "0b8f7f0e-5d0a-4a43-9a3e-8f7c7f8e1a11",
		RestaurantID: 1,
		Filename:     "cat.png",
		MimeType:     "image/png",
		Size:         4,
		Data:         []byte{1, 2, 3, 4},
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}

	var got Media
	if err := db.First(&got, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("load media: %v", err)
	}
	if len(got.Data) != 4 || got.Data[3] != 4 {
		t.Errorf("blob not preserved: %v", got.Data)
	}
}

func TestDefaultUISettings(t *testing.T) {
	s := DefaultUISettings(3)
	if s.RestaurantID != 3 || s.HeaderLogoSize != 32 || s.SectionTitleSize != 22 {
		t.Errorf("unexpected defaults: %+v", s)
	}
}
