// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func resolve(db *gorm.DB, slug string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/r/"+slug+"/menu", nil)
	c.Params = gin.Params{{Key: "slug", Value: slug}}
	RestaurantResolution(db)(c)
	return c, w
}

func TestRestaurantResolutionBySlug(t *testing.T) {
	ClearRestaurantCache()
	db := setupTestDB(t)
	db.Create(&models.Restaurant{Slug: "pasta", Name: "Pasta"})

	c, _ := resolve(db, "pasta")

	r := CurrentRestaurant(c)
	if r == nil {
		t.Fatal("Restaurant not set in context")
	}
	if r.Slug != "pasta" {
		t.Errorf("Expected slug 'pasta', got '%s'", r.Slug)
	}
	if slug := c.GetString("restaurant_slug"); slug != "pasta" {
		t.Errorf("Expected restaurant_slug 'pasta', got '%s'", slug)
	}
}

func TestRestaurantResolutionNotFound(t *testing.T) {
	ClearRestaurantCache()
	db := setupTestDB(t)

	c, w := resolve(db, "nonexistent")

	if w.Code != 404 {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if CurrentRestaurant(c) != nil {
		t.Error("Restaurant should not be set for unknown slug")
	}
}

func TestRestaurantResolutionCache(t *testing.T) {
	ClearRestaurantCache()
	db := setupTestDB(t)
	r := models.Restaurant{Slug: "cached", Name: "Before"}
	db.Create(&r)

	resolve(db, "cached")

	// A rename is not visible until the entry is invalidated
	db.Model(&r).Update("name", "After")

	c, _ := resolve(db, "cached")
	if got := CurrentRestaurant(c).Name; got != "Before" {
		t.Errorf("Expected cached name 'Before', got '%s'", got)
	}

	InvalidateRestaurant("cached")

	c, _ = resolve(db, "cached")
	if got := CurrentRestaurant(c).Name; got != "After" {
		t.Errorf("Expected fresh name 'After', got '%s'", got)
	}
}
