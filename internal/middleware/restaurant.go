// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
	"gorm.io/gorm"
)

// CacheEntry represents a cached restaurant with expiration
type CacheEntry struct {
	Restaurant *models.Restaurant
	ExpiresAt  time.Time
}

var (
	restaurantCache sync.Map
	cacheTTL        = 60 * time.Second
)

// RestaurantResolution resolves the restaurant named by the :slug path
// parameter and stores it in the context as "restaurant", with its slug as
// "restaurant_slug".
func RestaurantResolution(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.ToLower(c.Param("slug"))
		if slug == "" {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		// Check cache first
		if entry, ok := restaurantCache.Load(slug); ok {
			cacheEntry := entry.(CacheEntry)
			if time.Now().Before(cacheEntry.ExpiresAt) {
				setRestaurant(c, cacheEntry.Restaurant)
				c.Next()
				return
			}
			// Cache expired, remove it
			restaurantCache.Delete(slug)
		}

		r, err := restaurants.GetBySlug(db, slug)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		restaurantCache.Store(slug, CacheEntry{
			Restaurant: r,
			ExpiresAt:  time.Now().Add(cacheTTL),
		})

		setRestaurant(c, r)
		c.Next()
	}
}

func setRestaurant(c *gin.Context, r *models.Restaurant) {
	c.Set("restaurant", r)
	c.Set("restaurant_slug", r.Slug)
}

// CurrentRestaurant returns the restaurant resolved for this request.
func CurrentRestaurant(c *gin.Context) *models.Restaurant {
	val, exists := c.Get("restaurant")
	if !exists {
		return nil
	}
	r, _ := val.(*models.Restaurant)
	return r
}

// InvalidateRestaurant drops one slug from the cache after its restaurant
// row changed.
func InvalidateRestaurant(slug string) {
	restaurantCache.Delete(strings.ToLower(slug))
}

// ClearRestaurantCache clears the entire restaurant cache (useful for testing)
func ClearRestaurantCache() {
	restaurantCache.Range(func(key, _ interface{}) bool {
		restaurantCache.Delete(key)
		return true
	})
}
