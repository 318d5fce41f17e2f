// SPDX-License-Identifier: MIT
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/metrics"
	"github.com/thatcatcamp/menukitty/internal/middleware"
)

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger())
	r.Use(metrics.Middleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	if len(s.blockedIPs) > 0 {
		r.Use(middleware.IPFilterMiddleware(s.blockedIPs))
	}

	r.GET("/health", s.health)
	if s.metricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/", s.index)
	r.GET("/assets/*name", serveAsset)

	rest := r.Group("/r/:slug", middleware.RestaurantResolution(s.db))
	{
		// Storefront
		rest.GET("/", s.welcomePage)
		rest.GET("/menu", s.menuPage)
		rest.GET("/feedback", s.feedbackPage)
		rest.POST("/feedback", middleware.RateLimit(s.feedbackLimiter), s.submitFeedback)
		rest.GET("/theme.css", s.themeCSS)
		rest.GET("/media/:id", s.serveMedia)
		rest.GET("/media/:id/thumb", s.serveThumbnail)

		// Public API
		api := rest.Group("/api")
		api.GET("/theme", s.getTheme)
		api.GET("/theme/vars", s.getThemeVars)
		api.GET("/theme/palette", s.getPalette)
		api.GET("/theme/presets", s.getPresets)
		api.GET("/theme/events", s.themeEvents)
		api.GET("/theme/ws", s.themeSocket)
		api.GET("/menu", s.getMenu)
		api.GET("/menu/search", s.searchMenu)

		// Session
		rest.GET("/admin/login", s.loginPage)
		rest.POST("/admin/login", middleware.RateLimit(s.loginLimiter), s.login)
		rest.POST("/admin/logout", s.logout)

		// Admin pages
		pages := rest.Group("/admin", auth.RequireAdminPage(), middleware.CSRFMiddleware())
		pages.GET("", s.dashboardPage)
		pages.GET("/theme", s.themeEditorPage)
		pages.GET("/menu", s.menuEditorPage)
		pages.GET("/media", s.mediaPage)
		pages.GET("/feedback", s.feedbackListPage)

		// Admin API
		admin := rest.Group("/api/admin", auth.RequireAdmin(), middleware.CSRFMiddleware())
		admin.PUT("/theme", s.putTheme)
		admin.POST("/theme/preview", s.previewTheme)
		admin.GET("/branding", s.getBranding)
		admin.PUT("/branding", s.putBranding)
		admin.GET("/ui-settings", s.getUISettings)
		admin.PUT("/ui-settings", s.putUISettings)

		admin.GET("/settings", s.getSettings)
		admin.PUT("/settings", s.putSettings)
		admin.PUT("/pin", s.putPIN)

		admin.GET("/menu", s.getAdminMenu)
		admin.POST("/sections", s.createSection)
		admin.PUT("/sections/:id", s.updateSection)
		admin.DELETE("/sections/:id", s.deleteSection)
		admin.POST("/categories", s.createCategory)
		admin.PUT("/categories/:id", s.updateCategory)
		admin.DELETE("/categories/:id", s.deleteCategory)
		admin.POST("/items", s.createItem)
		admin.PUT("/items/:id", s.updateItem)
		admin.PUT("/items/:id/availability", s.setItemAvailability)
		admin.DELETE("/items/:id", s.deleteItem)
		admin.POST("/reorder", s.reorder)
		admin.POST("/move", s.move)

		admin.GET("/media", s.listMedia)
		admin.POST("/media", s.uploadMedia)
		admin.DELETE("/media/:id", s.deleteMedia)

		admin.GET("/feedback", s.listFeedback)
		admin.DELETE("/feedback/:id", s.deleteFeedback)

		admin.GET("/export", s.exportRestaurant)
	}

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not found")
	})

	return r
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "menukitty\n\nMenus live under /r/<restaurant>/\n")
}
