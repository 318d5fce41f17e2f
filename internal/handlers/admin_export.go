// SPDX-License-Identifier: MIT
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/backup"
	"github.com/thatcatcamp/menukitty/internal/config"
)

// exportRestaurant streams a gzip archive of the signed-in restaurant:
// theme, branding, text sizes, menu and media metadata.
func (s *Server) exportRestaurant(c *gin.Context) {
	r := restaurantOf(c)

	exporter := backup.NewRestaurantExporter(s.db, config.GetString("backups.path"))
	exp, err := exporter.Build(c.Request.Context(), r)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backup.Filename(r.Slug, exp.ExportedAt)))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := backup.WriteArchive(c.Writer, exp); err != nil {
		s.log.Error().Err(err).Str("restaurant", r.Slug).Msg("Export failed")
	}
}
