// SPDX-License-Identifier: MIT
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

// mediaJSON is a media row with its storefront URLs.
type mediaJSON struct {
	models.Media
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl"`
}

func withURLs(slug string, m models.Media) mediaJSON {
	u := themes.MediaURL(slug, m.ID)
	return mediaJSON{Media: m, URL: u, ThumbURL: u + "/thumb"}
}

func maxUploadBytes() int64 {
	mb := config.GetInt("media.max_upload_mb")
	if mb <= 0 {
		mb = 8
	}
	return int64(mb) << 20
}

func (s *Server) listMedia(c *gin.Context) {
	r := restaurantOf(c)
	list, err := s.media.List(c.Request.Context(), r.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]mediaJSON, 0, len(list))
	for _, m := range list {
		out = append(out, withURLs(r.Slug, m))
	}
	c.JSON(http.StatusOK, gin.H{"media": out})
}

// uploadMedia stores the multipart "file" field as a blob.
func (s *Server) uploadMedia(c *gin.Context) {
	r := restaurantOf(c)

	file, err := c.FormFile("file")
	if err != nil {
		jsonError(c, http.StatusBadRequest, "file is required")
		return
	}
	limit := maxUploadBytes()
	if file.Size > limit {
		s.fail(c, media.ErrTooLarge)
		return
	}

	src, err := file.Open()
	if err != nil {
		jsonError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(data)) > limit {
		s.fail(c, media.ErrTooLarge)
		return
	}

	m, err := s.media.Save(c.Request.Context(), r.ID, file.Filename, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"media": withURLs(r.Slug, *m)})
}

// deleteMedia refuses to delete referenced media with 409 unless
// ?force=true, which first removes every reference. Removing the theme's
// background is announced to open pages like any theme save.
func (s *Server) deleteMedia(c *gin.Context) {
	r := restaurantOf(c)
	ctx := c.Request.Context()
	id := c.Param("id")

	if c.Query("force") == "true" {
		if _, err := s.media.Get(ctx, r.ID, id); err != nil {
			s.fail(c, err)
			return
		}
		if _, err := s.themes.DetachMedia(ctx, r, id); err != nil {
			s.fail(c, err)
			return
		}
		if err := s.media.Detach(ctx, r.ID, id); err != nil {
			s.fail(c, err)
			return
		}
		middleware.InvalidateRestaurant(r.Slug)
	}

	if err := s.media.Delete(ctx, r.ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
