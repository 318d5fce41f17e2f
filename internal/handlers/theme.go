// SPDX-License-Identifier: MIT
package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/palette"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

// paletteResponse is the derivation of one background, with the properties
// a browser needs to preview it.
type paletteResponse struct {
	AppBg   string         `json:"appBg"`
	Hex     string         `json:"hex"`
	IsLight bool           `json:"isLight"`
	Scheme  palette.Scheme `json:"scheme"`
	Vars    themes.Vars    `json:"vars"`
	CSS     string         `json:"css"`
}

func (s *Server) paletteFor(appBg string) paletteResponse {
	hex := palette.NormalizeToHex(appBg)
	scheme, css := s.themes.Preview(appBg)
	return paletteResponse{
		AppBg:   appBg,
		Hex:     hex,
		IsLight: palette.IsLight(hex),
		Scheme:  scheme,
		Vars:    themes.VarsOf(themes.ThemeView{AppBg: appBg}),
		CSS:     css,
	}
}

// getTheme answers GET /api/theme with the persisted theme.
func (s *Server) getTheme(c *gin.Context) {
	view, err := s.themes.Theme(c.Request.Context(), restaurantOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, themes.Envelope{Theme: view})
}

// getThemeVars answers with the theme and every property derived from it,
// so the browser script never derives colors itself.
func (s *Server) getThemeVars(c *gin.Context) {
	view, err := s.themes.Theme(c.Request.Context(), restaurantOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, themes.VarsOf(view))
}

// getPalette derives the palette of ?bg= without touching any theme.
func (s *Server) getPalette(c *gin.Context) {
	bg := strings.TrimSpace(c.Query("bg"))
	if bg == "" {
		jsonError(c, http.StatusBadRequest, "bg is required")
		return
	}
	c.JSON(http.StatusOK, s.paletteFor(bg))
}

func (s *Server) getPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": themes.ListPresets()})
}

// themeCSS serves theme, brand colors and UI settings as one stylesheet.
func (s *Server) themeCSS(c *gin.Context) {
	doc, _, err := s.themes.Render(c.Request.Context(), restaurantOf(c))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to render theme stylesheet")
		c.String(http.StatusInternalServerError, "/* theme unavailable */")
		return
	}

	css := doc.String()
	sum := sha256.Sum256([]byte(css))
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	c.Header("Cache-Control", "no-cache")
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

// putTheme saves the theme and announces it to every open page.
func (s *Server) putTheme(c *gin.Context) {
	r := restaurantOf(c)

	var in themes.ThemeInput
	if !bindJSON(c, &in) {
		return
	}

	if in.BackgroundImageMediaID != nil {
		id := strings.TrimSpace(*in.BackgroundImageMediaID)
		if id == "" {
			in.BackgroundImageMediaID = nil
		} else if _, err := s.media.Get(c.Request.Context(), r.ID, id); err != nil {
			if errors.Is(err, media.ErrNotFound) {
				validationFailed(c, map[string]string{"backgroundImageMediaId": "unknown media"})
				return
			}
			s.fail(c, err)
			return
		} else {
			in.BackgroundImageMediaID = &id
		}
	}

	view, err := s.themes.SaveTheme(c.Request.Context(), r, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, themes.Envelope{Theme: view})
}

// previewTheme derives a background for the editor without saving it.
func (s *Server) previewTheme(c *gin.Context) {
	var in struct {
		AppBg string `json:"appBg"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if strings.TrimSpace(in.AppBg) == "" {
		s.fail(c, themes.ErrInvalidColor)
		return
	}
	c.JSON(http.StatusOK, s.paletteFor(in.AppBg))
}

func (s *Server) getBranding(c *gin.Context) {
	b, err := s.themes.Store().GetBranding(c.Request.Context(), restaurantOf(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branding": b})
}

func (s *Server) putBranding(c *gin.Context) {
	var patch themes.Branding
	if !bindJSON(c, &patch) {
		return
	}
	b, err := s.themes.Store().PutBranding(c.Request.Context(), restaurantOf(c).ID, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branding": b})
}

func (s *Server) getUISettings(c *gin.Context) {
	ui, err := s.themes.Store().GetUISettings(c.Request.Context(), restaurantOf(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uiSettings": ui})
}

// putUISettings updates the sizes present in the body; omitted fields keep
// their stored values. Any out-of-range field rejects the whole update
// with 422.
func (s *Server) putUISettings(c *gin.Context) {
	id := restaurantOf(c).ID
	cur, err := s.themes.Store().GetUISettings(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	in := *cur
	if !bindJSON(c, &in) {
		return
	}
	ui, err := s.themes.Store().PutUISettings(c.Request.Context(), id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uiSettings": ui})
}
