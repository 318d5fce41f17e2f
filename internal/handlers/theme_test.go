// SPDX-License-Identifier: MIT
package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

func TestGetThemeDefault(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/r/pasta/api/theme")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var env themes.Envelope
	decode(t, rec, &env)
	assert.Equal(t, themes.DefaultAppBg, env.Theme.AppBg)
	assert.Nil(t, env.Theme.BackgroundImageMediaID)
}

func TestGetThemeVars(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/r/pasta/api/theme/vars")
	require.Equal(t, http.StatusOK, rec.Code)

	var vars themes.Vars
	decode(t, rec, &vars)
	assert.Equal(t, themes.DefaultAppBg, vars.Theme.AppBg)
	assert.Equal(t, themes.DefaultAppBg, vars.Root[themes.PropAppBg])
	assert.Contains(t, vars.Remove, themes.PropAppBgImage)
}

func TestGetPalette(t *testing.T) {
	e := newTestEnv(t)

	t.Run("light background", func(t *testing.T) {
		rec := e.get("/r/pasta/api/theme/palette?bg=%23F5F0E6")
		require.Equal(t, http.StatusOK, rec.Code)

		var out paletteResponse
		decode(t, rec, &out)
		assert.Equal(t, "#F5F0E6", out.Hex)
		assert.True(t, out.IsLight)
		assert.NotEmpty(t, out.Scheme.TextPrimary)
		assert.Contains(t, out.CSS, themes.PropAppBg)
	})

	t.Run("rgb input is normalized", func(t *testing.T) {
		rec := e.get("/r/pasta/api/theme/palette?bg=rgb(64,8,16)")
		require.Equal(t, http.StatusOK, rec.Code)

		var out paletteResponse
		decode(t, rec, &out)
		assert.Equal(t, "#400810", out.Hex)
		assert.False(t, out.IsLight)
	})

	t.Run("missing bg", func(t *testing.T) {
		rec := e.get("/r/pasta/api/theme/palette")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetPresets(t *testing.T) {
	e := newTestEnv(t)
	rec := e.get("/r/pasta/api/theme/presets")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Presets []themes.Preset `json:"presets"`
	}
	decode(t, rec, &out)
	assert.NotEmpty(t, out.Presets)
}

func TestPutThemeRequiresSession(t *testing.T) {
	e := newTestEnv(t)

	rec := e.request(http.MethodPut, "/r/pasta/api/admin/theme",
		jsonBody(t, gin.H{"appBg": "#123456"}), "application/json", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"please log in again"}`, rec.Body.String())
}

func TestPutThemeRejectsBadCSRF(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")
	s.csrf = "forged"

	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/theme", gin.H{"appBg": "#123456"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"invalid CSRF token"}`, rec.Body.String())
}

func TestSessionIsScopedToRestaurant(t *testing.T) {
	e := newTestEnv(t)
	_, err := restaurants.Create(e.db, "tacos", "Tacos", "9876")
	require.NoError(t, err)

	s := e.login("pasta")
	rec := e.admin(s, http.MethodPut, "/r/tacos/api/admin/theme", gin.H{"appBg": "#123456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPutThemeSavesAndAnnounces(t *testing.T) {
	e := newTestEnv(t)
	events, cancel := e.hub.Subscribe("pasta")
	defer cancel()

	s := e.login("pasta")
	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/theme", gin.H{"appBg": "#123456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env themes.Envelope
	decode(t, rec, &env)
	assert.Equal(t, "#123456", env.Theme.AppBg)

	select {
	case evt := <-events:
		assert.Equal(t, "pasta", evt.Restaurant)
		assert.Equal(t, "#123456", evt.AppBg)
	case <-time.After(time.Second):
		t.Fatal("no theme event published")
	}

	decode(t, e.get("/r/pasta/api/theme"), &env)
	assert.Equal(t, "#123456", env.Theme.AppBg)
}

func TestPutThemeRejectsBlankColor(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/theme", gin.H{"appBg": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutThemeRejectsUnknownMedia(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/theme",
		gin.H{"appBg": "#123456", "backgroundImageMediaId": "missing"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var out struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &out)
	assert.Contains(t, out.Fields, "backgroundImageMediaId")
}

func TestPreviewThemeDoesNotSave(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPost, "/r/pasta/api/admin/theme/preview", gin.H{"appBg": "#F5F0E6"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out paletteResponse
	decode(t, rec, &out)
	assert.True(t, out.IsLight)

	var env themes.Envelope
	decode(t, e.get("/r/pasta/api/theme"), &env)
	assert.Equal(t, themes.DefaultAppBg, env.Theme.AppBg)
}

func TestUISettings(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodGet, "/r/pasta/api/admin/ui-settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		UISettings models.UISettings `json:"uiSettings"`
	}
	decode(t, rec, &out)
	assert.Equal(t, 22, out.UISettings.SectionTitleSize)

	t.Run("out of range rejects everything", func(t *testing.T) {
		bad := models.DefaultUISettings(0)
		bad.ItemTitleSize = 20
		bad.SectionTitleSize = 99
		rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/ui-settings", bad)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		decode(t, e.admin(s, http.MethodGet, "/r/pasta/api/admin/ui-settings", nil), &out)
		assert.Equal(t, 16, out.UISettings.ItemTitleSize)
	})

	t.Run("valid update", func(t *testing.T) {
		good := models.DefaultUISettings(0)
		good.WelcomeTitleSize = 34
		rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/ui-settings", good)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &out)
		assert.Equal(t, 34, out.UISettings.WelcomeTitleSize)
	})

	t.Run("single field keeps the rest", func(t *testing.T) {
		for _, size := range []int{16, 80} {
			rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/ui-settings", map[string]int{"headerLogoSize": size})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			decode(t, rec, &out)
			assert.Equal(t, size, out.UISettings.HeaderLogoSize)
			assert.Equal(t, 22, out.UISettings.SectionTitleSize)
			assert.Equal(t, 34, out.UISettings.WelcomeTitleSize)
		}

		rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/ui-settings", map[string]int{"headerLogoSize": 81})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		decode(t, e.admin(s, http.MethodGet, "/r/pasta/api/admin/ui-settings", nil), &out)
		assert.Equal(t, 80, out.UISettings.HeaderLogoSize)
	})
}

func TestThemeCSSETag(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/r/pasta/theme.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), themes.DefaultAppBg)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	cached := e.conditionalGet("/r/pasta/theme.css", etag)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	s := e.login("pasta")
	require.Equal(t, http.StatusOK,
		e.admin(s, http.MethodPut, "/r/pasta/api/admin/theme", gin.H{"appBg": "#F5F0E6"}).Code)

	changed := e.conditionalGet("/r/pasta/theme.css", etag)
	assert.Equal(t, http.StatusOK, changed.Code)
	assert.NotEqual(t, etag, changed.Header().Get("ETag"))
}
