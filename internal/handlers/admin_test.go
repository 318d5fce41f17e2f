// SPDX-License-Identifier: MIT
package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/models"
)

func postForm(e *testEnv, path string, form url.Values, s *session) *httptest.ResponseRecorder {
	return e.request(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", s)
}

func TestLoginJSON(t *testing.T) {
	e := newTestEnv(t)

	t.Run("wrong pin", func(t *testing.T) {
		rec := e.request(http.MethodPost, "/r/pasta/admin/login",
			jsonBody(t, gin.H{"pin": "0000"}), "application/json", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid PIN"}`, rec.Body.String())
	})

	t.Run("correct pin", func(t *testing.T) {
		rec := e.request(http.MethodPost, "/r/pasta/admin/login",
			jsonBody(t, gin.H{"pin": testPIN}), "application/json", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true,"restaurant":"pasta"}`, rec.Body.String())

		var names []string
		for _, c := range rec.Result().Cookies() {
			names = append(names, c.Name)
		}
		assert.Contains(t, names, auth.SessionCookie)
	})
}

func TestLoginForm(t *testing.T) {
	e := newTestEnv(t)

	rec := postForm(e, "/r/pasta/admin/login", url.Values{"pin": {"0000"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid PIN")

	rec = postForm(e, "/r/pasta/admin/login", url.Values{"pin": {testPIN}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/r/pasta/admin", rec.Header().Get("Location"))
}

func TestAdminPages(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/r/pasta/admin")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/r/pasta/admin/login", rec.Header().Get("Location"))

	s := e.login("pasta")
	for _, path := range []string{"/r/pasta/admin", "/r/pasta/admin/theme", "/r/pasta/admin/menu", "/r/pasta/admin/media", "/r/pasta/admin/feedback"} {
		rec := e.request(http.MethodGet, path, nil, "", s)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}

	rec = e.request(http.MethodGet, "/r/pasta/admin/login", nil, "", s)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPost, "/r/pasta/admin/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestSettings(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/settings", gin.H{
		"name":    "Pasta & Co",
		"tagline": gin.H{"en": "Fresh daily", "de": "Täglich frisch"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.admin(s, http.MethodPut, "/r/pasta/api/admin/settings", gin.H{
		"tagline": gin.H{"de": ""},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	decode(t, e.admin(s, http.MethodGet, "/r/pasta/api/admin/settings", nil), &out)
	assert.Equal(t, "Pasta & Co", out.Restaurant.Name)
	assert.Equal(t, models.Localized{"en": "Fresh daily"}, out.Restaurant.Tagline)

	rec = e.admin(s, http.MethodPut, "/r/pasta/api/admin/settings", gin.H{"logoMediaId": "missing"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChangePIN(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodPut, "/r/pasta/api/admin/pin", gin.H{"pin": "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.admin(s, http.MethodPut, "/r/pasta/api/admin/pin", gin.H{"pin": "55556666"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.request(http.MethodPost, "/r/pasta/admin/login",
		jsonBody(t, gin.H{"pin": testPIN}), "application/json", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.request(http.MethodPost, "/r/pasta/admin/login",
		jsonBody(t, gin.H{"pin": "55556666"}), "application/json", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBranding(t *testing.T) {
	e := newTestEnv(t)
	s := e.login("pasta")

	rec := e.admin(s, http.MethodGet, "/r/pasta/api/admin/branding", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.admin(s, http.MethodPut, "/r/pasta/api/admin/branding", gin.H{"buttonBg": "#FF6600"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "#FF6600")

	css := e.get("/r/pasta/theme.css")
	assert.Contains(t, css.Body.String(), "#FF6600")
}
