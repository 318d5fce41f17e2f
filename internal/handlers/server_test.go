// SPDX-License-Identifier: MIT
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPIN = "1234"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "menukitty-handlers")
	if err != nil {
		panic(err)
	}
	if err := config.InitConfig(filepath.Join(dir, "config.yaml")); err != nil {
		panic(err)
	}
	_ = config.Set("auth.bcrypt_cost", 4)
	_ = config.Set("backups.path", filepath.Join(dir, "backups"))
	os.Setenv(auth.EnvJWTSecret, "handlers-test-secret")

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// testEnv is one server over a fresh database with the restaurant "pasta".
type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	hub    *broadcast.Hub
	server *Server
	router *gin.Engine
	pasta  *models.Restaurant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.ClearRestaurantCache()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	pasta, err := restaurants.Create(db, "pasta", "Pasta Bar", testPIN)
	require.NoError(t, err)

	loginLimiter := middleware.NewRateLimiter(1000, time.Minute)
	feedbackLimiter := middleware.NewRateLimiter(1000, time.Minute)
	t.Cleanup(loginLimiter.Stop)
	t.Cleanup(feedbackLimiter.Stop)

	hub := broadcast.NewHub()
	srv, err := NewServer(Deps{
		DB:              db,
		Themes:          themes.NewService(themes.NewStore(db), hub),
		Hub:             hub,
		LoginLimiter:    loginLimiter,
		FeedbackLimiter: feedbackLimiter,
	})
	require.NoError(t, err)

	return &testEnv{t: t, db: db, hub: hub, server: srv, router: srv.Router(), pasta: pasta}
}

// session holds the cookies of a logged-in admin.
type session struct {
	cookies []*http.Cookie
	csrf    string
}

func (e *testEnv) login(slug string) *session {
	e.t.Helper()
	rec := e.request(http.MethodPost, "/r/"+slug+"/admin/login", jsonBody(e.t, gin.H{"pin": testPIN}), "application/json", nil)
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	s := &session{cookies: rec.Result().Cookies()}
	for _, c := range s.cookies {
		if c.Name == middleware.CSRFCookieName {
			s.csrf = c.Value
		}
	}
	require.NotEmpty(e.t, s.csrf)
	return s
}

func (e *testEnv) request(method, path string, body io.Reader, contentType string, s *session) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s != nil {
		for _, c := range s.cookies {
			req.AddCookie(c)
		}
		req.Header.Set(middleware.CSRFHeaderName, s.csrf)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.request(http.MethodGet, path, nil, "", nil)
}

func (e *testEnv) conditionalGet(path, etag string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// admin sends a JSON request with the session and CSRF header.
func (e *testEnv) admin(s *session, method, path string, body interface{}) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		rd = jsonBody(e.t, body)
	}
	return e.request(method, path, rd, "application/json", s)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestNewServerRequiresDeps(t *testing.T) {
	_, err := NewServer(Deps{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestUnknownRestaurant(t *testing.T) {
	e := newTestEnv(t)
	rec := e.get("/r/nobody/api/theme")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	e := newTestEnv(t)
	rec := e.get("/r/pasta/api/theme")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAssets(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/assets/base.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), "var(--app-bg)")
	assert.Contains(t, rec.Body.String(), ".item-card")

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, http.StatusNotModified, e.conditionalGet("/assets/base.css", etag).Code)

	rec = e.get("/assets/themesync.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")

	assert.Equal(t, http.StatusNotFound, e.get("/assets/missing.js").Code)
	assert.Equal(t, http.StatusNotFound, e.get("/assets/../server.go").Code)
}

func TestThemeScriptCachesOnlyRawColor(t *testing.T) {
	e := newTestEnv(t)
	rec := e.get("/assets/themesync.js")
	require.Equal(t, http.StatusOK, rec.Code)
	js := rec.Body.String()

	writes := regexp.MustCompile(`setItem\(([^)]*)\)`).FindAllStringSubmatch(js, -1)
	require.Len(t, writes, 1)
	assert.Equal(t, "cacheKey, appBg", writes[0][1])
	assert.Contains(t, js, `writeCache(vars.theme.appBg)`)
	assert.NotContains(t, js, "JSON.stringify")
}
