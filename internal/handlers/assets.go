// SPDX-License-Identifier: MIT
package handlers

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

//go:embed static
var staticFS embed.FS

type asset struct {
	body        []byte
	contentType string
	etag        string
}

var (
	assetsOnce sync.Once
	assets     map[string]asset
)

// loadAssets reads the embedded static dir once. base.css is the theme base
// stylesheet followed by layout.css.
func loadAssets() map[string]asset {
	assetsOnce.Do(func() {
		assets = make(map[string]asset)
		entries, _ := staticFS.ReadDir("static")
		for _, e := range entries {
			body, err := staticFS.ReadFile("static/" + e.Name())
			if err != nil {
				continue
			}
			assets[e.Name()] = newAsset(e.Name(), body)
		}
		layout := assets["layout.css"].body
		assets["base.css"] = newAsset("base.css", append([]byte(themes.BaseStylesheet+"\n"), layout...))
	})
	return assets
}

func newAsset(name string, body []byte) asset {
	sum := sha256.Sum256(body)
	ct := "application/octet-stream"
	switch path.Ext(name) {
	case ".js":
		ct = "text/javascript; charset=utf-8"
	case ".css":
		ct = "text/css; charset=utf-8"
	}
	return asset{body: body, contentType: ct, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}
}

// serveAsset serves the stylesheets and scripts shared by every restaurant.
func serveAsset(c *gin.Context) {
	name := strings.TrimPrefix(path.Clean(c.Param("name")), "/")
	a, ok := loadAssets()[name]
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Header("ETag", a.etag)
	if c.GetHeader("If-None-Match") == a.etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, a.contentType, a.body)
}
