// SPDX-License-Identifier: MIT
package themes

import (
	"fmt"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/models"
)

const (
	// ThemeSavedEvent is dispatched on the current page right after the
	// admin editor saves a theme.
	ThemeSavedEvent = "menukitty:theme-saved"

	// CacheKey holds the raw appBg string in the client's durable cache.
	CacheKey = "menukitty.appBg"

	// DefaultAppBg is the background of a theme that was never saved.
	DefaultAppBg = models.DefaultAppBg
)

// ThemeView is the wire shape of a theme.
type ThemeView struct {
	AppBg                  string  `json:"appBg"`
	BackgroundImageMediaID *string `json:"backgroundImageMediaId"`
	// BackgroundImageURL is filled in by the server so clients need not
	// know the media route layout.
	BackgroundImageURL string `json:"backgroundImageUrl,omitempty"`
}

// Envelope wraps a ThemeView for GET/PUT responses.
type Envelope struct {
	Theme ThemeView `json:"theme"`
}

// ThemeInput is the body of a theme save.
type ThemeInput struct {
	AppBg                  string  `json:"appBg"`
	BackgroundImageMediaID *string `json:"backgroundImageMediaId"`
}

// HasBackgroundImage reports whether a background image is referenced.
func (t ThemeView) HasBackgroundImage() bool {
	return t.BackgroundImageMediaID != nil && *t.BackgroundImageMediaID != ""
}

// ImageURL returns the URL to load the background image from.
func (t ThemeView) ImageURL() string {
	if t.BackgroundImageURL != "" {
		return t.BackgroundImageURL
	}
	if t.HasBackgroundImage() {
		return *t.BackgroundImageMediaID
	}
	return ""
}

// ViewOf builds the wire shape of a stored theme for restaurant slug.
func ViewOf(t *models.Theme, slug string) ThemeView {
	v := ThemeView{AppBg: t.AppBg, BackgroundImageMediaID: t.BackgroundImageMediaID}
	if v.HasBackgroundImage() {
		v.BackgroundImageURL = MediaURL(slug, *t.BackgroundImageMediaID)
	}
	return v
}

// MediaURL is the storefront path of a media blob.
func MediaURL(slug, mediaID string) string {
	return fmt.Sprintf("/r/%s/media/%s", slug, strings.TrimSpace(mediaID))
}
