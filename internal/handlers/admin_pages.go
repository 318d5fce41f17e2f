// SPDX-License-Identifier: MIT
package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/palette"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

type dashboardBody struct {
	Sections      int
	Items         int
	MediaCount    int
	FeedbackCount int
	Tagline       string
	LogoID        string
	Media         []models.Media
	Recent        []models.Feedback
}

// dashboardPage shows counts, the restaurant settings form and the latest
// feedback.
func (s *Server) dashboardPage(c *gin.Context) {
	p, err := s.newAdminPage(c, "Dashboard", "dashboard")
	if err != nil {
		s.pageError(c, err)
		return
	}
	ctx := c.Request.Context()
	r := p.Restaurant

	tree, err := s.menu.Tree(ctx, r.ID, false)
	if err != nil {
		s.pageError(c, err)
		return
	}
	mediaList, err := s.media.List(ctx, r.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}
	recent, err := s.feedback.List(ctx, r.ID, 5)
	if err != nil {
		s.pageError(c, err)
		return
	}
	var feedbackCount int64
	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).Where("restaurant_id = ?", r.ID).Count(&feedbackCount).Error; err != nil {
		s.pageError(c, err)
		return
	}

	body := dashboardBody{
		Sections:      len(tree),
		MediaCount:    len(mediaList),
		FeedbackCount: int(feedbackCount),
		Tagline:       r.Tagline[r.DefaultLanguage],
		Media:         mediaList,
		Recent:        recent,
	}
	if r.LogoMediaID != nil {
		body.LogoID = *r.LogoMediaID
	}
	for _, sec := range tree {
		for _, cat := range sec.Categories {
			body.Items += len(cat.Items)
		}
	}

	p.Body = body
	s.renderPage(c, http.StatusOK, "admin_dashboard", p)
}

type brandField struct {
	Key    string
	Value  string
	Number bool
}

type roleSwatch struct {
	Name  string
	Value string
	Color template.CSS
}

type themeEditorBody struct {
	Theme      themes.ThemeView
	ColorValue string
	ImageID    string
	Presets    []*themes.Preset
	Media      []models.Media
	Roles      []roleSwatch
	Branding   []brandField
	UI         []themes.UIField
}

// themeEditorPage is the background, brand color and text size editor.
func (s *Server) themeEditorPage(c *gin.Context) {
	p, err := s.newAdminPage(c, "Theme", "theme")
	if err != nil {
		s.pageError(c, err)
		return
	}
	ctx := c.Request.Context()
	r := p.Restaurant

	view, err := s.themes.Theme(ctx, r)
	if err != nil {
		s.pageError(c, err)
		return
	}
	branding, err := s.themes.Store().GetBranding(ctx, r.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}
	ui, err := s.themes.Store().GetUISettings(ctx, r.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}
	mediaList, err := s.media.List(ctx, r.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}

	body := themeEditorBody{
		Theme:      view,
		ColorValue: colorInputValue(view.AppBg),
		Presets:    themes.ListPresets(),
		Media:      mediaList,
		UI:         themes.UIFields(*ui),
	}
	if view.HasBackgroundImage() {
		body.ImageID = *view.BackgroundImageMediaID
	}

	// Derived values come from palette math, never from user input
	for _, role := range themes.SchemeFor(view.AppBg).Roles() {
		body.Roles = append(body.Roles, roleSwatch{Name: role.Name, Value: role.Value, Color: template.CSS(role.Value)})
	}

	keys := make([]string, 0, len(branding))
	for k := range branding {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := branding[k].(type) {
		case float64:
			body.Branding = append(body.Branding, brandField{Key: k, Value: fmt.Sprint(v), Number: true})
		default:
			body.Branding = append(body.Branding, brandField{Key: k, Value: fmt.Sprint(v)})
		}
	}

	p.Body = body
	s.renderPage(c, http.StatusOK, "admin_theme", p)
}

// colorInputValue converts any stored background to the #rrggbb form an
// <input type="color"> accepts.
func colorInputValue(appBg string) string {
	hex := palette.NormalizeToHex(appBg)
	if _, ok := palette.HexToRGB(hex); !ok {
		return "#000000"
	}
	return hex
}

type menuEditorBody struct {
	Sections []models.Section
	Media    []models.Media
}

func (s *Server) menuEditorPage(c *gin.Context) {
	p, err := s.newAdminPage(c, "Menu", "menu")
	if err != nil {
		s.pageError(c, err)
		return
	}
	ctx := c.Request.Context()

	tree, err := s.menu.Tree(ctx, p.Restaurant.ID, false)
	if err != nil {
		s.pageError(c, err)
		return
	}
	mediaList, err := s.media.List(ctx, p.Restaurant.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}

	p.Body = menuEditorBody{Sections: tree, Media: mediaList}
	s.renderPage(c, http.StatusOK, "admin_menu", p)
}

func (s *Server) mediaPage(c *gin.Context) {
	p, err := s.newAdminPage(c, "Media", "media")
	if err != nil {
		s.pageError(c, err)
		return
	}
	mediaList, err := s.media.List(c.Request.Context(), p.Restaurant.ID)
	if err != nil {
		s.pageError(c, err)
		return
	}
	p.Body = struct{ Media []models.Media }{mediaList}
	s.renderPage(c, http.StatusOK, "admin_media", p)
}

func (s *Server) feedbackListPage(c *gin.Context) {
	p, err := s.newAdminPage(c, "Feedback", "feedback")
	if err != nil {
		s.pageError(c, err)
		return
	}
	list, err := s.feedback.List(c.Request.Context(), p.Restaurant.ID, 200)
	if err != nil {
		s.pageError(c, err)
		return
	}
	p.Body = struct{ Feedback []models.Feedback }{list}
	s.renderPage(c, http.StatusOK, "admin_feedback", p)
}
