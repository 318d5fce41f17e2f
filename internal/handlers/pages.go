// SPDX-License-Identifier: MIT
package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/i18n"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"welcome",
	"menu",
	"feedback",
	"login",
	"admin_dashboard",
	"admin_theme",
	"admin_menu",
	"admin_media",
	"admin_feedback",
}

var templateFuncs = template.FuncMap{
	"price": formatPrice,
	"mediaURL": func(slug string, id *string) string {
		if id == nil || *id == "" {
			return ""
		}
		return themes.MediaURL(slug, *id)
	},
	"thumbURL": func(slug, id string) string {
		return themes.MediaURL(slug, id) + "/thumb"
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// parsePages builds one template set per page, each holding the shared
// layout and the page's "content" block.
func parsePages() (map[string]*template.Template, error) {
	base, err := template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// syncScript configures the browser theme sync script.
type syncScript struct {
	Base       string
	IntervalMS int64
	RetryMS    int64
	CacheKey   string
	SavedEvent string
}

// pageData is what every page template receives.
type pageData struct {
	Title      string
	Restaurant *models.Restaurant
	Lang       string
	ThemeCSS   template.CSS
	AppBg      string
	Sync       syncScript
	CSRFToken  string
	Admin      bool
	AdminArea  bool
	Active     string
	Notice     string
	Error      string
	Body       interface{}
}

// T selects the text of l for the page language.
func (p *pageData) T(l models.Localized) string {
	return i18n.Select(l, p.Lang, p.Restaurant.DefaultLanguage)
}

// Languages lists the languages offered by the language switch.
func (p *pageData) Languages() []string {
	langs := i18n.Languages(p.Restaurant.Tagline)
	if len(langs) == 0 {
		return []string{p.Restaurant.DefaultLanguage}
	}
	return langs
}

// newPage renders the restaurant's theme into the page head so the first
// paint already shows the saved colors.
func (s *Server) newPage(c *gin.Context, title, active string) (*pageData, error) {
	r := restaurantOf(c)
	doc, view, err := s.themes.Render(c.Request.Context(), r)
	if err != nil {
		return nil, err
	}

	return &pageData{
		Title:      title,
		Restaurant: r,
		Lang:       i18n.FromRequest(c, r.DefaultLanguage),
		ThemeCSS:   template.CSS(doc.String()),
		AppBg:      view.AppBg,
		Sync: syncScript{
			Base:       "/r/" + r.Slug,
			IntervalMS: s.pollInterval.Milliseconds(),
			RetryMS:    s.retryDelay.Milliseconds(),
			CacheKey:   themes.CacheKey,
			SavedEvent: themes.ThemeSavedEvent,
		},
		CSRFToken: middleware.GetCSRFToken(c),
		Admin:     auth.IsAdmin(c),
		Active:    active,
	}, nil
}

// newAdminPage is newPage for the admin portal.
func (s *Server) newAdminPage(c *gin.Context, title, active string) (*pageData, error) {
	p, err := s.newPage(c, title, active)
	if err != nil {
		return nil, err
	}
	p.AdminArea = true
	p.Admin = true
	return p, nil
}

func (s *Server) renderPage(c *gin.Context, status int, name string, p *pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.log.Error().Str("page", name).Msg("Unknown page template")
		c.String(http.StatusInternalServerError, "Page not found")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Render(status, render.HTML{Template: tmpl, Name: "layout", Data: p})
}

// pageError answers a failed page render with a plain error page.
func (s *Server) pageError(c *gin.Context, err error) {
	s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to render page")
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func formatPrice(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
