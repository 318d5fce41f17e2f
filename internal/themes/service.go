// SPDX-License-Identifier: MIT
package themes

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/metrics"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/palette"
)

// schemes memoizes palette.Generate by normalized hex. Generate is pure, so
// entries never go stale.
var schemes sync.Map

// SchemeFor returns the derived palette for any stored background string.
func SchemeFor(appBg string) palette.Scheme {
	hex := palette.NormalizeToHex(appBg)
	if s, ok := schemes.Load(hex); ok {
		metrics.PaletteCacheHits.Inc()
		return s.(palette.Scheme)
	}
	metrics.PaletteCacheMisses.Inc()
	s := palette.Generate(hex)
	schemes.Store(hex, s)
	return s
}

// Service combines the store with change notification.
type Service struct {
	store *Store
	pub   broadcast.Publisher
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a service. pub may be nil, in which case saves are not
// announced.
func NewService(store *Store, pub broadcast.Publisher) *Service {
	return &Service{
		store: store,
		pub:   pub,
		log:   logging.For("themes"),
		now:   time.Now,
	}
}

// Store returns the underlying store
func (s *Service) Store() *Store {
	return s.store
}

// Theme returns the restaurant's theme, creating the default on first read.
func (s *Service) Theme(ctx context.Context, r *models.Restaurant) (ThemeView, error) {
	t, err := s.store.Get(ctx, r.ID)
	if err != nil {
		return ThemeView{}, err
	}
	return ViewOf(t, r.Slug), nil
}

// SaveTheme persists in and announces the change to every open page of the
// restaurant. A failed announcement is logged; the save still stands.
func (s *Service) SaveTheme(ctx context.Context, r *models.Restaurant, in ThemeInput) (ThemeView, error) {
	t, err := s.store.Put(ctx, r.ID, in)
	if err != nil {
		return ThemeView{}, err
	}
	metrics.ThemeSaves.Inc()

	view := ViewOf(t, r.Slug)
	s.log.Info().Str("restaurant", r.Slug).Str("appBg", view.AppBg).Msg("Theme saved")

	s.announce(ctx, r, view)
	return view, nil
}

// DetachMedia clears the background image when it is mediaID and announces
// the resulting theme. It reports whether the theme changed.
func (s *Service) DetachMedia(ctx context.Context, r *models.Restaurant, mediaID string) (bool, error) {
	cleared, err := s.store.ClearBackgroundImage(ctx, r.ID, mediaID)
	if err != nil || !cleared {
		return false, err
	}

	view, err := s.Theme(ctx, r)
	if err != nil {
		return true, err
	}
	s.log.Info().Str("restaurant", r.Slug).Str("media", mediaID).Msg("Background image removed from theme")
	s.announce(ctx, r, view)
	return true, nil
}

func (s *Service) announce(ctx context.Context, r *models.Restaurant, view ThemeView) {
	if s.pub == nil {
		return
	}
	evt := broadcast.Event{
		Restaurant:             r.Slug,
		AppBg:                  view.AppBg,
		BackgroundImageMediaID: view.BackgroundImageMediaID,
		At:                     s.now(),
	}
	if err := s.pub.Publish(ctx, evt); err != nil {
		s.log.Warn().Err(err).Str("restaurant", r.Slug).Msg("Failed to announce theme change")
	}
}

// Preview derives the palette and CSS for appBg without saving or
// announcing anything.
func (s *Service) Preview(appBg string) (palette.Scheme, string) {
	scheme := SchemeFor(appBg)
	doc := NewCSSDocument()
	ApplyTheme(doc, ThemeView{AppBg: appBg}, scheme)
	return scheme, doc.String()
}

// Render writes theme, brand colors and UI settings into one document.
// Brand colors and UI settings are loaded independently; a failure to load
// either is logged and does not affect the theme.
func (s *Service) Render(ctx context.Context, r *models.Restaurant) (*CSSDocument, ThemeView, error) {
	view, err := s.Theme(ctx, r)
	if err != nil {
		return nil, ThemeView{}, err
	}

	doc := NewCSSDocument()
	ApplyTheme(doc, view, SchemeFor(view.AppBg))

	if b, err := s.store.GetBranding(ctx, r.ID); err != nil {
		s.log.Warn().Err(err).Str("restaurant", r.Slug).Msg("Brand colors unavailable")
	} else {
		ApplyBrandColors(doc, b)
	}

	if ui, err := s.store.GetUISettings(ctx, r.ID); err != nil {
		s.log.Warn().Err(err).Str("restaurant", r.Slug).Msg("UI settings unavailable")
	} else {
		ApplyUISettings(doc, ui)
	}

	return doc, view, nil
}
