// SPDX-License-Identifier: MIT
package themesync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"golang.org/x/sync/singleflight"
)

// Trigger is a reason to refetch the theme.
type Trigger int

const (
	TriggerMount Trigger = iota
	TriggerVisible
	TriggerHidden
	TriggerFocus
	TriggerSaved
	TriggerInterval
	TriggerPush
)

func (t Trigger) String() string {
	switch t {
	case TriggerMount:
		return "mount"
	case TriggerVisible:
		return "visible"
	case TriggerHidden:
		return "hidden"
	case TriggerFocus:
		return "focus"
	case TriggerSaved:
		return "saved"
	case TriggerInterval:
		return "interval"
	case TriggerPush:
		return "push"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

const (
	DefaultRetryDelay   = time.Second
	DefaultPollInterval = 5 * time.Second
)

// Config configures a Syncer. Fetcher and Document are required.
type Config struct {
	Fetcher  Fetcher
	Cache    Cache
	Document themes.Document
	// RetryDelay is the pause before the single retry of a failed fetch.
	RetryDelay time.Duration
	// PollInterval is the safety-net refetch period while visible. Zero
	// disables polling.
	PollInterval time.Duration
}

// Syncer applies the server's theme to one document.
//
// Every fetch that completes is applied in completion order; a slower fetch
// that started earlier may overwrite a faster later one. Overlapping
// refreshes share a single request.
type Syncer struct {
	fetcher    Fetcher
	cache      Cache
	doc        themes.Document
	retryDelay time.Duration
	interval   time.Duration
	log        zerolog.Logger

	flights  singleflight.Group
	triggers chan Trigger

	mu         sync.Mutex
	visible    bool
	previewing bool
	applied    themes.ThemeView // what the document shows, preview aside
	hasApplied bool
	fetched    bool // applied came from the server, not the cache
	hooks      []func(themes.ThemeView)
}

// New creates a Syncer. A nil Cache means a MemoryCache.
func New(cfg Config) *Syncer {
	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache()
	}
	return &Syncer{
		fetcher:    cfg.Fetcher,
		cache:      cfg.Cache,
		doc:        cfg.Document,
		retryDelay: cfg.RetryDelay,
		interval:   cfg.PollInterval,
		log:        logging.For("themesync"),
		triggers:   make(chan Trigger, 16),
		visible:    true,
	}
}

// OnApply registers fn to run after each fetched theme is applied. It runs
// with the document locked and must not call back into the Syncer.
func (s *Syncer) OnApply(fn func(themes.ThemeView)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Current returns the last applied theme.
func (s *Syncer) Current() (themes.ThemeView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied, s.hasApplied
}

// Mount paints the cached color synchronously, then fetches the real theme
// in the background. The returned channel closes when that fetch is done,
// whether it succeeded or not.
func (s *Syncer) Mount(ctx context.Context) <-chan struct{} {
	if bg, ok := s.cache.Get(themes.CacheKey); ok && bg != "" {
		s.mu.Lock()
		if !s.previewing {
			themes.ApplyPalette(s.doc, bg, themes.SchemeFor(bg))
		}
		s.applied = themes.ThemeView{AppBg: bg}
		s.hasApplied = true
		s.mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Refresh(ctx)
	}()
	return done
}

// Refresh fetches and applies the theme. A failed fetch is retried once
// after RetryDelay; if that fails too the document keeps what it shows and
// the error is logged and returned.
func (s *Syncer) Refresh(ctx context.Context) error {
	_, err, _ := s.flights.Do("theme", func() (interface{}, error) {
		view, err := s.fetchWithRetry(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Theme refresh failed, keeping current colors")
			return nil, err
		}
		s.apply(view)
		return view, nil
	})
	return err
}

func (s *Syncer) fetchWithRetry(ctx context.Context) (themes.ThemeView, error) {
	view, err := s.fetcher.FetchTheme(ctx)
	if err == nil {
		return view, nil
	}
	s.log.Debug().Err(err).Dur("retry_in", s.retryDelay).Msg("Theme fetch failed, retrying once")

	select {
	case <-ctx.Done():
		return themes.ThemeView{}, fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
	case <-time.After(s.retryDelay):
	}

	view, err = s.fetcher.FetchTheme(ctx)
	if err != nil {
		return themes.ThemeView{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return view, nil
}

// apply writes a fetched theme to the document and the cache. The document
// is left alone while a preview is showing.
func (s *Syncer) apply(view themes.ThemeView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := !s.fetched || !sameView(s.applied, view)
	s.applied = view
	s.hasApplied = true
	s.fetched = true

	if err := s.cache.Set(themes.CacheKey, view.AppBg); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache theme color")
	}

	if s.previewing || !changed {
		return
	}
	themes.ApplyTheme(s.doc, view, themes.SchemeFor(view.AppBg))
	for _, fn := range s.hooks {
		fn(view)
	}
}

// Preview shows appBg on this document only. Fetched themes are tracked but
// not shown until EndPreview or Commit.
func (s *Syncer) Preview(appBg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewing = true
	view := s.applied
	view.AppBg = appBg
	themes.ApplyTheme(s.doc, view, themes.SchemeFor(appBg))
}

// EndPreview drops the preview and shows the last fetched theme again.
func (s *Syncer) EndPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.previewing {
		return
	}
	s.previewing = false
	if s.hasApplied {
		themes.ApplyTheme(s.doc, s.applied, themes.SchemeFor(s.applied.AppBg))
	}
}

// Commit ends any preview and applies a theme the server just confirmed.
func (s *Syncer) Commit(view themes.ThemeView) {
	s.mu.Lock()
	s.previewing = false
	s.fetched = false
	s.mu.Unlock()
	s.apply(view)
}

// Trigger queues a refetch reason for Run. It never blocks; when the queue
// is full a refetch is already pending.
func (s *Syncer) Trigger(t Trigger) {
	select {
	case s.triggers <- t:
	default:
	}
}

// Listen subscribes the syncer to the saved event on bus.
func (s *Syncer) Listen(bus *EventBus) func() {
	return bus.On(themes.ThemeSavedEvent, func() { s.Trigger(TriggerSaved) })
}

// Run handles triggers and the poll timer until ctx is cancelled.
// Refreshes run concurrently with the loop.
func (s *Syncer) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-s.triggers:
			s.handle(ctx, t)
		case <-tick:
			if s.isVisible() {
				s.handle(ctx, TriggerInterval)
			}
		}
	}
}

func (s *Syncer) handle(ctx context.Context, t Trigger) {
	switch t {
	case TriggerHidden:
		s.setVisible(false)
		return
	case TriggerVisible:
		s.setVisible(true)
	}
	s.log.Debug().Stringer("trigger", t).Msg("Refreshing theme")
	go func() { _ = s.Refresh(ctx) }()
}

func (s *Syncer) isVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Syncer) setVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

func sameView(a, b themes.ThemeView) bool {
	if a.AppBg != b.AppBg || a.BackgroundImageURL != b.BackgroundImageURL {
		return false
	}
	return a.HasBackgroundImage() == b.HasBackgroundImage() &&
		(!a.HasBackgroundImage() || *a.BackgroundImageMediaID == *b.BackgroundImageMediaID)
}
