// SPDX-License-Identifier: MIT
package themesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

type fetchResult struct {
	view themes.ThemeView
	err  error
}

// fakeFetcher returns results in order, repeating the last one. When gate
// is set every fetch waits for it.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	results []fetchResult
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) FetchTheme(ctx context.Context) (themes.ThemeView, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return themes.ThemeView{}, ctx.Err()
		}
	}

	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].view, f.results[i].err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func ok(bg string) fetchResult {
	return fetchResult{view: themes.ThemeView{AppBg: bg}}
}

func fail() fetchResult {
	return fetchResult{err: errors.New("connection refused")}
}

func appBg(t *testing.T, doc *themes.CSSDocument) string {
	t.Helper()
	v, _ := doc.Property(themes.PropAppBg)
	return v
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
	}
}

func TestMountAppliesCacheThenAuthoritative(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(themes.CacheKey, "#112233"))

	fetcher := &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}, gate: make(chan struct{})}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Cache: cache, Document: doc})

	done := s.Mount(context.Background())
	assert.Equal(t, "#112233", appBg(t, doc), "cached color applied before the fetch resolves")

	close(fetcher.gate)
	waitDone(t, done)

	assert.Equal(t, "#FFFFFF", appBg(t, doc))
	textPrimary, _ := doc.Property("--auto-text-primary")
	assert.Equal(t, "#000000", textPrimary)

	cached, _ := cache.Get(themes.CacheKey)
	assert.Equal(t, "#FFFFFF", cached)
}

func TestMountWithoutCacheWaitsForFetch(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{ok("#400810")}, gate: make(chan struct{})}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Document: doc})

	done := s.Mount(context.Background())
	assert.Empty(t, appBg(t, doc))

	close(fetcher.gate)
	waitDone(t, done)
	assert.Equal(t, "#400810", appBg(t, doc))
}

func TestCacheStoresRawColor(t *testing.T) {
	cache := NewMemoryCache()
	fetcher := &fakeFetcher{results: []fetchResult{ok("not-a-color")}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Cache: cache, Document: doc})

	waitDone(t, s.Mount(context.Background()))

	cached, _ := cache.Get(themes.CacheKey)
	assert.Equal(t, "not-a-color", cached)
	assert.Equal(t, "#000000", appBg(t, doc))
}

func TestRefreshRetriesOnce(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{fail(), ok("#ABCDEF")}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Document: doc, RetryDelay: 10 * time.Millisecond})

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, fetcher.Calls())
	assert.Equal(t, "#ABCDEF", appBg(t, doc))
}

func TestRefreshGivesUpAfterRetry(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(themes.CacheKey, "#112233"))
	fetcher := &fakeFetcher{results: []fetchResult{fail()}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Cache: cache, Document: doc, RetryDelay: 10 * time.Millisecond})

	waitDone(t, s.Mount(context.Background()))
	assert.Equal(t, 2, fetcher.Calls(), "exactly one retry")
	assert.Equal(t, "#112233", appBg(t, doc), "cached visuals kept")

	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, 4, fetcher.Calls())
}

func TestRefreshKeepsDefaultsWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{fail()}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Document: doc, RetryDelay: time.Millisecond})

	assert.ErrorIs(t, s.Refresh(context.Background()), ErrFetch)
	assert.Empty(t, doc.String())
}

func TestOverlappingRefreshesShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{
		results: []fetchResult{ok("#FFFFFF")},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := New(Config{Fetcher: fetcher, Document: themes.NewCSSDocument()})

	var wg sync.WaitGroup
	refresh := func() {
		defer wg.Done()
		assert.NoError(t, s.Refresh(context.Background()))
	}

	wg.Add(1)
	go refresh()
	<-fetcher.started

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go refresh()
	}
	time.Sleep(50 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, 1, fetcher.Calls())
}

func TestOnApplyRunsForChangedThemes(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{ok("#FFFFFF"), ok("#FFFFFF"), ok("#000000")}}
	s := New(Config{Fetcher: fetcher, Document: themes.NewCSSDocument()})

	var seen []string
	s.OnApply(func(v themes.ThemeView) { seen = append(seen, v.AppBg) })

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Refresh(context.Background()))
	}
	assert.Equal(t, []string{"#FFFFFF", "#000000"}, seen)
}

func TestOnApplyRunsWhenServerMatchesCache(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(themes.CacheKey, "#112233"))
	fetcher := &fakeFetcher{results: []fetchResult{ok("#112233")}}
	s := New(Config{Fetcher: fetcher, Cache: cache, Document: themes.NewCSSDocument()})

	var seen []string
	s.OnApply(func(v themes.ThemeView) { seen = append(seen, v.AppBg) })

	waitDone(t, s.Mount(context.Background()))
	assert.Equal(t, []string{"#112233"}, seen)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, seen, 1, "unchanged refetch does not rerun hooks")
}

func TestFetchedImageReplacesCachedPaint(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(themes.CacheKey, "#400810"))
	id := "m1"
	fetcher := &fakeFetcher{results: []fetchResult{{view: themes.ThemeView{
		AppBg: "#400810", BackgroundImageMediaID: &id, BackgroundImageURL: "/r/x/media/m1",
	}}}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Cache: cache, Document: doc})

	waitDone(t, s.Mount(context.Background()))
	img, ok := doc.Property(themes.PropAppBgImage)
	require.True(t, ok)
	assert.Equal(t, `url("/r/x/media/m1")`, img)
}

func TestRunRefetchesOnTriggers(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}}
	s := New(Config{Fetcher: fetcher, Document: themes.NewCSSDocument()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	for i, trig := range []Trigger{TriggerMount, TriggerVisible, TriggerFocus, TriggerSaved, TriggerPush} {
		s.Trigger(trig)
		want := i + 1
		assert.Eventually(t, func() bool { return fetcher.Calls() == want }, time.Second, 5*time.Millisecond, trig.String())
	}
}

func TestIntervalOnlyWhileVisible(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}}
	s := New(Config{Fetcher: fetcher, Document: themes.NewCSSDocument(), PollInterval: 10 * time.Millisecond})

	s.Trigger(TriggerHidden)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fetcher.Calls(), "no polling while hidden")

	s.Trigger(TriggerVisible)
	assert.Eventually(t, func() bool { return fetcher.Calls() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestSavedEventTriggersRefresh(t *testing.T) {
	fetcher := &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}}
	s := New(Config{Fetcher: fetcher, Document: themes.NewCSSDocument()})
	bus := NewEventBus()
	unlisten := s.Listen(bus)
	defer unlisten()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	bus.Dispatch(themes.ThemeSavedEvent)
	assert.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, 5*time.Millisecond)
}

func TestTriggerNeverBlocks(t *testing.T) {
	s := New(Config{Fetcher: &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}}})
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Trigger(TriggerFocus)
		}
		close(done)
	}()
	waitDone(t, done)
}

func TestNilDocumentIsSafe(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(themes.CacheKey, "#112233"))
	s := New(Config{Fetcher: &fakeFetcher{results: []fetchResult{ok("#FFFFFF")}}, Cache: cache})

	assert.NotPanics(t, func() {
		waitDone(t, s.Mount(context.Background()))
		s.Preview("#000000")
		s.EndPreview()
	})
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, "#FFFFFF", cur.AppBg)
}
