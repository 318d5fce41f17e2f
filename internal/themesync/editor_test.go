// SPDX-License-Identifier: MIT
package themesync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

type fakeSaver struct {
	saved []themes.ThemeInput
	err   error
}

func (f *fakeSaver) SaveTheme(_ context.Context, in themes.ThemeInput) (themes.ThemeView, error) {
	if f.err != nil {
		return themes.ThemeView{}, f.err
	}
	f.saved = append(f.saved, in)
	return themes.ThemeView{AppBg: in.AppBg, BackgroundImageMediaID: in.BackgroundImageMediaID}, nil
}

func mountedEditor(t *testing.T, persisted string, saver Saver) (*Editor, *themes.CSSDocument, *fakeFetcher, *EventBus) {
	t.Helper()
	fetcher := &fakeFetcher{results: []fetchResult{ok(persisted)}}
	doc := themes.NewCSSDocument()
	s := New(Config{Fetcher: fetcher, Document: doc})
	waitDone(t, s.Mount(context.Background()))
	bus := NewEventBus()
	return NewEditor(s, saver, bus), doc, fetcher, bus
}

func TestPreviewAppliesLocallyOnly(t *testing.T) {
	saver := &fakeSaver{}
	ed, doc, fetcher, _ := mountedEditor(t, "#400810", saver)

	ed.Preview("#FFFFFF")
	assert.Equal(t, "#FFFFFF", appBg(t, doc))
	assert.Empty(t, saver.saved)

	// A poll while previewing does not clobber the preview.
	require.NoError(t, ed.syncer.Refresh(context.Background()))
	assert.Equal(t, 2, fetcher.Calls())
	assert.Equal(t, "#FFFFFF", appBg(t, doc))
}

func TestDiscardRestoresPersisted(t *testing.T) {
	ed, doc, _, _ := mountedEditor(t, "#400810", &fakeSaver{})

	ed.Preview("#FFFFFF")
	ed.Preview("#00FF00")
	ed.Discard()

	assert.Equal(t, "#400810", appBg(t, doc))
}

func TestSaveAppliesAndDispatches(t *testing.T) {
	saver := &fakeSaver{}
	ed, doc, _, bus := mountedEditor(t, "#400810", saver)

	fired := 0
	bus.On(themes.ThemeSavedEvent, func() { fired++ })

	ed.Preview("#FFFFFF")
	view, err := ed.Save(context.Background(), themes.ThemeInput{AppBg: "#FFFFFF"})
	require.NoError(t, err)
	assert.Equal(t, "#FFFFFF", view.AppBg)
	assert.Equal(t, 1, fired)
	assert.Equal(t, "#FFFFFF", appBg(t, doc))

	cur, _ := ed.syncer.Current()
	assert.Equal(t, "#FFFFFF", cur.AppBg)

	// No longer previewing: the next fetched theme is shown.
	ed.syncer.apply(themes.ThemeView{AppBg: "#000000"})
	assert.Equal(t, "#000000", appBg(t, doc))
}

func TestSaveFailureKeepsPreviewOnly(t *testing.T) {
	saver := &fakeSaver{err: ErrUnauthorized}
	ed, doc, _, bus := mountedEditor(t, "#400810", saver)

	fired := 0
	bus.On(themes.ThemeSavedEvent, func() { fired++ })

	ed.Preview("#FFFFFF")
	_, err := ed.Save(context.Background(), themes.ThemeInput{AppBg: "#FFFFFF"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Zero(t, fired)

	cur, _ := ed.syncer.Current()
	assert.Equal(t, "#400810", cur.AppBg, "theme not considered saved")
	assert.Equal(t, "#FFFFFF", appBg(t, doc), "preview stays on screen")
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	var a, b int
	offA := bus.On("x", func() { a++ })
	bus.On("x", func() { b++ })

	bus.Dispatch("x")
	offA()
	offA()
	bus.Dispatch("x")
	bus.Dispatch("y")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
