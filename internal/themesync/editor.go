// SPDX-License-Identifier: MIT
package themesync

import (
	"context"
	"fmt"

	"github.com/thatcatcamp/menukitty/internal/themes"
)

// Editor is the admin theme editor. Previews touch only the local document;
// Save persists, applies the confirmed theme and tells the page.
type Editor struct {
	syncer *Syncer
	saver  Saver
	bus    *EventBus
}

// NewEditor creates an editor on an already mounted syncer.
func NewEditor(syncer *Syncer, saver Saver, bus *EventBus) *Editor {
	return &Editor{syncer: syncer, saver: saver, bus: bus}
}

// Preview re-derives and shows appBg immediately. Nothing is saved.
func (e *Editor) Preview(appBg string) {
	e.syncer.Preview(appBg)
}

// Save persists in. On failure the error is returned for display and the
// preview stays on screen; the persisted theme is unchanged.
func (e *Editor) Save(ctx context.Context, in themes.ThemeInput) (themes.ThemeView, error) {
	view, err := e.saver.SaveTheme(ctx, in)
	if err != nil {
		return themes.ThemeView{}, fmt.Errorf("failed to save theme: %w", err)
	}
	e.syncer.Commit(view)
	if e.bus != nil {
		e.bus.Dispatch(themes.ThemeSavedEvent)
	}
	return view, nil
}

// Discard drops the preview and shows the persisted theme again.
func (e *Editor) Discard() {
	e.syncer.EndPreview()
}
