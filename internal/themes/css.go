// SPDX-License-Identifier: MIT
package themes

import (
	"io"
	"strings"
)

// cssBlock is one rule of a CSSDocument. Properties keep insertion order;
// setting an existing property replaces its value in place.
type cssBlock struct {
	selector string
	names    []string
	values   map[string]string
}

func newBlock(selector string) *cssBlock {
	return &cssBlock{selector: selector, values: make(map[string]string)}
}

func (b *cssBlock) SetProperty(name, value string) {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = value
}

func (b *cssBlock) RemoveProperty(name string) {
	if _, ok := b.values[name]; !ok {
		return
	}
	delete(b.values, name)
	for i, n := range b.names {
		if n == name {
			b.names = append(b.names[:i], b.names[i+1:]...)
			break
		}
	}
}

func (b *cssBlock) writeTo(sb *strings.Builder) {
	if len(b.names) == 0 {
		return
	}
	sb.WriteString(b.selector)
	sb.WriteString(" {\n")
	for _, n := range b.names {
		sb.WriteString("  ")
		sb.WriteString(n)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(b.values[n]))
		sb.WriteString(";\n")
	}
	sb.WriteString("}\n")
}

// CSSDocument is an in-memory Document that renders to a stylesheet. It is
// used for server-side rendering and by the theme watcher.
type CSSDocument struct {
	root      *cssBlock
	container *cssBlock
}

// NewCSSDocument creates an empty document
func NewCSSDocument() *CSSDocument {
	return &CSSDocument{
		root:      newBlock(":root"),
		container: newBlock(".app-container"),
	}
}

func (d *CSSDocument) Root() StyleSurface      { return d.root }
func (d *CSSDocument) Container() StyleSurface { return d.container }

// Property returns a root property value.
func (d *CSSDocument) Property(name string) (string, bool) {
	v, ok := d.root.values[name]
	return v, ok
}

// ContainerProperty returns a container property value.
func (d *CSSDocument) ContainerProperty(name string) (string, bool) {
	v, ok := d.container.values[name]
	return v, ok
}

// Properties returns a copy of the root properties.
func (d *CSSDocument) Properties() map[string]string {
	out := make(map[string]string, len(d.root.values))
	for k, v := range d.root.values {
		out[k] = v
	}
	return out
}

// ContainerProperties returns a copy of the container properties.
func (d *CSSDocument) ContainerProperties() map[string]string {
	out := make(map[string]string, len(d.container.values))
	for k, v := range d.container.values {
		out[k] = v
	}
	return out
}

// String renders both rules as CSS.
func (d *CSSDocument) String() string {
	var sb strings.Builder
	d.root.writeTo(&sb)
	d.container.writeTo(&sb)
	return sb.String()
}

// WriteTo writes the rendered CSS to w.
func (d *CSSDocument) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

// sanitizeValue strips characters that could end a declaration or the
// surrounding <style> element, escapes and comment markers. Stored colors
// are free-form admin input.
func sanitizeValue(v string) string {
	v = strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\\', '\n', '\r':
			return -1
		}
		return r
	}, v)
	for strings.Contains(v, "/*") || strings.Contains(v, "*/") {
		v = strings.ReplaceAll(strings.ReplaceAll(v, "/*", ""), "*/", "")
	}
	return v
}

// BaseStylesheet styles storefront and admin pages in terms of the custom
// properties written by ApplyTheme, ApplyBrandColors and ApplyUISettings.
const BaseStylesheet = `/* Base element styles */
body {
  background-color: var(--app-bg);
  color: var(--auto-text-primary);
  margin: 0;
  transition: background-color 0.2s, color 0.2s;
}

.app-container {
  min-height: 100vh;
  background-color: var(--app-bg);
}

a {
  color: var(--auto-accent);
  text-decoration: none;
}

a:hover {
  text-decoration: underline;
}

/* Button styles */
button, .btn {
  background-color: var(--auto-primary);
  color: var(--auto-primary-text);
  border: 1px solid var(--auto-edge-accent);
  padding: 8px 16px;
  border-radius: 6px;
  cursor: pointer;
  box-shadow: 0 2px 8px var(--auto-primary-glow-subtle);
  transition: background-color 0.2s, box-shadow 0.2s;
}

button:hover, .btn:hover {
  background-color: var(--auto-primary-hover);
  box-shadow: 0 4px 16px var(--auto-primary-glow);
}

button:active, .btn:active {
  box-shadow: 0 0 20px var(--auto-primary-glow-strong);
}

/* Card/surface styles */
.card, .surface {
  background-color: var(--auto-surface-bg);
  border: 1px solid var(--auto-border);
  border-radius: 10px;
  padding: 16px;
  box-shadow: 0 4px 12px var(--auto-shadow-color);
}

.surface-alt {
  background-color: var(--auto-surface-bg2);
}

.surface-raised {
  background-color: var(--auto-lighter-surface);
  box-shadow: 0 2px 6px var(--auto-shadow-color-light);
}

hr, .divider {
  border: none;
  border-top: 1px solid var(--auto-border);
}

/* Input styles */
input, textarea, select {
  border: 1px solid var(--auto-border);
  background-color: var(--auto-surface-bg2);
  color: var(--auto-text-primary);
  padding: 8px;
  border-radius: 4px;
}

input:focus, textarea:focus, select:focus {
  outline: none;
  border-color: var(--auto-accent);
  box-shadow: 0 0 0 3px var(--auto-primary-glow-subtle);
}

.text-secondary { color: var(--auto-text-secondary); }
.text-muted, .muted { color: var(--auto-muted); }

/* Menu */
.menu {
  background: linear-gradient(180deg, var(--brand-menu-gradient-start), var(--brand-menu-gradient-end));
}
.section-card { background: var(--brand-section-card-bg); }
.category-card { background: var(--brand-category-card-bg); }
.item-card { background: var(--brand-item-card-bg); }
.section-title { color: var(--brand-section-title-color); font-size: var(--ui-section-title-size); }
.category-title { color: var(--brand-category-title-color); font-size: var(--ui-category-title-size); }
.item-title { color: var(--brand-item-title-color); font-size: var(--ui-item-title-size); }
.item-description { color: var(--brand-item-description-color); font-size: var(--ui-item-description-size); }
.item-price { color: var(--brand-item-price-color); font-size: var(--ui-item-price-size); }
.header-logo { height: var(--ui-header-logo-size); }

.bottom-nav {
  position: fixed;
  bottom: 0;
  left: 0;
  right: 0;
  display: flex;
  background: var(--brand-bottom-nav-bg);
  color: var(--brand-bottom-nav-text);
  font-size: var(--ui-bottom-nav-label-size);
}
.bottom-nav .active { color: var(--brand-bottom-nav-active); }

.modal {
  background: var(--brand-modal-bg);
  color: var(--brand-modal-text);
  border: 1px solid var(--brand-modal-border);
}
.brand-button {
  background: var(--brand-button-bg);
  color: var(--brand-button-text);
}

/* Welcome */
.welcome-overlay {
  position: absolute;
  inset: 0;
  background: var(--brand-welcome-overlay-color);
  opacity: var(--brand-welcome-overlay-opacity);
}
.welcome-title { font-size: var(--ui-welcome-title-size); }
`
