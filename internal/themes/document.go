// SPDX-License-Identifier: MIT
package themes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/palette"
)

// StyleSurface is a set of named style properties, e.g. an element's inline
// style.
type StyleSurface interface {
	SetProperty(name, value string)
	RemoveProperty(name string)
}

// Document exposes the two surfaces a theme is written to. Root carries the
// custom properties; Container is the app's content wrapper and may be nil.
type Document interface {
	Root() StyleSurface
	Container() StyleSurface
}

const (
	PropAppBg      = "--app-bg"
	PropAppBgImage = "--app-bg-image"
)

// backgroundProps are written to both surfaces when a background image is
// set, and removed from both when it is not.
var backgroundProps = []struct{ name, value string }{
	{"background-size", "cover"},
	{"background-position", "center"},
	{"background-repeat", "no-repeat"},
	{"background-attachment", "fixed"},
}

// irregularRoles have hand-written property names. A naive camel-to-kebab
// regex turns edgeAccent into edge-ccent.
var irregularRoles = map[string]string{
	"edgeAccent":     "edge-accent",
	"lighterSurface": "lighter-surface",
}

// PropertyName maps a palette role to its custom property name.
func PropertyName(role string) string {
	if name, ok := irregularRoles[role]; ok {
		return "--auto-" + name
	}
	return "--auto-" + Kebab(role)
}

// Kebab converts camelCase to kebab-case. Digits stay attached to the word
// before them, so surfaceBg2 becomes surface-bg2.
func Kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func surfaces(doc Document) (root, container StyleSurface) {
	if doc == nil {
		return nil, nil
	}
	return doc.Root(), doc.Container()
}

// ApplyTheme writes the background and every palette role to doc. A nil doc
// or a doc without a root is a no-op.
func ApplyTheme(doc Document, t ThemeView, scheme palette.Scheme) {
	root, container := surfaces(doc)
	if root == nil {
		return
	}

	root.SetProperty(PropAppBg, palette.NormalizeToHex(t.AppBg))

	targets := []StyleSurface{root}
	if container != nil {
		targets = append(targets, container)
	}

	if t.HasBackgroundImage() {
		img := cssURL(t.ImageURL())
		root.SetProperty(PropAppBgImage, img)
		for _, s := range targets {
			s.SetProperty("background-image", img)
			for _, p := range backgroundProps {
				s.SetProperty(p.name, p.value)
			}
		}
	} else {
		root.RemoveProperty(PropAppBgImage)
		for _, s := range targets {
			s.RemoveProperty("background-image")
			for _, p := range backgroundProps {
				s.RemoveProperty(p.name)
			}
		}
	}

	writeRoles(root, scheme)
}

// ApplyPalette writes the background color and palette roles but leaves
// background image properties alone. Clients use it for the cached first
// paint, where only the color is known.
func ApplyPalette(doc Document, appBg string, scheme palette.Scheme) {
	root, _ := surfaces(doc)
	if root == nil {
		return
	}
	root.SetProperty(PropAppBg, palette.NormalizeToHex(appBg))
	writeRoles(root, scheme)
}

func writeRoles(root StyleSurface, scheme palette.Scheme) {
	for _, r := range scheme.Roles() {
		root.SetProperty(PropertyName(r.Name), r.Value)
	}
}

// ApplyBrandColors writes each brand color as --brand-<kebab>. Keys are
// written in sorted order.
func ApplyBrandColors(doc Document, b Branding) {
	root, _ := surfaces(doc)
	if root == nil || b == nil {
		return
	}

	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := brandValue(b[k])
		if !ok {
			continue
		}
		root.SetProperty("--brand-"+Kebab(k), v)
	}
}

// ApplyUISettings writes each size as --ui-<kebab> in pixels.
func ApplyUISettings(doc Document, s *models.UISettings) {
	root, _ := surfaces(doc)
	if root == nil || s == nil {
		return
	}
	for _, f := range UIFields(*s) {
		root.SetProperty("--ui-"+Kebab(f.Name), strconv.Itoa(f.Value)+"px")
	}
}

func brandValue(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	default:
		return "", false
	}
}

func cssURL(u string) string {
	u = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", "", "\r", "").Replace(u)
	return fmt.Sprintf(`url("%s")`, u)
}
