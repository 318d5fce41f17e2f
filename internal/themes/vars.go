// SPDX-License-Identifier: MIT
package themes

// Vars is the property-level form of a theme for browsers that apply it
// with style.setProperty. Remove lists properties to clear on both the root
// and the container.
type Vars struct {
	Theme     ThemeView         `json:"theme"`
	Root      map[string]string `json:"root"`
	Container map[string]string `json:"container"`
	Remove    []string          `json:"remove"`
}

// ImageProperties lists every property ApplyTheme sets for a background
// image.
func ImageProperties() []string {
	out := []string{PropAppBgImage, "background-image"}
	for _, p := range backgroundProps {
		out = append(out, p.name)
	}
	return out
}

// VarsOf derives the properties for view.
func VarsOf(view ThemeView) Vars {
	doc := NewCSSDocument()
	ApplyTheme(doc, view, SchemeFor(view.AppBg))

	v := Vars{
		Theme:     view,
		Root:      doc.Properties(),
		Container: doc.ContainerProperties(),
		Remove:    []string{},
	}
	if !view.HasBackgroundImage() {
		v.Remove = ImageProperties()
	}
	return v
}
