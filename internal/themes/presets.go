// SPDX-License-Identifier: MIT
package themes

// Preset is a named background offered as a one-click choice in the theme
// editor.
type Preset struct {
	Name  string `json:"name"`
	AppBg string `json:"appBg"`
}

var presetOrder = []string{
	"burgundy", "espresso", "forest", "navy", "slate", "charcoal",
	"terracotta", "olive", "cream", "linen", "sage", "white",
}

var presets = map[string]string{
	"burgundy":   DefaultAppBg,
	"espresso":   "#3B2418",
	"forest":     "#1F3A2B",
	"navy":       "#0F1B3D",
	"slate":      "#334155",
	"charcoal":   "#1C1C1C",
	"terracotta": "#A4452C",
	"olive":      "#556B2F",
	"cream":      "#F5EBD7",
	"linen":      "#FAF0E6",
	"sage":       "#C7D3BF",
	"white":      "#FFFFFF",
}

// GetPreset returns a preset by name
func GetPreset(name string) *Preset {
	bg, ok := presets[name]
	if !ok {
		return nil
	}
	return &Preset{Name: name, AppBg: bg}
}

// ListPresets returns all available presets in order
func ListPresets() []*Preset {
	var out []*Preset
	for _, name := range presetOrder {
		if p := GetPreset(name); p != nil {
			out = append(out, p)
		}
	}
	return out
}
