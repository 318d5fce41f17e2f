// SPDX-License-Identifier: MIT
package palette

import "math"

// FixedAccent is the amber accent used on every dark background.
const FixedAccent = "#FBBF24"

// Scheme is the full set of color roles derived from one background color.
type Scheme struct {
	TextPrimary       string `json:"textPrimary"`
	TextSecondary     string `json:"textSecondary"`
	SurfaceBg         string `json:"surfaceBg"`
	SurfaceBg2        string `json:"surfaceBg2"`
	Border            string `json:"border"`
	Primary           string `json:"primary"`
	PrimaryHover      string `json:"primaryHover"`
	PrimaryText       string `json:"primaryText"`
	Accent            string `json:"accent"`
	Muted             string `json:"muted"`
	ShadowColor       string `json:"shadowColor"`
	ShadowColorLight  string `json:"shadowColorLight"`
	PrimaryGlow       string `json:"primaryGlow"`
	PrimaryGlowStrong string `json:"primaryGlowStrong"`
	PrimaryGlowSubtle string `json:"primaryGlowSubtle"`
	EdgeAccent        string `json:"edgeAccent"`
	LighterSurface    string `json:"lighterSurface"`
}

// Role is one named entry of a Scheme.
type Role struct {
	Name  string
	Value string
}

// Roles lists every role in a stable order using camelCase names.
func (s Scheme) Roles() []Role {
	return []Role{
		{"textPrimary", s.TextPrimary},
		{"textSecondary", s.TextSecondary},
		{"surfaceBg", s.SurfaceBg},
		{"surfaceBg2", s.SurfaceBg2},
		{"border", s.Border},
		{"primary", s.Primary},
		{"primaryHover", s.PrimaryHover},
		{"primaryText", s.PrimaryText},
		{"accent", s.Accent},
		{"muted", s.Muted},
		{"shadowColor", s.ShadowColor},
		{"shadowColorLight", s.ShadowColorLight},
		{"primaryGlow", s.PrimaryGlow},
		{"primaryGlowStrong", s.PrimaryGlowStrong},
		{"primaryGlowSubtle", s.PrimaryGlowSubtle},
		{"edgeAccent", s.EdgeAccent},
		{"lighterSurface", s.LighterSurface},
	}
}

// FallbackScheme is returned by Generate when the background is not a
// 6-digit hex color.
func FallbackScheme() Scheme {
	return Scheme{
		TextPrimary:       "#FFFFFF",
		TextSecondary:     "rgba(255,255,255,0.9)",
		SurfaceBg:         "rgba(255,255,255,0.15)",
		SurfaceBg2:        "rgba(255,255,255,0.1)",
		Border:            "rgba(255,255,255,0.25)",
		Primary:           "#800020",
		PrimaryHover:      "#A0002A",
		PrimaryText:       "#FFFFFF",
		Accent:            FixedAccent,
		Muted:             "rgba(255,255,255,0.6)",
		ShadowColor:       "rgba(0,0,0,0.5)",
		ShadowColorLight:  "rgba(0,0,0,0.3)",
		PrimaryGlow:       "rgba(128,0,32,0.35)",
		PrimaryGlowStrong: "rgba(128,0,32,0.45)",
		PrimaryGlowSubtle: "rgba(128,0,32,0.25)",
		EdgeAccent:        "rgba(128,0,32,0.4)",
		LighterSurface:    "rgba(255,255,255,0.1)",
	}
}

// Generate derives a Scheme from a background hex color. Light backgrounds
// get dark text over black-tinted chrome; dark backgrounds get white text over
// white-tinted chrome. primaryText is white in both cases.
func Generate(bg string) Scheme {
	c, ok := HexToRGB(bg)
	if !ok {
		return FallbackScheme()
	}

	lightness := RelativeLuminance(bg)
	if lightness > LightThreshold {
		return lightScheme(bg, c, lightness)
	}
	return darkScheme(bg, c, lightness)
}

func lightScheme(bg string, c RGB, lightness float64) Scheme {
	surfaceOpacity := math.Min(0.25, 0.1+lightness*0.15)
	surface2Opacity := math.Min(0.15, 0.05+lightness*0.1)
	borderOpacity := math.Min(0.4, 0.2+lightness*0.2)

	shadow := RGB{R: max(0, c.R-80), G: max(0, c.G-80), B: max(0, c.B-80)}

	return Scheme{
		TextPrimary:       "#000000",
		TextSecondary:     "rgba(0,0,0,0.8)",
		SurfaceBg:         RGBA(0, 0, 0, surfaceOpacity),
		SurfaceBg2:        RGBA(0, 0, 0, surface2Opacity),
		Border:            RGBA(0, 0, 0, borderOpacity),
		Primary:           AdjustBrightness(bg, -60),
		PrimaryHover:      AdjustBrightness(bg, -80),
		PrimaryText:       "#FFFFFF",
		Accent:            AdjustBrightness(bg, -50),
		Muted:             "rgba(0,0,0,0.6)",
		ShadowColor:       RGBA(shadow.R, shadow.G, shadow.B, 0.5),
		ShadowColorLight:  RGBA(shadow.R, shadow.G, shadow.B, 0.3),
		PrimaryGlow:       GlowColor(bg, 0.2),
		PrimaryGlowStrong: GlowColor(bg, 0.3),
		PrimaryGlowSubtle: GlowColor(bg, 0.15),
		EdgeAccent:        EdgeAccentColor(bg, 0.3),
		// Named for symmetry with the dark branch; it darkens here.
		LighterSurface: RGBA(0, 0, 0, math.Min(0.3, surfaceOpacity+0.1)),
	}
}

func darkScheme(bg string, c RGB, lightness float64) Scheme {
	darkness := 1 - lightness

	shadow := RGB{R: max(0, c.R-30), G: max(0, c.G-30), B: max(0, c.B-30)}

	return Scheme{
		TextPrimary:       "#FFFFFF",
		TextSecondary:     "rgba(255,255,255,0.9)",
		SurfaceBg:         RGBA(255, 255, 255, math.Min(0.2, 0.1+darkness*0.1)),
		SurfaceBg2:        RGBA(255, 255, 255, math.Min(0.15, 0.05+darkness*0.05)),
		Border:            RGBA(255, 255, 255, math.Min(0.3, 0.2+darkness*0.1)),
		Primary:           AdjustBrightness(bg, roundDelta(math.Min(60, 30+darkness*30))),
		PrimaryHover:      AdjustBrightness(bg, roundDelta(math.Min(80, 50+darkness*30))),
		PrimaryText:       "#FFFFFF",
		Accent:            FixedAccent,
		Muted:             RGBA(255, 255, 255, math.Min(0.7, 0.5+darkness*0.2)),
		ShadowColor:       RGBA(shadow.R, shadow.G, shadow.B, 0.5),
		ShadowColorLight:  RGBA(shadow.R, shadow.G, shadow.B, 0.3),
		PrimaryGlow:       GlowColor(bg, 0.35),
		PrimaryGlowStrong: GlowColor(bg, 0.45),
		PrimaryGlowSubtle: GlowColor(bg, 0.25),
		EdgeAccent:        EdgeAccentColor(bg, DefaultEdgeOpacity),
		LighterSurface:    LighterSurface(bg, DefaultSurfaceOpacity),
	}
}

// roundDelta turns a fractional brightness step into whole channel units.
func roundDelta(d float64) int {
	return int(math.Round(d))
}
