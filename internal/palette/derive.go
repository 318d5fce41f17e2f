// SPDX-License-Identifier: MIT
package palette

// Default opacities for the derived accent colors.
const (
	DefaultGlowOpacity    = 0.35
	DefaultEdgeOpacity    = 0.4
	DefaultSurfaceOpacity = 0.9
)

// fallbackRGB is the channel triple of the default background (#400810).
var fallbackRGB = RGB{R: 64, G: 8, B: 16}

// GlowColor tints a glow with the background's own channels.
func GlowColor(bg string, opacity float64) string {
	c := rgbOrFallback(bg)
	return RGBA(c.R, c.G, c.B, opacity)
}

// EdgeAccentColor tints an edge highlight with the background's own channels.
func EdgeAccentColor(bg string, opacity float64) string {
	c := rgbOrFallback(bg)
	return RGBA(c.R, c.G, c.B, opacity)
}

// LighterSurface returns a surface that stands out from bg. On light
// backgrounds that means a black overlay at 30% of opacity; on dark ones each
// channel is raised by 20.
func LighterSurface(bg string, opacity float64) string {
	if IsLight(bg) {
		return RGBA(0, 0, 0, opacity*0.3)
	}
	c := rgbOrFallback(bg)
	return RGBA(min(255, c.R+20), min(255, c.G+20), min(255, c.B+20), opacity)
}

func rgbOrFallback(hex string) RGB {
	if c, ok := HexToRGB(hex); ok {
		return c
	}
	return fallbackRGB
}
