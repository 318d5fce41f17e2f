// SPDX-License-Identifier: MIT

// Package palette derives a complete UI color scheme from a single background
// color. Everything here is pure: no I/O, no clock, no randomness, so results
// can be cached by input string alone.
//
// Malformed input never produces an error. Every function documents the
// fallback value it returns instead, so a bad admin-typed color can never
// break a page render.
package palette

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FallbackHex is what NormalizeToHex returns for input it cannot parse.
const FallbackHex = "#000000"

// LightThreshold splits light backgrounds from dark ones. The comparison is
// strictly greater-than.
const LightThreshold = 0.5

// RGB holds three 0-255 channel values.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	rgbPattern = regexp.MustCompile(`(?i)^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*\d*\.?\d+\s*)?\)$`)
	hslPattern = regexp.MustCompile(`(?i)^hsla?\(\s*(-?\d*\.?\d+)(?:deg)?\s*,\s*(\d*\.?\d+)%\s*,\s*(\d*\.?\d+)%\s*(?:,\s*\d*\.?\d+%?\s*)?\)$`)
)

// HexToRGB parses "#RRGGBB" or "RRGGBB". The second return value is false for
// anything else, including the 3-digit shorthand.
func HexToRGB(hex string) (RGB, bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGB{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}

	return RGB{
		R: int(v >> 16 & 0xFF),
		G: int(v >> 8 & 0xFF),
		B: int(v & 0xFF),
	}, true
}

// RGBToHex encodes three channels as uppercase "#RRGGBB". Channels outside
// 0-255 are clamped.
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", clampChannel(r), clampChannel(g), clampChannel(b))
}

// RelativeLuminance returns the WCAG relative luminance of hex in [0,1], or
// 0.5 when hex cannot be parsed.
func RelativeLuminance(hex string) float64 {
	c, ok := HexToRGB(hex)
	if !ok {
		return 0.5
	}
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// IsLight reports whether hex is a light background.
func IsLight(hex string) bool {
	return RelativeLuminance(hex) > LightThreshold
}

// AdjustBrightness adds delta to every channel and clamps to 0-255. Negative
// deltas darken. Unparseable input is returned as-is.
func AdjustBrightness(hex string, delta int) string {
	c, ok := HexToRGB(hex)
	if !ok {
		return hex
	}
	return RGBToHex(c.R+delta, c.G+delta, c.B+delta)
}

// NormalizeToHex converts an arbitrary CSS color string to "#RRGGBB".
//
// Strings starting with "#" are returned unchanged. rgb()/rgba() with integer
// channels and hsl()/hsla() are converted, with alpha discarded. Anything
// else yields FallbackHex.
func NormalizeToHex(color string) string {
	if hex, ok := ToHex(color); ok {
		return hex
	}
	return FallbackHex
}

// ToHex is NormalizeToHex without the fallback: ok is false when color is
// not in one of the recognized forms.
func ToHex(color string) (string, bool) {
	s := strings.TrimSpace(color)
	if strings.HasPrefix(s, "#") {
		return s, true
	}

	if m := rgbPattern.FindStringSubmatch(s); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		return RGBToHex(r, g, b), true
	}

	if m := hslPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		light, _ := strconv.ParseFloat(m[3], 64)

		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		c := colorful.Hsl(h, math.Min(sat, 100)/100, math.Min(light, 100)/100).Clamped()
		r, g, b := c.RGB255()
		return RGBToHex(int(r), int(g), int(b)), true
	}

	return "", false
}

// RGBA formats an rgba() string. Alpha uses the shortest decimal form that
// round-trips, so 0.35 prints as "0.35".
func RGBA(r, g, b int, alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)",
		clampChannel(r), clampChannel(g), clampChannel(b),
		strconv.FormatFloat(alpha, 'f', -1, 64))
}

func linearize(channel int) float64 {
	c := float64(channel) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
