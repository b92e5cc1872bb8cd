// Package colorutil provides shared color utilities for fspdf.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow      = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Transparent = color.RGBA{}
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (the # is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
