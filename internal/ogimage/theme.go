package ogimage

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
)

// Theme holds the card palette.
type Theme struct {
	Background color.RGBA
	Foreground color.RGBA
	Accent     color.RGBA
}

// ThemeFromConfig parses the configured #rrggbb colours.
func ThemeFromConfig(ic config.ImagesConfig) (Theme, error) {
	var t Theme
	var err error
	if t.Background, err = ParseHexColor(ic.Background); err != nil {
		return Theme{}, fmt.Errorf("background: %w", err)
	}
	if t.Foreground, err = ParseHexColor(ic.Foreground); err != nil {
		return Theme{}, fmt.Errorf("foreground: %w", err)
	}
	if t.Accent, err = ParseHexColor(ic.Accent); err != nil {
		return Theme{}, fmt.Errorf("accent: %w", err)
	}
	return t, nil
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Method badge palette, matching the API reference badges on the site:
// green for reads, yellow for writes, red for deletes.
var (
	badgeGreen  = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}
	badgeYellow = color.RGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}
	badgeRed    = color.RGBA{R: 0xf8, G: 0x71, B: 0x71, A: 0xff}
)

func methodColor(method string) color.RGBA {
	switch method {
	case "GET":
		return badgeGreen
	case "DELETE":
		return badgeRed
	default:
		return badgeYellow
	}
}

// blend mixes fg over bg with the given fg weight in [0,1].
func blend(fg, bg color.RGBA, weight float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*weight + float64(b)*(1-weight) + 0.5)
	}
	return color.RGBA{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 0xff}
}
