package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for strings that are not 6-digit hex
// colors.
var ErrInvalidColor = errors.New("invalid hex color")

// RGB is a color with channels in [0,255].
type RGB struct {
	R, G, B int
}

// ParseHexColor parses "#rrggbb" (leading '#' optional).
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, ErrInvalidColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, ErrInvalidColor
	}
	return RGB{
		R: int(v >> 16 & 0xff),
		G: int(v >> 8 & 0xff),
		B: int(v & 0xff),
	}, nil
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// AdjustBrightness scales each channel by (1 + percent/100), rounding
// half up and clamping to [0,255]. Positive percent brightens,
// negative darkens.
func (c RGB) AdjustBrightness(percent float64) RGB {
	f := 1 + percent/100
	return RGB{
		R: clampChannel(math.Round(float64(c.R) * f)),
		G: clampChannel(math.Round(float64(c.G) * f)),
		B: clampChannel(math.Round(float64(c.B) * f)),
	}
}

// GradientStops derives the two accent gradient stops from a base
// hex color: one brightened and one darkened by 20%.
func GradientStops(hex string) (lighter, darker string, err error) {
	c, err := ParseHexColor(hex)
	if err != nil {
		return "", "", err
	}
	return c.AdjustBrightness(20).Hex(), c.AdjustBrightness(-20).Hex(), nil
}

func clampChannel(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
