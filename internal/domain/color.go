// Package domain contains core domain types for img2wled.
package domain

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// BytesPerPixel is the number of bytes per pixel (RGB).
const BytesPerPixel = 3

// RGB represents an RGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// NewRGB creates a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// RGBFromColor converts any color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return RGB{}
	}
	return RGB{R: n.R, G: n.G, B: n.B}
}

// Equals checks if two RGB colors are equal.
func (c RGB) Equals(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the RGB color.
func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalJSON encodes the color as a [r, g, b] array, which is the form the
// controller accepts inside segment item lists.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

// UnmarshalJSON decodes a [r, g, b] array.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid color %s: %w", data, err)
	}
	if len(v) != 3 {
		return fmt.Errorf("invalid color %s: want 3 channels, got %d", data, len(v))
	}
	for _, ch := range v {
		if ch < 0 || ch > 255 {
			return fmt.Errorf("invalid color %s: channel %d out of range", data, ch)
		}
	}
	*c = RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}
	return nil
}

// ParseHexColor parses "#rgb" or "#rrggbb". Short forms are expanded by
// repeating each digit, so "#f80" becomes "#ff8800".
func ParseHexColor(s string) (RGB, error) {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return RGB{}, fmt.Errorf("invalid hex color %q: want #rgb or #rrggbb", s)
	}
	for _, r := range s[1:] {
		if !isHexDigit(r) {
			return RGB{}, fmt.Errorf("invalid hex color %q: bad digit %q", s, r)
		}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return NewRGB(r, g, b), nil
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
