// Package colour provides the packed colour representation used throughout
// vibrance together with colour-space conversions and WCAG contrast helpers.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a packed 32-bit colour value.
//
// The layout is (alpha << 24) | (red << 16) | (green << 8) | blue. Red, green
// and blue range over [0, 255]; alpha ranges over [0, 127] where 127 is fully
// opaque and 0 is fully transparent.
type Color uint32

// OpaqueAlpha is the alpha value of a fully opaque colour.
const OpaqueAlpha = 127

// Common colours.
const (
	White Color = 0x7fffffff
	Black Color = 0x7f000000
)

// Components holds the unpacked channels of a Color.
type Components struct {
	Alpha uint8 `json:"a"`
	Red   uint8 `json:"r"`
	Green uint8 `json:"g"`
	Blue  uint8 `json:"b"`
}

// PackRGB returns a fully opaque colour from red, green and blue components.
func PackRGB(r, g, b uint8) Color {
	return Color(OpaqueAlpha)<<24 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// PackARGB returns a colour from alpha, red, green and blue components.
// Alpha should be within [0, 127]; no range check is performed, so larger
// values produce an undefined colour.
func PackARGB(a, r, g, b uint8) Color {
	return Color(a)<<24 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Alpha returns the alpha component on the 0-127 scale.
func (c Color) Alpha() uint8 {
	return uint8((c >> 24) & 0x7f)
}

// Red returns the red component.
func (c Color) Red() uint8 {
	return uint8(c >> 16)
}

// Green returns the green component.
func (c Color) Green() uint8 {
	return uint8(c >> 8)
}

// Blue returns the blue component.
func (c Color) Blue() uint8 {
	return uint8(c)
}

// Components unpacks the colour.
func (c Color) Components() Components {
	return Components{
		Alpha: c.Alpha(),
		Red:   c.Red(),
		Green: c.Green(),
		Blue:  c.Blue(),
	}
}

// RGB returns the colour with its alpha component discarded.
func (c Color) RGB() uint32 {
	return uint32(c) & 0x00ffffff
}

// WithAlpha returns the colour with its alpha replaced.
func (c Color) WithAlpha(alpha uint8) Color {
	return Color(c.RGB()) | Color(alpha)<<24
}

// IsOpaque reports whether the colour is fully opaque.
func (c Color) IsOpaque() bool {
	return c.Alpha() == OpaqueAlpha
}

// Hex returns the colour as a hex string (e.g., "#1a2b3c"). Alpha is omitted.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red(), c.Green(), c.Blue())
}

// String returns the colour in the format "rgb(r, g, b)", or
// "rgba(r, g, b, a)" when it is not opaque.
func (c Color) String() string {
	if c.IsOpaque() {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.Red(), c.Green(), c.Blue())
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.Red(), c.Green(), c.Blue(), float64(c.Alpha())/OpaqueAlpha)
}

// NRGBA converts the colour to a non-premultiplied 8-bit colour, scaling
// alpha from [0, 127] to [0, 255].
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: c.Red(),
		G: c.Green(),
		B: c.Blue(),
		A: uint8((uint32(c.Alpha())*255 + OpaqueAlpha/2) / OpaqueAlpha),
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// FromColor converts any color.Color into a packed Color, scaling alpha
// from [0, 255] to [0, 127].
func FromColor(c color.Color) Color {
	if packed, ok := c.(Color); ok {
		return packed
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	alpha := (uint32(n.A)*OpaqueAlpha + 127) / 255
	return PackARGB(uint8(alpha), n.R, n.G, n.B)
}

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form into an
// opaque colour.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid hex colour %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return Color(OpaqueAlpha)<<24 | Color(v), nil
}
