package palette

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// HSLJSON represents an HSL triple in JSON output.
type HSLJSON struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// SwatchJSON represents a swatch in JSON output format.
type SwatchJSON struct {
	Role       Role    `json:"role,omitempty"`
	Hex        string  `json:"hex"`
	RGB        [3]int  `json:"rgb"`
	HSL        HSLJSON `json:"hsl"`
	Population int     `json:"population"`
	TitleText  string  `json:"title_text"`
	BodyText   string  `json:"body_text"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Roles    []SwatchJSON `json:"roles"`
	Swatches []SwatchJSON `json:"swatches"`
}

func swatchJSON(role Role, s *swatch.Swatch) SwatchJSON {
	rgb := s.RGB()
	hsl := s.HSL()
	return SwatchJSON{
		Role:       role,
		Hex:        rgb.Hex(),
		RGB:        [3]int{int(rgb.Red()), int(rgb.Green()), int(rgb.Blue())},
		HSL:        HSLJSON{H: round(hsl.H, 2), S: round(hsl.S, 4), L: round(hsl.L, 4)},
		Population: s.Population(),
		TitleText:  s.TitleTextColor().String(),
		BodyText:   s.BodyTextColor().String(),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// JSON returns the JSON form of the palette.
func (p *Palette) JSON() PaletteJSON {
	out := PaletteJSON{
		Roles:    make([]SwatchJSON, 0, len(p.roles)),
		Swatches: make([]SwatchJSON, 0, len(p.swatches)),
	}
	for role, s := range p.Roles() {
		out.Roles = append(out.Roles, swatchJSON(role, s))
	}
	for _, s := range p.swatches {
		if s != nil {
			out.Swatches = append(out.Swatches, swatchJSON("", s))
		}
	}
	return out
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.JSON(), "", "  ")
}

// ToHex returns one "role=#rrggbb" line per filled role.
func (p *Palette) ToHex() []string {
	out := make([]string, 0, len(p.roles))
	for role, s := range p.Roles() {
		out = append(out, fmt.Sprintf("%s=%s", role, s.RGB().Hex()))
	}
	return out
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	return p.StringWithPreview(false)
}

// StringWithPreview returns a human-readable representation of the palette,
// with ANSI colour blocks when preview is true.
func (p *Palette) StringWithPreview(preview bool) string {
	if len(p.roles) == 0 {
		return "Empty palette"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Palette with %d roles from %d swatches:\n", len(p.roles), len(p.swatches))
	for role, s := range p.Roles() {
		rgb := s.RGB()
		hsl := s.HSL()
		if preview {
			fmt.Fprintf(&b, "  %s ", colour.ColourPreviewWithText(rgb, s.BodyTextColor(), "Aa", 6))
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-14s %s  hsl(%3.0f, %3.0f%%, %3.0f%%)  population %s\n",
			role.Title(), rgb.Hex(), hsl.H, hsl.S*100, hsl.L*100, humanize.Comma(int64(s.Population())))
	}
	return b.String()
}
