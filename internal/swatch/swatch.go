// Package swatch provides the representative colour type produced by the
// quantizers and consumed by palette selection.
package swatch

import (
	"fmt"
	"sync"

	"github.com/jmylchreest/vibrance/internal/colour"
)

// Minimum contrast ratios for text drawn on top of a swatch.
const (
	MinContrastTitleText = 3.0
	MinContrastBodyText  = 4.5
)

// Swatch is an immutable colour together with the number of source pixels it
// represents. HSL is computed at construction; the title and body text
// colours are computed once on first use.
type Swatch struct {
	rgb        colour.Color
	population int
	hsl        colour.HSL

	textOnce  sync.Once
	titleText colour.Color
	bodyText  colour.Color
	textErr   error
}

// New creates a swatch. The colour is forced fully opaque.
func New(rgb colour.Color, population int) *Swatch {
	rgb = rgb.WithAlpha(colour.OpaqueAlpha)
	return &Swatch{
		rgb:        rgb,
		population: population,
		hsl:        rgb.HSL(),
	}
}

// FromHSL creates a swatch from an HSL value.
func FromHSL(hsl colour.HSL, population int) *Swatch {
	return New(colour.HSLToRGB(hsl), population)
}

// RGB returns the packed, opaque colour of the swatch.
func (s *Swatch) RGB() colour.Color {
	return s.rgb
}

// HSL returns the swatch colour in HSL form.
func (s *Swatch) HSL() colour.HSL {
	return s.hsl
}

// Population returns the number of pixels represented by the swatch.
func (s *Swatch) Population() int {
	return s.population
}

// Hex returns the swatch colour as a hex string.
func (s *Swatch) Hex() string {
	return s.rgb.Hex()
}

// TextColors returns the title and body text colours for this swatch: white
// or black with the minimum alpha meeting MinContrastTitleText and
// MinContrastBodyText respectively.
func (s *Swatch) TextColors() (title, body colour.Color, err error) {
	s.textOnce.Do(func() {
		s.titleText, s.textErr = colour.TextColorForBackground(s.rgb, MinContrastTitleText)
		if s.textErr != nil {
			return
		}
		s.bodyText, s.textErr = colour.TextColorForBackground(s.rgb, MinContrastBodyText)
	})
	return s.titleText, s.bodyText, s.textErr
}

// TitleTextColor returns a colour suitable for title text on this swatch.
// Swatches are always opaque, so white or black always qualifies; opaque
// black is returned if the search fails anyway.
func (s *Swatch) TitleTextColor() colour.Color {
	title, _, err := s.TextColors()
	if err != nil {
		return colour.Black
	}
	return title
}

// BodyTextColor returns a colour suitable for body text on this swatch.
func (s *Swatch) BodyTextColor() colour.Color {
	_, body, err := s.TextColors()
	if err != nil {
		return colour.Black
	}
	return body
}

// String returns a human-readable representation of the swatch.
func (s *Swatch) String() string {
	return fmt.Sprintf("Swatch{%s, population: %d, hsl: (%.1f, %.2f, %.2f)}",
		s.rgb.Hex(), s.population, s.hsl.H, s.hsl.S, s.hsl.L)
}
