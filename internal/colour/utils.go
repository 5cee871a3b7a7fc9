package colour

import (
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// MinAlphaSearchMaxIterations caps the binary search in MinimumAlpha.
	MinAlphaSearchMaxIterations = 10

	// MinAlphaSearchPrecision is the alpha range (0-127 scale) at which the
	// search stops.
	MinAlphaSearchPrecision = 5
)

var (
	// ErrTranslucentBackground is returned by contrast calculations when the
	// background colour is not fully opaque.
	ErrTranslucentBackground = errors.New("background can not be translucent")

	// ErrNoContrastingText is returned when neither white nor black text can
	// reach the requested contrast ratio.
	ErrNoContrastingText = errors.New("no text colour provides sufficient contrast")
)

// HSL is a colour in hue/saturation/lightness form.
// H is in degrees [0, 360); S and L are in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// RGBToHSL converts 8-bit RGB components to HSL.
func RGBToHSL(r, g, b uint8) HSL {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, l := c.Hsl()
	return HSL{H: h, S: s, L: l}
}

// HSL returns the colour converted to HSL. Alpha is ignored.
func (c Color) HSL() HSL {
	return RGBToHSL(c.Red(), c.Green(), c.Blue())
}

// HSLToRGB converts HSL to an opaque colour, rounding each channel to the
// nearest integer and clamping to [0, 255].
func HSLToRGB(hsl HSL) Color {
	r, g, b := colorful.Hsl(hsl.H, hsl.S, hsl.L).Clamped().RGB255()
	return PackRGB(r, g, b)
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c Color) float64 {
	rf := gammaCorrect(float64(c.Red()) / 255.0)
	gf := gammaCorrect(float64(c.Green()) / 255.0)
	bf := gammaCorrect(float64(c.Blue()) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// CompositeColors composites a potentially translucent foreground over a
// background and returns the result.
func CompositeColors(foreground, background Color) Color {
	fa := float64(foreground.Alpha()) / OpaqueAlpha
	ba := float64(background.Alpha()) / OpaqueAlpha

	a := fa + ba*(1-fa)
	if a == 0 {
		return 0
	}

	blend := func(f, b uint8) uint8 {
		v := (float64(f)*fa + float64(b)*ba*(1-fa)) / a
		return uint8(math.Round(math.Max(0, math.Min(255, v))))
	}

	return PackARGB(
		uint8(math.Round(a*OpaqueAlpha)),
		blend(foreground.Red(), background.Red()),
		blend(foreground.Green(), background.Green()),
		blend(foreground.Blue(), background.Blue()),
	)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21. A translucent foreground is composited
// over the background first; a translucent background is an error.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(foreground, background Color) (float64, error) {
	if !background.IsOpaque() {
		return 0, ErrTranslucentBackground
	}

	if !foreground.IsOpaque() {
		foreground = CompositeColors(foreground, background)
	}

	l1 := Luminance(foreground) + 0.05
	l2 := Luminance(background) + 0.05

	return math.Max(l1, l2) / math.Min(l1, l2), nil
}

// MinimumAlpha finds the minimum alpha (0-127) which can be applied to
// foreground so that it has a contrast of at least minContrastRatio against
// background. ok is false when even the opaque foreground is insufficient.
func MinimumAlpha(foreground, background Color, minContrastRatio float64) (alpha int, ok bool, err error) {
	if !background.IsOpaque() {
		return 0, false, ErrTranslucentBackground
	}

	ratio, err := ContrastRatio(foreground.WithAlpha(OpaqueAlpha), background)
	if err != nil {
		return 0, false, err
	}
	if ratio < minContrastRatio {
		return 0, false, nil
	}

	minAlpha := 0
	maxAlpha := OpaqueAlpha

	for i := 0; i <= MinAlphaSearchMaxIterations && maxAlpha-minAlpha > MinAlphaSearchPrecision; i++ {
		testAlpha := (minAlpha + maxAlpha) / 2

		ratio, err = ContrastRatio(foreground.WithAlpha(uint8(testAlpha)), background)
		if err != nil {
			return 0, false, err
		}

		if ratio < minContrastRatio {
			minAlpha = testAlpha
		} else {
			maxAlpha = testAlpha
		}
	}

	// The upper end of the range is known to pass.
	return maxAlpha, true, nil
}

// TextColorForBackground returns white or black text, with the lowest alpha
// that still reaches minContrastRatio on the given background. White is
// preferred.
func TextColorForBackground(background Color, minContrastRatio float64) (Color, error) {
	for _, text := range []Color{White, Black} {
		alpha, ok, err := MinimumAlpha(text, background, minContrastRatio)
		if err != nil {
			return 0, err
		}
		if ok {
			return text.WithAlpha(uint8(alpha)), nil
		}
	}
	return 0, ErrNoContrastingText
}
