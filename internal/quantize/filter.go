package quantize

import "github.com/jmylchreest/vibrance/internal/colour"

// Thresholds used by DefaultFilter.
const (
	BlackMaxLightness = 0.05
	WhiteMinLightness = 0.95

	RedILineMinHue        = 10.0
	RedILineMaxHue        = 37.0
	RedILineMaxSaturation = 0.82
)

// Filter reports whether a colour should be ignored by a quantizer.
type Filter func(hsl colour.HSL) bool

// DefaultFilter ignores near-black, near-white and colours close to the red
// I-line (skin tones), which otherwise dominate most photographs.
func DefaultFilter(hsl colour.HSL) bool {
	return IsBlack(hsl) || IsWhite(hsl) || IsNearRedILine(hsl)
}

// NoFilter keeps every colour.
func NoFilter(colour.HSL) bool {
	return false
}

// IsBlack reports whether the colour is close to black.
func IsBlack(hsl colour.HSL) bool {
	return hsl.L <= BlackMaxLightness
}

// IsWhite reports whether the colour is close to white.
func IsWhite(hsl colour.HSL) bool {
	return hsl.L >= WhiteMinLightness
}

// IsNearRedILine reports whether the colour lies near the red I-line.
func IsNearRedILine(hsl colour.HSL) bool {
	return hsl.H >= RedILineMinHue && hsl.H <= RedILineMaxHue && hsl.S <= RedILineMaxSaturation
}
