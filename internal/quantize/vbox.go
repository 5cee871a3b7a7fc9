package quantize

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// ErrCannotSplit is returned when splitting a box that holds a single colour.
var ErrCannotSplit = errors.New("can not split a box with only 1 color")

// Dimension identifies a colour channel.
type Dimension int

// Colour channels, in tie-break priority order.
const (
	DimensionRed Dimension = iota
	DimensionGreen
	DimensionBlue
)

// String returns the channel name.
func (d Dimension) String() string {
	switch d {
	case DimensionRed:
		return "red"
	case DimensionGreen:
		return "green"
	case DimensionBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// value returns the channel of c selected by d.
func (d Dimension) value(c colour.Color) uint8 {
	switch d {
	case DimensionGreen:
		return c.Green()
	case DimensionBlue:
		return c.Blue()
	default:
		return c.Red()
	}
}

// colorSpace is the colour list and population lookup shared by every box
// of one quantization run.
type colorSpace struct {
	colors      []colour.Color
	populations map[colour.Color]int
}

// VBox is a tightly fitting box around the colours in the inclusive index
// range [lower, upper] of a shared colour list.
type VBox struct {
	space *colorSpace
	lower int
	upper int

	minRed, maxRed     uint8
	minGreen, maxGreen uint8
	minBlue, maxBlue   uint8
}

func newVBox(space *colorSpace, lower, upper int) *VBox {
	b := &VBox{space: space, lower: lower, upper: upper}
	b.fit()
	return b
}

// Volume returns the product of the per-channel spans (max-min+1).
func (b *VBox) Volume() int {
	return (int(b.maxRed) - int(b.minRed) + 1) *
		(int(b.maxGreen) - int(b.minGreen) + 1) *
		(int(b.maxBlue) - int(b.minBlue) + 1)
}

// ColorCount returns the number of distinct colours in the box.
func (b *VBox) ColorCount() int {
	return b.upper - b.lower + 1
}

// CanSplit reports whether the box holds more than one colour.
func (b *VBox) CanSplit() bool {
	return b.ColorCount() > 1
}

// fit recomputes the tight channel bounds of the box.
func (b *VBox) fit() {
	b.minRed, b.minGreen, b.minBlue = math.MaxUint8, math.MaxUint8, math.MaxUint8
	b.maxRed, b.maxGreen, b.maxBlue = 0, 0, 0

	for _, c := range b.space.colors[b.lower : b.upper+1] {
		r, g, bl := c.Red(), c.Green(), c.Blue()
		b.minRed, b.maxRed = min(b.minRed, r), max(b.maxRed, r)
		b.minGreen, b.maxGreen = min(b.minGreen, g), max(b.maxGreen, g)
		b.minBlue, b.maxBlue = min(b.minBlue, bl), max(b.maxBlue, bl)
	}
}

// LongestDimension returns the channel with the largest span. Ties resolve to
// red, then green, then blue.
func (b *VBox) LongestDimension() Dimension {
	red := int(b.maxRed) - int(b.minRed)
	green := int(b.maxGreen) - int(b.minGreen)
	blue := int(b.maxBlue) - int(b.minBlue)

	switch {
	case red >= green && red >= blue:
		return DimensionRed
	case green >= blue:
		return DimensionGreen
	default:
		return DimensionBlue
	}
}

// midPoint returns the midpoint of the box bounds in dimension d.
func (b *VBox) midPoint(d Dimension) float64 {
	switch d {
	case DimensionGreen:
		return (float64(b.minGreen) + float64(b.maxGreen)) / 2
	case DimensionBlue:
		return (float64(b.minBlue) + float64(b.maxBlue)) / 2
	default:
		return (float64(b.minRed) + float64(b.maxRed)) / 2
	}
}

// Split splits the box at the midpoint of its longest dimension. This box
// keeps the lower part and the returned box holds the rest.
func (b *VBox) Split() (*VBox, error) {
	if !b.CanSplit() {
		return nil, ErrCannotSplit
	}

	splitPoint := b.findSplitPoint()

	next := newVBox(b.space, splitPoint+1, b.upper)
	b.upper = splitPoint
	b.fit()

	return next, nil
}

// findSplitPoint orders the box's colours along the longest dimension and
// returns the last index that stays in this box.
func (b *VBox) findSplitPoint() int {
	dim := b.LongestDimension()
	mid := b.midPoint(dim)

	sortByDimension(b.space.colors[b.lower:b.upper+1], dim)

	for i := b.lower; i <= b.upper; i++ {
		if float64(dim.value(b.space.colors[i])) >= mid {
			// Never split on the upper index, it would produce an empty box.
			return min(i, b.upper-1)
		}
	}

	return b.lower
}

// sortByDimension orders colors by the given channel, breaking ties by the
// packed RGB value as if the channel were the most significant byte.
func sortByDimension(colors []colour.Color, dim Dimension) {
	key := func(c colour.Color) uint32 {
		return uint32(dim.value(c))<<24 | c.RGB()
	}
	slices.SortStableFunc(colors, func(a, b colour.Color) int {
		return cmp.Compare(key(a), key(b))
	})
}

// AverageColor returns a swatch with the population-weighted mean colour of
// the box and the box's total population.
func (b *VBox) AverageColor() *swatch.Swatch {
	var redSum, greenSum, blueSum, total int

	for _, c := range b.space.colors[b.lower : b.upper+1] {
		population := b.space.populations[c]
		total += population
		redSum += population * int(c.Red())
		greenSum += population * int(c.Green())
		blueSum += population * int(c.Blue())
	}

	if total == 0 {
		return swatch.New(colour.Black, 0)
	}

	average := func(sum int) uint8 {
		v := math.Round(float64(sum) / float64(total))
		return uint8(math.Max(0, math.Min(255, v)))
	}

	return swatch.New(colour.PackRGB(average(redSum), average(greenSum), average(blueSum)), total)
}
