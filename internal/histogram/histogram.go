// Package histogram counts the distinct colours of a flat pixel sequence.
package histogram

import (
	"slices"

	"github.com/jmylchreest/vibrance/internal/colour"
)

// Histogram holds the distinct colours of an image in ascending order
// together with the number of pixels of each colour.
type Histogram struct {
	colors []colour.Color
	counts []int
	total  int
}

// New builds a histogram from pixels. The input slice is not modified.
func New(pixels []colour.Color) *Histogram {
	h := &Histogram{total: len(pixels)}
	if len(pixels) == 0 {
		return h
	}

	sorted := slices.Clone(pixels)
	slices.Sort(sorted)

	h.colors = make([]colour.Color, 0, countDistinct(sorted))
	h.counts = make([]int, 0, cap(h.colors))

	current := sorted[0]
	run := 1
	for _, c := range sorted[1:] {
		if c == current {
			run++
			continue
		}
		h.colors = append(h.colors, current)
		h.counts = append(h.counts, run)
		current = c
		run = 1
	}
	h.colors = append(h.colors, current)
	h.counts = append(h.counts, run)

	return h
}

// countDistinct counts runs in an ascending slice.
func countDistinct(sorted []colour.Color) int {
	if len(sorted) < 2 {
		return len(sorted)
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			n++
		}
	}
	return n
}

// Colors returns a copy of the distinct colours in ascending order.
func (h *Histogram) Colors() []colour.Color {
	return slices.Clone(h.colors)
}

// Counts returns a copy of the pixel counts, parallel to Colors.
func (h *Histogram) Counts() []int {
	return slices.Clone(h.counts)
}

// NumberOfColors returns the number of distinct colours.
func (h *Histogram) NumberOfColors() int {
	return len(h.colors)
}

// Total returns the number of pixels the histogram was built from.
func (h *Histogram) Total() int {
	return h.total
}

// All returns an iterator over (colour, count) pairs in ascending colour order.
func (h *Histogram) All() func(func(colour.Color, int) bool) {
	return func(yield func(colour.Color, int) bool) {
		for i, c := range h.colors {
			if !yield(c, h.counts[i]) {
				return
			}
		}
	}
}
