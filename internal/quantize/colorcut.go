package quantize

import (
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/histogram"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// ColorCut is a colour quantizer based on median cut, but optimised for
// picking out distinct colours rather than representative ones.
//
// The colour space is a cube with one dimension per RGB channel. The cube is
// repeatedly divided until it holds the requested number of boxes, and each
// box is averaged into a swatch. Unlike median cut, which splits boxes so each
// holds roughly the same population, ColorCut always splits the box with the
// largest colour volume, so the result favours colour diversity.
type ColorCut struct {
	space     *colorSpace
	filter    Filter
	logger    hclog.Logger
	quantized []*swatch.Swatch
}

// ColorCutOption configures a ColorCut quantizer.
type ColorCutOption func(*ColorCut)

// WithFilter replaces DefaultFilter.
func WithFilter(f Filter) ColorCutOption {
	return func(c *ColorCut) {
		if f != nil {
			c.filter = f
		}
	}
}

// WithLogger sets the logger used to trace box splitting.
func WithLogger(logger hclog.Logger) ColorCutOption {
	return func(c *ColorCut) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewColorCut quantizes the histogram into at most maxColors swatches.
func NewColorCut(h *histogram.Histogram, maxColors int, opts ...ColorCutOption) *ColorCut {
	c := &ColorCut{
		filter: DefaultFilter,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.space = &colorSpace{
		populations: make(map[colour.Color]int, h.NumberOfColors()),
	}
	for rgb, count := range h.All() {
		c.space.populations[rgb] = count
		if !c.shouldIgnore(rgb.HSL()) {
			c.space.colors = append(c.space.colors, rgb)
		}
	}

	valid := len(c.space.colors)
	c.logger.Debug("filtered histogram", "distinct", h.NumberOfColors(), "valid", valid, "max_colors", maxColors)

	if valid <= maxColors {
		// Few enough colours to use each one directly.
		c.quantized = make([]*swatch.Swatch, 0, valid)
		for _, rgb := range c.space.colors {
			c.quantized = append(c.quantized, swatch.New(rgb, c.space.populations[rgb]))
		}
		return c
	}

	c.quantized = c.quantizePixels(valid-1, maxColors)
	return c
}

// QuantizedColors returns the quantized swatches.
func (c *ColorCut) QuantizedColors() []*swatch.Swatch {
	return c.quantized
}

func (c *ColorCut) quantizePixels(maxColorIndex, maxColors int) []*swatch.Swatch {
	// Always split the largest box first.
	pq := &volumeQueue{}
	pq.offer(newVBox(c.space, 0, maxColorIndex))

	c.splitBoxes(pq, maxColors)

	return c.generateAverageColors(pq.boxes())
}

// splitBoxes pops boxes from the queue and splits them until the queue holds
// maxSize boxes or the largest box can no longer be split.
func (c *ColorCut) splitBoxes(pq *volumeQueue, maxSize int) {
	for pq.Len() < maxSize {
		box := pq.poll()
		if box == nil {
			return
		}
		if !box.CanSplit() {
			// Put it back so its colour is still emitted.
			pq.offer(box)
			return
		}

		next, err := box.Split()
		if err != nil {
			c.logger.Error("split failed", "error", err, "colors", box.ColorCount())
			pq.offer(box)
			return
		}
		c.logger.Trace("split box", "volume", box.Volume(), "new_volume", next.Volume(), "queue", pq.Len()+2)
		pq.offer(next)
		pq.offer(box)
	}
}

func (c *ColorCut) generateAverageColors(boxes []*VBox) []*swatch.Swatch {
	colors := make([]*swatch.Swatch, 0, len(boxes))
	for _, box := range boxes {
		s := box.AverageColor()
		// Averaging can still produce a colour we do not want.
		if !c.shouldIgnore(s.HSL()) {
			colors = append(colors, s)
		}
	}
	return colors
}

func (c *ColorCut) shouldIgnore(hsl colour.HSL) bool {
	return c.filter(hsl)
}
