// Package quantize reduces a colour histogram to a small set of swatches.
package quantize

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/vibrance/internal/histogram"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// MaxColors is the largest colour budget a quantizer accepts.
const MaxColors = 256

// Quantizer reduces a histogram to at most maxColors swatches.
type Quantizer interface {
	Quantize(h *histogram.Histogram, maxColors int) []*swatch.Swatch
}

// Algorithm represents the quantization algorithm type.
type Algorithm string

const (
	// AlgorithmColorCut splits the colour cube by volume (the default).
	AlgorithmColorCut Algorithm = "colorcut"

	// AlgorithmKMeans uses weighted k-means clustering.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmColorCut, AlgorithmKMeans}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// Options holds settings shared by the quantizers.
type Options struct {
	// Seed seeds k-means initialisation. Ignored by ColorCut.
	Seed int64

	// Filter replaces DefaultFilter when set.
	Filter Filter

	Logger hclog.Logger
}

// New creates a Quantizer for the specified algorithm.
func New(alg Algorithm, opts Options) (Quantizer, error) {
	switch alg {
	case AlgorithmColorCut, "":
		return colorCutQuantizer{opts: opts}, nil
	case AlgorithmKMeans:
		k := NewKMeans(opts.Seed)
		if opts.Filter != nil {
			k.filter = opts.Filter
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// colorCutQuantizer adapts ColorCut to the Quantizer interface.
type colorCutQuantizer struct {
	opts Options
}

func (q colorCutQuantizer) Quantize(h *histogram.Histogram, maxColors int) []*swatch.Swatch {
	return NewColorCut(h, maxColors, WithFilter(q.opts.Filter), WithLogger(q.opts.Logger)).QuantizedColors()
}
