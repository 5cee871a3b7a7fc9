// Package extract runs the end-to-end palette pipeline: read an image,
// decode and downscale it, build a histogram, quantize it and select the
// palette roles.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/vibrance/internal/histogram"
	imageutil "github.com/jmylchreest/vibrance/internal/image"
	"github.com/jmylchreest/vibrance/internal/palette"
	"github.com/jmylchreest/vibrance/internal/quantize"
	"github.com/jmylchreest/vibrance/internal/swatch"
	httputil "github.com/jmylchreest/vibrance/internal/util/http"
)

// Source reads the raw bytes of an image file or URL.
type Source interface {
	Read(ctx context.Context, src string) ([]byte, error)
}

// Cache stores quantized swatches by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]*swatch.Swatch, bool, error)
	Put(ctx context.Context, key, source string, swatches []*swatch.Swatch) error
}

// Result is the outcome of extracting a palette from one image.
type Result struct {
	Source  string
	Key     string
	Palette *palette.Palette

	// Cached is true when the swatches came from the cache.
	Cached bool

	// Width and Height are the dimensions used for the histogram. They are
	// zero for cached results.
	Width, Height int

	// Colours is the number of distinct colours in the histogram.
	Colours int

	Duration time.Duration
}

// Extractor extracts palettes from images.
type Extractor struct {
	cfg       Config
	source    Source
	cache     Cache
	logger    hclog.Logger
	quantizer quantize.Quantizer
	maxBytes  int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSource replaces the default file and URL source.
func WithSource(s Source) Option {
	return func(e *Extractor) {
		if s != nil {
			e.source = s
		}
	}
}

// WithCache enables the swatch cache.
func WithCache(c Cache) Option {
	return func(e *Extractor) {
		e.cache = c
	}
}

// WithLogger sets the logger. The extractor logs under the "extract" name.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger.Named("extract")
		}
	}
}

// WithMaxBytes caps the decompressed size of an input image.
func WithMaxBytes(n int64) Option {
	return func(e *Extractor) {
		e.maxBytes = n
	}
}

// New creates an Extractor for cfg.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}

	e := &Extractor{
		cfg:    cfg,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = imageutil.NewSmartLoader(httputil.FetchOptions{MaxBytes: e.maxBytes})
	}

	qopts := quantize.Options{Seed: cfg.Seed, Logger: e.logger}
	if cfg.NoFilter {
		qopts.Filter = quantize.NoFilter
	}
	q, err := quantize.New(cfg.Algorithm, qopts)
	if err != nil {
		return nil, err
	}
	e.quantizer = q

	return e, nil
}

// Config returns the extraction configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Key returns the cache key for image content under the extractor's config.
func (e *Extractor) Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + "/" + e.cfg.Key()
}

// Extract reads src, consulting the cache when one is configured, and
// returns its palette.
func (e *Extractor) Extract(ctx context.Context, src string) (*Result, error) {
	start := time.Now()

	data, err := e.source.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	key := e.Key(data)
	logger := e.logger.With("source", src)

	if e.cache != nil {
		swatches, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if ok {
			logger.Debug("cache hit", "swatches", len(swatches))
			return &Result{
				Source:   src,
				Key:      key,
				Palette:  palette.Generate(swatches),
				Cached:   true,
				Duration: time.Since(start),
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := imageutil.Decode(data, e.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	logger.Debug("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	res := e.fromImage(img)
	res.Source = src
	res.Key = key

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, src, res.Palette.Swatches()); err != nil {
			logger.Warn("cache store failed", "error", err)
		}
	}

	res.Duration = time.Since(start)
	logger.Debug("extracted palette", "roles", res.Palette.Len(), "swatches", len(res.Palette.Swatches()), "duration", res.Duration)
	return res, nil
}

// ExtractImage returns the palette of an already decoded image. The cache is
// not consulted.
func (e *Extractor) ExtractImage(img image.Image) *Result {
	start := time.Now()
	res := e.fromImage(img)
	res.Duration = time.Since(start)
	return res
}

func (e *Extractor) fromImage(img image.Image) *Result {
	scaled := imageutil.Downscale(img, e.cfg.MaxDimension)
	h := histogram.New(imageutil.Pixels(scaled))
	swatches := e.quantizer.Quantize(h, e.cfg.Colours)

	return &Result{
		Palette: palette.Generate(swatches),
		Width:   scaled.Bounds().Dx(),
		Height:  scaled.Bounds().Dy(),
		Colours: h.NumberOfColors(),
	}
}
