package extract

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/vibrance/internal/quantize"
)

// Environment variables read by ApplyEnv.
const (
	EnvColours      = "VIBRANCE_COLOURS"
	EnvMaxDimension = "VIBRANCE_MAX_DIMENSION"
	EnvAlgorithm    = "VIBRANCE_ALGORITHM"
	EnvSeed         = "VIBRANCE_SEED"
)

// Config holds configuration for palette extraction.
type Config struct {
	// Colours is the quantizer colour budget.
	Colours int

	Algorithm quantize.Algorithm

	// MaxDimension is the longest image side before histogramming. Zero
	// disables downscaling.
	MaxDimension int

	// Seed seeds k-means initialisation.
	Seed int64

	// NoFilter disables the black, white and skin tone filter.
	NoFilter bool
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Colours:      16,
		Algorithm:    quantize.AlgorithmColorCut,
		MaxDimension: 100,
	}
}

// Validate validates the extraction configuration.
func (c Config) Validate() error {
	if !quantize.IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s (valid algorithms: %v)", c.Algorithm, quantize.ValidAlgorithms())
	}
	if c.Colours < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", c.Colours)
	}
	if c.Colours > quantize.MaxColors {
		return fmt.Errorf("colour count too large: %d (maximum: %d)", c.Colours, quantize.MaxColors)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("max dimension cannot be negative, got %d", c.MaxDimension)
	}
	return nil
}

// ApplyEnv overrides fields from VIBRANCE_* environment variables. Unset or
// empty variables leave the field unchanged.
func (c Config) ApplyEnv() (Config, error) {
	return c.applyEnv(os.Getenv)
}

func (c Config) applyEnv(getenv func(string) string) (Config, error) {
	if v := strings.TrimSpace(getenv(EnvColours)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvColours, err)
		}
		c.Colours = n
	}
	if v := strings.TrimSpace(getenv(EnvMaxDimension)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvMaxDimension, err)
		}
		c.MaxDimension = n
	}
	if v := strings.TrimSpace(getenv(EnvAlgorithm)); v != "" {
		c.Algorithm = quantize.Algorithm(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(EnvSeed)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		c.Seed = n
	}
	return c, nil
}

// Key returns a stable identifier for the options that affect the result.
func (c Config) Key() string {
	filter := "default"
	if c.NoFilter {
		filter = "none"
	}
	return fmt.Sprintf("%s/%d/%d/%d/%s", c.Algorithm, c.Colours, c.MaxDimension, c.Seed, filter)
}
