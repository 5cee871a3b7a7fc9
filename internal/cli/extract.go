package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/extract"
	imageutil "github.com/jmylchreest/vibrance/internal/image"
	"github.com/jmylchreest/vibrance/internal/palette"
	"github.com/jmylchreest/vibrance/internal/quantize"
	"github.com/jmylchreest/vibrance/internal/store"
)

// Environment variables read by the extract and watch commands.
const (
	EnvCacheDir = "VIBRANCE_CACHE_DIR"
	EnvNoCache  = "VIBRANCE_NO_CACHE"
)

// Output formats.
const (
	FormatText = "text"
	FormatHex  = "hex"
	FormatJSON = "json"
)

// extractOptions holds the flags shared by extract and watch.
type extractOptions struct {
	colours      int
	algorithm    string
	maxDimension int
	seed         int64
	noFilter     bool

	format   string
	output   string
	preview  bool
	fallback string

	noCache  bool
	cacheDir string
}

// addExtractFlags registers the extraction flags on fs. Defaults come from
// extract.DefaultConfig so that help output matches behaviour.
func addExtractFlags(fs *pflag.FlagSet, o *extractOptions) {
	def := extract.DefaultConfig()

	fs.IntVarP(&o.colours, "colours", "c", def.Colours, "maximum number of colours to quantize to")
	fs.StringVarP(&o.algorithm, "algorithm", "a", string(def.Algorithm),
		fmt.Sprintf("quantization algorithm (%s)", joinAlgorithms()))
	fs.IntVarP(&o.maxDimension, "max-dimension", "m", def.MaxDimension, "downscale images so the longest side is at most this (0 disables)")
	fs.Int64Var(&o.seed, "seed", def.Seed, "random seed for k-means initialisation")
	fs.BoolVar(&o.noFilter, "no-filter", false, "keep near-black, near-white and skin tone colours")

	fs.StringVarP(&o.format, "format", "f", FormatText, "output format (text, hex, json)")
	fs.StringVarP(&o.output, "output", "o", "", "write output to a file instead of stdout")
	fs.BoolVar(&o.preview, "preview", false, "show colour previews (default when writing to a terminal)")
	fs.StringVar(&o.fallback, "fallback", "", "colour printed for empty roles in hex output (e.g. #000000)")

	fs.BoolVar(&o.noCache, "no-cache", false, "do not read or write the palette cache")
	fs.StringVar(&o.cacheDir, "cache-dir", "", "palette cache directory")
}

func joinAlgorithms() string {
	algs := quantize.ValidAlgorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// config layers defaults, environment and changed flags, in that order.
func (o *extractOptions) config(fs *pflag.FlagSet) (extract.Config, error) {
	cfg, err := extract.DefaultConfig().ApplyEnv()
	if err != nil {
		return cfg, err
	}

	if fs.Changed("colours") {
		cfg.Colours = o.colours
	}
	if fs.Changed("algorithm") {
		cfg.Algorithm = quantize.Algorithm(strings.ToLower(o.algorithm))
	}
	if fs.Changed("max-dimension") {
		cfg.MaxDimension = o.maxDimension
	}
	if fs.Changed("seed") {
		cfg.Seed = o.seed
	}
	cfg.NoFilter = o.noFilter

	return cfg, cfg.Validate()
}

// validateOutput checks the output flags.
func (o *extractOptions) validateOutput() error {
	switch o.format {
	case FormatText, FormatHex, FormatJSON:
	default:
		return fmt.Errorf("invalid format: %s (valid formats: %s, %s, %s)", o.format, FormatText, FormatHex, FormatJSON)
	}
	if o.fallback != "" {
		if _, err := colour.ParseHex(o.fallback); err != nil {
			return fmt.Errorf("invalid --fallback: %w", err)
		}
	}
	return nil
}

// cacheDisabled reports whether the cache is off via flag or environment.
func (o *extractOptions) cacheDisabled(fs *pflag.FlagSet) (bool, error) {
	if fs.Changed("no-cache") {
		return o.noCache, nil
	}
	v := strings.TrimSpace(os.Getenv(EnvNoCache))
	if v == "" {
		return o.noCache, nil
	}
	disabled, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", EnvNoCache, err)
	}
	return disabled, nil
}

// resolveCacheDir picks the cache directory from the flag, then the
// environment, then the platform default.
func resolveCacheDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		return v, nil
	}
	return store.DefaultDir()
}

// newExtractor builds an extractor for the resolved flags. The returned
// store is nil when caching is disabled or the cache could not be opened;
// callers close it when non-nil.
func (o *extractOptions) newExtractor(ctx context.Context, fs *pflag.FlagSet, logger hclog.Logger) (*extract.Extractor, *store.Store, error) {
	cfg, err := o.config(fs)
	if err != nil {
		return nil, nil, err
	}
	if err := o.validateOutput(); err != nil {
		return nil, nil, err
	}

	opts := []extract.Option{extract.WithLogger(logger)}

	disabled, err := o.cacheDisabled(fs)
	if err != nil {
		return nil, nil, err
	}

	var cache *store.Store
	if !disabled {
		dir, err := resolveCacheDir(o.cacheDir)
		if err != nil {
			return nil, nil, err
		}
		cache, err = store.Open(ctx, dir, logger)
		if err != nil {
			// Extraction carries on without the cache.
			logger.Warn("palette cache unavailable", "dir", dir, "error", err)
			cache = nil
		} else {
			opts = append(opts, extract.WithCache(cache))
		}
	}

	e, err := extract.New(cfg, opts...)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, nil, err
	}
	return e, cache, nil
}

// renderer formats extraction results.
type renderer struct {
	format   string
	preview  bool
	fallback *colour.Color
}

func (o *extractOptions) newRenderer(fs *pflag.FlagSet, out io.Writer) renderer {
	r := renderer{format: o.format, preview: o.preview}
	if !fs.Changed("preview") && o.output == "" {
		r.preview = colour.SupportsANSIColours(out)
	}
	if o.fallback != "" {
		c, _ := colour.ParseHex(o.fallback)
		r.fallback = &c
	}
	return r
}

// resultJSON is the JSON document for one image.
type resultJSON struct {
	Source  string              `json:"source"`
	Cached  bool                `json:"cached"`
	Palette palette.PaletteJSON `json:"palette"`
}

func newResultJSON(res *extract.Result) resultJSON {
	return resultJSON{Source: res.Source, Cached: res.Cached, Palette: res.Palette.JSON()}
}

// render formats a single result.
func (r renderer) render(res *extract.Result) (string, error) {
	switch r.format {
	case FormatJSON:
		data, err := json.MarshalIndent(newResultJSON(res), "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal palette: %w", err)
		}
		return string(data) + "\n", nil

	case FormatHex:
		return r.renderHex(res.Palette), nil

	default:
		return res.Palette.StringWithPreview(r.preview), nil
	}
}

func (r renderer) renderHex(p *palette.Palette) string {
	var sb strings.Builder
	for _, role := range palette.AllRoles() {
		_, ok := p.Swatch(role)
		if !ok && r.fallback == nil {
			continue
		}

		var c colour.Color
		if ok {
			c = p.Color(role, colour.Black)
		} else {
			c = *r.fallback
		}

		if r.preview {
			fmt.Fprintf(&sb, "%s %s=%s\n", colour.ColourPreview(c, 4), role, c.Hex())
		} else {
			fmt.Fprintf(&sb, "%s=%s\n", role, c.Hex())
		}
	}
	return sb.String()
}

// renderAll formats results. With multi set, JSON output is a single array
// and text and hex outputs get a header line per image.
func (r renderer) renderAll(results []*extract.Result, multi bool) (string, error) {
	if !multi && len(results) == 1 {
		return r.render(results[0])
	}

	if r.format == FormatJSON {
		docs := make([]resultJSON, len(results))
		for i, res := range results {
			docs[i] = newResultJSON(res)
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal palettes: %w", err)
		}
		return string(data) + "\n", nil
	}

	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s\n", res.Source)
		out, err := r.render(res)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// outcome is the result of one worker job.
type outcome struct {
	result *extract.Result
	err    error
}

// extractAll extracts every source with at most jobs concurrent workers.
// Outcomes are returned in source order.
func extractAll(ctx context.Context, e *extract.Extractor, sources []string, jobs int) []outcome {
	if len(sources) == 0 {
		return nil
	}
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(sources) {
		jobs = len(sources)
	}

	outcomes := make([]outcome, len(sources))
	work := make(chan int)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				res, err := e.Extract(ctx, sources[i])
				outcomes[i] = outcome{result: res, err: err}
			}
		}()
	}

	for i := range sources {
		work <- i
	}
	close(work)
	wg.Wait()

	return outcomes
}

// writeOutput writes s to path, or to w when path is empty.
func writeOutput(w io.Writer, path, s string) error {
	if path == "" {
		_, err := io.WriteString(w, s)
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// summaryTable renders per-image statistics for verbose output. With
// preview, a strip of the filled roles is shown for each image.
func summaryTable(results []*extract.Result, preview bool) string {
	headers := []string{"Source", "Size", "Colours", "Roles", "Cached", "Time"}
	if preview {
		headers = append(headers, "Palette")
	}

	table := NewTable(headers)
	table.SetColumnMaxWidth(0, 48)
	table.SetColumnAlignment(2, AlignRight)
	table.SetColumnAlignment(5, AlignRight)

	for _, res := range results {
		size := "-"
		if res.Width > 0 {
			size = fmt.Sprintf("%dx%d", res.Width, res.Height)
		}
		colours := "-"
		if !res.Cached {
			colours = humanize.Comma(int64(res.Colours))
		}
		row := []string{
			res.Source,
			size,
			colours,
			fmt.Sprintf("%d/%d", res.Palette.Len(), len(palette.AllRoles())),
			strconv.FormatBool(res.Cached),
			res.Duration.Round(time.Microsecond).String(),
		}
		if preview {
			var strip strings.Builder
			for _, s := range res.Palette.Roles() {
				strip.WriteString(colour.ColourPreview(s.RGB(), 2))
			}
			row = append(row, strip.String())
		}
		table.AddRow(row)
	}
	return table.Render()
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}
	var jobs int

	cmd := &cobra.Command{
		Use:   "extract <image|url|dir>...",
		Short: "Extract a palette from one or more images",
		Long: `Extract a colour palette from images.

Images may be local files, directories (scanned for images, not recursively)
or HTTP(S) URLs. PNG, JPEG, GIF, WebP, QOI and AVIF are supported, optionally
compressed with gzip, zstd, xz or bzip2.

Environment variables:
  VIBRANCE_COLOURS        colour budget
  VIBRANCE_ALGORITHM      quantization algorithm
  VIBRANCE_MAX_DIMENSION  downscale limit
  VIBRANCE_SEED           k-means seed
  VIBRANCE_CACHE_DIR      palette cache directory
  VIBRANCE_NO_CACHE       disable the palette cache

Flags that are set explicitly take precedence over the environment.`,
		Example: `  vibrance extract wallpaper.jpg
  vibrance extract -f json -c 24 wallpaper.png
  vibrance extract -f hex --fallback '#000000' https://example.com/image.webp
  vibrance extract --jobs 4 ~/Pictures/wallpapers`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, jobs, args)
		},
	}

	addExtractFlags(cmd.Flags(), opts)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of images to process concurrently")

	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, jobs int, args []string) error {
	ctx := commandContext(cmd)
	logger := root.logger

	sources, err := imageutil.ExpandSources(args)
	if err != nil {
		return err
	}

	e, cache, err := opts.newExtractor(ctx, cmd.Flags(), logger)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	logger.Debug("extracting palettes",
		"images", len(sources),
		"jobs", jobs,
		"config", e.Config().Key(),
	)

	outcomes := extractAll(ctx, e, sources, jobs)

	var (
		results []*extract.Result
		errs    []error
	)
	for i, o := range outcomes {
		if o.err != nil {
			logger.Error("extraction failed", "source", sources[i], "error", o.err)
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.result)
	}

	if len(results) > 0 {
		r := opts.newRenderer(cmd.Flags(), cmd.OutOrStdout())
		out, err := r.renderAll(results, len(sources) > 1)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
			return err
		}
		if opts.output != "" {
			logger.Info("palette written", "path", opts.output)
		}
		if root.verbose {
			preview := colour.SupportsANSIColours(cmd.ErrOrStderr())
			fmt.Fprint(cmd.ErrOrStderr(), "\n"+summaryTable(results, preview))
		}
	}

	switch {
	case len(errs) == 1 && len(sources) == 1:
		return errs[0]
	case len(errs) > 0:
		return fmt.Errorf("%d of %d images failed: %w", len(errs), len(sources), errors.Join(errs...))
	}
	return nil
}
