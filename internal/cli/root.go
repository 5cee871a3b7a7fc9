// Package cli provides the command-line interface for vibrance.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/vibrance/internal/version"
)

// EnvLogLevel overrides the default log level.
const EnvLogLevel = "VIBRANCE_LOG_LEVEL"

// rootOptions holds the persistent flags and the logger built from them.
type rootOptions struct {
	verbose bool
	quiet   bool
	logger  hclog.Logger
}

// NewRootCmd builds the vibrance command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{logger: hclog.NewNullLogger()}

	cmd := &cobra.Command{
		Use:   "vibrance",
		Short: "Extract themed colour palettes from images",
		Long: `vibrance extracts a small set of representative colours from an image and
picks six themed roles from them: vibrant, light vibrant, dark vibrant, muted,
light muted and dark muted. Each role comes with title and body text colours
that meet WCAG contrast ratios.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.verbose, opts.quiet, os.Getenv(EnvLogLevel))
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))

	return cmd
}

// newLogger builds the root logger. The level starts at Info, envLevel
// overrides it, and --verbose or --quiet override both.
func newLogger(w io.Writer, verbose, quiet bool, envLevel string) (hclog.Logger, error) {
	level := hclog.Info

	if envLevel = strings.TrimSpace(envLevel); envLevel != "" {
		level = hclog.LevelFromString(envLevel)
		if level == hclog.NoLevel {
			return nil, fmt.Errorf("invalid %s: %q (valid: trace, debug, info, warn, error, off)", EnvLogLevel, envLevel)
		}
	}

	switch {
	case verbose:
		level = hclog.Debug
	case quiet:
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "vibrance",
		Output: w,
		Level:  level,
	}), nil
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.GetInfo())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	return cmd
}
