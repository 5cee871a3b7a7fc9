package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/vibrance/internal/watch"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <image>",
		Short: "Print a palette each time an image changes",
		Long: `Watch an image file and print its palette on start and after every change.

Writes are debounced so that an editor saving in several steps produces a
single palette. With --output the file is rewritten on every change.`,
		Example: `  vibrance watch ~/.config/wallpaper.png
  vibrance watch -f hex -o ~/.cache/palette.env ~/.config/wallpaper.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := root.logger

			e, cache, err := opts.newExtractor(ctx, cmd.Flags(), logger)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}

			r := opts.newRenderer(cmd.Flags(), cmd.OutOrStdout())

			handler := func(ctx context.Context, path string) error {
				res, err := e.Extract(ctx, path)
				if err != nil {
					return err
				}
				out, err := r.render(res)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
					return err
				}
				logger.Debug("palette updated", "path", path, "cached", res.Cached, "duration", res.Duration)
				return nil
			}

			w, err := watch.New(args[0], handler,
				watch.WithDebounce(debounce),
				watch.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			logger.Info("watching for changes", "path", w.Path())
			if err := w.Run(ctx); err != nil {
				return fmt.Errorf("watch %s: %w", args[0], err)
			}
			return nil
		},
	}

	addExtractFlags(cmd.Flags(), opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "time to wait for writes to settle")

	return cmd
}
