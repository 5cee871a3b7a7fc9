package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/vibrance/internal/store"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the palette cache",
		Long: `Manage the palette cache.

Quantized swatches are cached by image content and extraction options, so
re-running extract on an unchanged image skips decoding and quantization.`,
	}
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "palette cache directory")

	open := func(ctx context.Context) (*store.Store, error) {
		dir, err := resolveCacheDir(cacheDir)
		if err != nil {
			return nil, err
		}
		return store.Open(ctx, dir, root.logger)
	}

	cmd.AddCommand(newCacheListCmd(open))
	cmd.AddCommand(newCacheClearCmd(open))
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache database path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(commandContext(cmd))
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), s.Path())
			return nil
		},
	})

	return cmd
}

type storeOpener func(ctx context.Context) (*store.Store, error)

func newCacheListCmd(open storeOpener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.List(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				if entries == nil {
					entries = []store.Entry{}
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Palette cache is empty")
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), entriesTable(entries, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// entriesTable renders cache entries relative to now.
func entriesTable(entries []store.Entry, now time.Time) string {
	table := NewTable([]string{"Source", "Swatches", "Created", "Last Used", "Key"})
	table.SetColumnMaxWidth(0, 48)
	for _, e := range entries {
		table.AddRow([]string{
			e.Source,
			humanize.Comma(int64(e.Swatches)),
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			humanize.RelTime(e.AccessedAt, now, "ago", "from now"),
			shortKey(e.Key),
		})
	}
	return table.Render()
}

// shortKey abbreviates the content hash in a cache key.
func shortKey(key string) string {
	const hashLen = 12
	if len(key) <= hashLen {
		return key
	}
	for i, r := range key {
		if r == '/' {
			if i <= hashLen {
				return key
			}
			return key[:hashLen] + key[i:]
		}
	}
	return key[:hashLen]
}

func newCacheClearCmd(open storeOpener) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached palettes",
		Example: `  vibrance cache clear
  vibrance cache clear --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			s, err := open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var removed int64
			if olderThan > 0 {
				removed, err = s.Prune(ctx, time.Now().Add(-olderThan))
			} else {
				removed, err = s.Clear(ctx)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached %s\n",
				humanize.Comma(removed), plural(removed, "palette", "palettes"))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only remove palettes not used within this duration")
	return cmd
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
