package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/mediaindex"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show saved image statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dbPath := mediaIndexPath()
		ix, err := mediaindex.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening media index: %w", err)
		}
		defer ix.Close()

		s, err := ix.Stats(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Index: %s\n", dbPath)
		fmt.Fprintf(out, "Downloads: %s\n", cfg.Downloads())
		fmt.Fprintf(out, "Images: %d\n", s.Files)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(s.Bytes))
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Forget saved images that were deleted from disk",
	Long: `Remove media index entries whose files no longer exist.

Images themselves are never deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := mediaindex.Open(mediaIndexPath())
		if err != nil {
			return fmt.Errorf("opening media index: %w", err)
		}
		defer ix.Close()

		n, err := ix.Prune(context.Background())
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entr%s.\n", n, plural(n, "y", "ies"))
		}
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
