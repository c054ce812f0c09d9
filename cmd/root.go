package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/transport"
	"github.com/matheuskafuri/headlines/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagMediaIndex string
	flagLogLevel   string
	flagCheck      bool
)

var releaseURL = update.DefaultURL

var rootCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Terminal news reader",
	Long: `headlines pages through news search results in a two-pane terminal reader.

Scroll to the end of the list to load the next page, press r to refresh and
d to save the selected article's image to your downloads folder.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagMediaIndex, "media-index", "", "path to the media index database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log_level from config (debug, info, warn, error, off)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "also look up the latest release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pruneCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "headlines %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client := transport.New(transport.Options{Timeout: 5 * time.Second, Retries: 1, Logger: zerolog.Nop()})
		res, err := update.Check(ctx, client, releaseURL, version)
		if err != nil {
			return err
		}
		if res.Newer {
			fmt.Fprintf(out, "A newer release is available: %s\n", res.LatestVersion)
		} else {
			fmt.Fprintf(out, "Latest release: %s\n", res.LatestVersion)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
