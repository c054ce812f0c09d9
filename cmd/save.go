package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matheuskafuri/headlines/internal/imagecache"
)

var flagSavePage int

var saveCmd = &cobra.Command{
	Use:   "save <index>",
	Short: "Save a headline's image to the downloads folder",
	Long: `Download the image of one headline, numbered as in "headlines list".

Images already on disk are not downloaded again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 1 {
			return fmt.Errorf("invalid index %q: must be a positive number", args[0])
		}
		if flagSavePage < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", flagSavePage)
		}

		r, cleanup, err := openReader(false, printNotifier{w: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), r.Config.RequestBudget())
		defer cancel()

		articles, err := r.Fetcher.FetchPage(ctx, flagSavePage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", flagSavePage, err)
		}
		if index > len(articles) {
			return fmt.Errorf("page %d has %d headline(s), no #%d", flagSavePage, len(articles), index)
		}
		article := articles[index-1]

		if term.IsTerminal(int(os.Stderr.Fd())) {
			r.Store.OnProgress = func(path string, total int64) io.Writer {
				return newProgressBar(os.Stderr, total, filepath.Base(path))
			}
		}

		path, err := r.Images.Download(ctx, article)
		if errors.Is(err, imagecache.ErrNoAsset) {
			return fmt.Errorf("headline #%d has no image", index)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	saveCmd.Flags().IntVar(&flagSavePage, "page", 1, "page the headline is on (1-based)")
}

// printNotifier writes image cache notifications as plain lines.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Notify(msg string, _ imagecache.Duration) {
	fmt.Fprintln(n.w, msg)
}

func newProgressBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}
