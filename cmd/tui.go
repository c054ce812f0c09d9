package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matheuskafuri/headlines/internal/browser"
	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// Piped output gets the first page as a table instead of a TUI
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runList(cmd, 1)
	}

	toasts := tui.NewToaster()
	r, cleanup, err := openReader(true, toasts)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(tui.RunOpts{
		Pager:   r.Pager,
		Images:  r.Images,
		Toasts:  toasts,
		Open:    browser.Open,
		Query:   headerLabel(r.Config),
		Timeout: r.Config.RequestBudget(),
		Log:     r.Log,
	})
}

func headerLabel(cfg *config.Config) string {
	if cfg.Source.Type == config.SourceRSS {
		return cfg.Source.FeedURL + " "
	}
	return "search: " + cfg.Query + " "
}
