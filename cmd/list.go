package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/news"
)

var flagListPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of headlines",
	Long: `Fetch a single page of headlines and print it as a table.

The numbers in the first column are what "headlines save" expects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, flagListPage)
	},
}

func init() {
	listCmd.Flags().IntVar(&flagListPage, "page", 1, "page to fetch (1-based)")
}

func runList(cmd *cobra.Command, page int) error {
	if page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", page)
	}

	r, cleanup, err := openReader(false, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), r.Config.RequestBudget())
	defer cancel()

	articles, err := r.Fetcher.FetchPage(ctx, page)
	if err != nil {
		return fmt.Errorf("fetching page %d: %w", page, err)
	}
	if len(articles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No headlines found.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(articles, func(a news.Article) bool {
		_, ok := r.Images.Cached(a)
		return ok
	}))
	return nil
}

func renderTable(articles []news.Article, saved func(news.Article) bool) *table.Table {
	var (
		purple = lipgloss.Color("99")

		headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "Title", "Source", "Published", "Image")

	for i, a := range articles {
		image := "-"
		switch {
		case a.ImageURL == "":
		case saved(a):
			image = "Downloaded"
		default:
			image = "remote"
		}
		t.Row(fmt.Sprintf("%d", i+1), truncate(a.Title, 60), a.SourceName, a.Published(), image)
	}
	return t
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
