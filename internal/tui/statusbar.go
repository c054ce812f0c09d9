package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/headlines/internal/pager"
)

type statusInfo struct {
	count  int
	page   int
	status pager.Status
	err    error
	toast  string
}

func renderStatusBar(info statusInfo, width int) string {
	left := fmt.Sprintf(" %d headlines · page %d", info.count, info.page)
	switch info.status {
	case pager.LoadingFirst, pager.Refreshing:
		left += " (" + info.status.String() + "...)"
	}

	right := " j/k move  o open  d save image  r refresh  q quit "

	switch {
	case info.toast != "":
		right = " " + toastStyle.Render(info.toast) + " "
	case info.err != nil && info.status == pager.Idle:
		right = " " + errorStyle.Render(info.err.Error()) + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
