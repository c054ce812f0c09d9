package tui

import (
	"strings"

	"github.com/matheuskafuri/headlines/internal/news"
)

type listView struct {
	items       []news.Article
	cursor      int
	cached      map[string]string
	saving      map[string]bool
	loadingMore bool
	spinner     string
}

// imageLabel tells the reader whether the article's image is on disk.
func imageLabel(a news.Article, cached map[string]string, saving map[string]bool) string {
	switch {
	case a.ImageURL == "":
		return ""
	case cached[a.ID] != "":
		return "Downloaded"
	case saving[a.ID]:
		return "saving..."
	default:
		return "d to download"
	}
}

func renderListItem(a news.Article, label string, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(a.SourceName)
	if p := a.Published(); p != "" {
		meta += " " + itemTimeStyle.Render("· "+p)
	}
	if label == "Downloaded" {
		meta += " " + itemSavedStyle.Render("· "+label)
	} else if label != "" {
		meta += " " + itemTimeStyle.Render("· "+label)
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(v listView, height int, width int) string {
	if len(v.items) == 0 {
		return lipglossCenter("No headlines found", width, height)
	}

	// The footer takes one item slot while a page is loading
	if v.loadingMore {
		height -= itemHeight
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	visible := max(1, height/itemHeight)

	// Calculate scroll offset
	start := 0
	if v.cursor >= visible {
		start = v.cursor - visible + 1
	}
	end := start + visible
	if end > len(v.items) {
		end = len(v.items)
		start = max(0, end-visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		a := v.items[i]
		b.WriteString(renderListItem(a, imageLabel(a, v.cached, v.saving), i == v.cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if v.loadingMore {
		b.WriteString("\n\n  " + v.spinner + " " + itemTimeStyle.Render("Loading more..."))
	}

	return b.String()
}

const itemHeight = 3

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max(0, (width-len(s))/2)) + s
}
