package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/headlines/internal/news"
)

// renderPreview shows the selected article. localImage is the saved copy
// of its image, if any; otherwise the remote reference (or the placeholder)
// is shown.
func renderPreview(article *news.Article, localImage string, width, height, scroll int) string {
	if article == nil {
		return lipglossCenter("Select a headline", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(article.Title)

	var meta []string
	for _, s := range []string{article.SourceName, article.Author, article.Published()} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	source := previewSourceStyle.Render(strings.Join(meta, " · "))

	desc := article.Description
	if desc == "" {
		desc = "(No description available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))

	image := "Image: " + article.Image()
	if localImage != "" {
		image = "Image: " + localImage + " (saved)"
	}
	imageLine := previewLinkStyle.Width(contentWidth).Render(image)
	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + article.URL)

	content := lipgloss.JoinVertical(lipgloss.Left, title, source, "", body, "", imageLine, link)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
