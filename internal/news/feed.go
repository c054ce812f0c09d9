package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeedClient serves an RSS or Atom feed as a paged source. Page 1 always
// re-reads the feed; later pages are sliced from the copy read for page 1.
type FeedClient struct {
	parser   *gofeed.Parser
	url      string
	pageSize int
	identity IdentityMode

	mu    sync.Mutex
	items []Article
}

func NewFeedClient(parser *gofeed.Parser, feedURL string, pageSize int, identity IdentityMode) *FeedClient {
	if parser == nil {
		parser = gofeed.NewParser()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &FeedClient{parser: parser, url: feedURL, pageSize: pageSize, identity: identity}
}

func (f *FeedClient) FetchPage(ctx context.Context, page int) ([]Article, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}

	f.mu.Lock()
	items := f.items
	f.mu.Unlock()

	if page == 1 || items == nil {
		fetched, err := f.fetch(ctx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.items = fetched
		f.mu.Unlock()
		items = fetched
	}

	start := (page - 1) * f.pageSize
	if start >= len(items) {
		return []Article{}, nil
	}
	end := min(start+f.pageSize, len(items))
	out := make([]Article, end-start)
	copy(out, items[start:end])
	return out, nil
}

func (f *FeedClient) fetch(ctx context.Context) ([]Article, error) {
	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.url, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		body := item.Description
		if body == "" {
			body = item.Content
		}

		a := Article{
			ID:          item.GUID,
			Title:       item.Title,
			SourceName:  feed.Title,
			Description: truncate(stripHTML(body), 300),
			URL:         item.Link,
			ImageURL:    itemImage(item),
			PublishedAt: pub,
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}
		f.identity.Assign(&a)
		articles = append(articles, a)
	}
	return articles, nil
}

// itemImage prefers the feed's own image, then an image enclosure, then
// the first <img> embedded in the item body.
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if src := firstImage(item.Content); src != "" {
		return src
	}
	return firstImage(item.Description)
}

func firstImage(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
