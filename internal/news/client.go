package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ClientOptions configures a Client. Query and PageSize are fixed for the
// lifetime of the client; only the page number varies per call.
type ClientOptions struct {
	BaseURL  string
	Path     string
	APIKey   string
	Query    string
	PageSize int
	Identity IdentityMode
}

// Client fetches pages from a NewsAPI-style paged search endpoint.
type Client struct {
	http *retryablehttp.Client
	opts ClientOptions
}

func NewClient(httpClient *retryablehttp.Client, opts ClientOptions) *Client {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Client{http: httpClient, opts: opts}
}

type apiResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

type apiArticle struct {
	ID     string `json:"id"`
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

func (a apiArticle) toArticle(mode IdentityMode) Article {
	out := Article{
		ID:          a.ID,
		Title:       a.Title,
		Author:      a.Author,
		SourceName:  a.Source.Name,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
	}
	if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		out.PublishedAt = t
	}
	mode.Assign(&out)
	return out
}

// FetchPage requests one page of results. Pages are 1-based.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Article, error) {
	params := url.Values{}
	params.Set("q", c.opts.Query)
	params.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	params.Set("page", strconv.Itoa(page))
	endpoint := c.opts.BaseURL + c.opts.Path + "?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", c.opts.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	var payload apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && payload.Message != "" {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload.Message)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("api error %s: %s", payload.Code, payload.Message)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, a.toArticle(c.opts.Identity))
	}
	return articles, nil
}
