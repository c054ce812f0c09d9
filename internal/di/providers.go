// Package di assembles the reader from configuration. The injector is
// generated with github.com/google/wire from wire.go.
package di

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/imagecache"
	"github.com/matheuskafuri/headlines/internal/mediaindex"
	"github.com/matheuskafuri/headlines/internal/news"
	"github.com/matheuskafuri/headlines/internal/pager"
	"github.com/matheuskafuri/headlines/internal/platform"
	"github.com/matheuskafuri/headlines/internal/transport"
)

// IndexPath is where the media index database lives.
type IndexPath string

// Reader is everything the commands need to page headlines and save
// images.
type Reader struct {
	Config  *config.Config
	Log     zerolog.Logger
	Fetcher pager.Fetcher
	Pager   *pager.Controller
	Images  *imagecache.Manager
	Store   *imagecache.DiskStore
	// Index is nil when the media index could not be opened.
	Index *mediaindex.Index
}

func newReader(cfg *config.Config, log zerolog.Logger, fetcher pager.Fetcher, p *pager.Controller, images *imagecache.Manager, store *imagecache.DiskStore, ix *mediaindex.Index) *Reader {
	return &Reader{
		Config:  cfg,
		Log:     log,
		Fetcher: fetcher,
		Pager:   p,
		Images:  images,
		Store:   store,
		Index:   ix,
	}
}

func provideHTTPClient(cfg *config.Config, log zerolog.Logger) *retryablehttp.Client {
	return transport.New(transport.Options{
		Timeout: cfg.Timeout(),
		Retries: cfg.Retries,
		Logger:  log,
	})
}

func provideFetcher(cfg *config.Config, client *retryablehttp.Client) pager.Fetcher {
	if cfg.Source.Type == config.SourceRSS {
		parser := gofeed.NewParser()
		parser.Client = client.StandardClient()
		return news.NewFeedClient(parser, cfg.Source.FeedURL, cfg.PageSize, cfg.IdentityMode())
	}
	return news.NewClient(client, news.ClientOptions{
		BaseURL:  cfg.Source.BaseURL,
		Path:     cfg.Source.Path,
		APIKey:   cfg.Key(),
		Query:    cfg.Query,
		PageSize: cfg.PageSize,
		Identity: cfg.IdentityMode(),
	})
}

func providePager(cfg *config.Config, fetcher pager.Fetcher, log zerolog.Logger) *pager.Controller {
	return pager.New(fetcher, pager.Options{Dedupe: cfg.Dedupe, Logger: log})
}

// provideMediaIndex opens the index. Registration is best-effort, so a
// failure here is logged and the reader runs without one.
func provideMediaIndex(path IndexPath, log zerolog.Logger) (*mediaindex.Index, func()) {
	ix, err := mediaindex.Open(string(path))
	if err != nil {
		log.Warn().Err(err).Str("path", string(path)).Msg("media index unavailable")
		return nil, func() {}
	}
	return ix, func() { ix.Close() }
}

func provideStore(client *retryablehttp.Client, ix *mediaindex.Index) *imagecache.DiskStore {
	if ix == nil {
		return imagecache.NewDiskStore(client, nil)
	}
	return imagecache.NewDiskStore(client, ix)
}

func providePermissions() imagecache.Permissions {
	return platform.Host{}
}

func provideImages(cfg *config.Config, store *imagecache.DiskStore, perms imagecache.Permissions, notifier imagecache.Notifier, log zerolog.Logger) *imagecache.Manager {
	return imagecache.New(imagecache.Options{
		Root:        cfg.Downloads(),
		Store:       store,
		Permissions: perms,
		Notifier:    notifier,
		Logger:      log,
		Timeout:     cfg.RequestBudget(),
	})
}
