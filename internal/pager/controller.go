// Package pager owns the headline list: which pages are loaded, in what
// order, and whether a fetch is in flight.
//
// Every fetch is tagged with the list generation current when it was
// issued. A successful Refresh or LoadFirstPage starts a new generation, so
// a load-more belonging to an older generation is dropped instead of
// appending to a list it no longer describes. Until a replace commits, the
// current list is still the one on screen and load-more results merge into it.
package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/news"
)

// ErrFetchFailed wraps every page-load failure returned by the controller.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher loads one 1-based page of articles.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) ([]news.Article, error)
}

type Options struct {
	// Dedupe drops articles whose identity already appears in the list.
	// Off by default: overlapping upstream pages produce duplicates.
	Dedupe bool
	Logger zerolog.Logger
}

type Controller struct {
	fetcher Fetcher
	dedupe  bool
	log     zerolog.Logger

	mu    sync.Mutex
	items []news.Article
	seen  map[string]struct{}
	// page is the cursor, advanced as soon as a load-more is issued.
	// loaded is the number of pages actually merged into items.
	page   int
	loaded int
	err    error

	seq        uint64
	generation uint64
	// replaceSeq is the seq of the newest replace; older ones are dropped.
	replaceSeq  uint64
	replacing   Status
	loadingMore bool

	subs    map[int]chan State
	nextSub int
}

type request struct {
	seq  uint64
	gen  uint64
	page int
}

func New(fetcher Fetcher, opts Options) *Controller {
	return &Controller{
		fetcher: fetcher,
		dedupe:  opts.Dedupe,
		log:     opts.Logger.With().Str("component", "pager").Logger(),
		seen:    make(map[string]struct{}),
		page:    1,
		loaded:  1,
		subs:    make(map[int]chan State),
	}
}

// LoadFirstPage fetches page 1 and replaces the list. It does nothing
// unless the controller is idle.
func (c *Controller) LoadFirstPage(ctx context.Context) error {
	c.mu.Lock()
	if c.statusLocked() != Idle {
		c.mu.Unlock()
		return nil
	}
	req := c.beginReplaceLocked(LoadingFirst)
	c.mu.Unlock()

	return c.finishReplace(ctx, req)
}

// Refresh resets the cursor to 1 and replaces the list with page 1. It
// may be called at any time; it supersedes every request in flight.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	req := c.beginReplaceLocked(Refreshing)
	c.mu.Unlock()

	return c.finishReplace(ctx, req)
}

// LoadNextPage appends the next page. A call made while a load-more or a
// replace is in flight is a no-op. On failure the cursor rolls back so the
// same page is requested next time.
func (c *Controller) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.loadingMore || c.replacing != Idle {
		c.mu.Unlock()
		return nil
	}
	c.loadingMore = true
	c.seq++
	req := request{seq: c.seq, gen: c.generation, page: c.page + 1}
	c.page = req.page
	c.notifyLocked()
	c.mu.Unlock()

	c.log.Debug().Uint64("seq", req.seq).Int("page", req.page).Msg("loading next page")
	items, err := c.fetcher.FetchPage(ctx, req.page)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadingMore = false

	if req.gen != c.generation {
		c.log.Debug().Uint64("seq", req.seq).Int("page", req.page).Msg("dropping page from replaced list")
		c.notifyLocked()
		return nil
	}
	if err != nil {
		// A pending replace owns the cursor; it falls back to loaded itself.
		if c.replacing == Idle {
			c.page = c.loaded
		}
		c.err = fmt.Errorf("%w: page %d: %w", ErrFetchFailed, req.page, err)
		c.log.Warn().Err(err).Int("page", req.page).Msg("load more failed")
		c.notifyLocked()
		return c.err
	}

	c.items = append(c.items, c.filterLocked(items)...)
	c.loaded = req.page
	if c.replacing != Idle {
		c.log.Info().Int("page", req.page).Msg("page merged while a replace is pending")
	}
	c.err = nil
	c.notifyLocked()
	return nil
}

func (c *Controller) beginReplaceLocked(kind Status) request {
	c.seq++
	c.replaceSeq = c.seq
	c.replacing = kind
	c.page = 1
	c.notifyLocked()
	return request{seq: c.seq, gen: c.generation, page: 1}
}

func (c *Controller) finishReplace(ctx context.Context, req request) error {
	c.log.Debug().Uint64("seq", req.seq).Msg("loading first page")
	items, err := c.fetcher.FetchPage(ctx, req.page)

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.seq != c.replaceSeq {
		c.log.Debug().Uint64("seq", req.seq).Msg("dropping superseded first page")
		return nil
	}
	c.replacing = Idle

	if err != nil {
		// Items are untouched, so the cursor goes back to what they cover.
		c.page = c.loaded
		c.err = fmt.Errorf("%w: page %d: %w", ErrFetchFailed, req.page, err)
		c.log.Warn().Err(err).Msg("first page failed")
		c.notifyLocked()
		return c.err
	}

	c.generation = req.seq
	c.seen = make(map[string]struct{})
	c.items = c.filterLocked(items)
	c.page = 1
	c.loaded = 1
	c.err = nil
	c.notifyLocked()
	return nil
}

// filterLocked copies items, dropping already-seen identities when
// deduplication is enabled.
func (c *Controller) filterLocked(items []news.Article) []news.Article {
	out := make([]news.Article, 0, len(items))
	for _, a := range items {
		if c.dedupe {
			key := a.ID
			if key == "" {
				key = a.Key()
			}
			if _, dup := c.seen[key]; dup {
				continue
			}
			c.seen[key] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}

func (c *Controller) statusLocked() Status {
	switch {
	case c.replacing != Idle:
		return c.replacing
	case c.loadingMore:
		return LoadingMore
	default:
		return Idle
	}
}

func (c *Controller) snapshotLocked() State {
	items := make([]news.Article, len(c.items))
	copy(items, c.items)
	return State{
		Items:  items,
		Page:   c.page,
		Status: c.statusLocked(),
		Err:    c.err,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest state. Slow
// readers skip intermediate snapshots. The current state is delivered
// immediately. Call the returned func to unsubscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 1)
	ch <- c.snapshotLocked()
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	s := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
