package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/headlines/internal/news"
)

// Mock implementations for testing

type fetchCall struct {
	page    int
	release chan struct{}
}

// mockFetcher returns pages from a table. When gate is set, every call
// blocks until the test releases it, which lets tests interleave requests.
type mockFetcher struct {
	mu     sync.Mutex
	pages  map[int][]news.Article
	fail   map[int]error
	calls  []int
	gate   bool
	queued chan fetchCall
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages:  make(map[int][]news.Article),
		fail:   make(map[int]error),
		queued: make(chan fetchCall, 16),
	}
}

func (m *mockFetcher) FetchPage(ctx context.Context, page int) ([]news.Article, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	gate := m.gate
	m.mu.Unlock()

	if gate {
		call := fetchCall{page: page, release: make(chan struct{})}
		m.queued <- call
		<-call.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[page]; err != nil {
		return nil, err
	}
	return m.pages[page], nil
}

func (m *mockFetcher) setPage(page int, items []news.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page] = items
	delete(m.fail, page)
}

func (m *mockFetcher) failPage(page int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[page] = err
}

func (m *mockFetcher) setGate(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = on
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockFetcher) lastCall() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

func (m *mockFetcher) next(t *testing.T) fetchCall {
	t.Helper()
	select {
	case c := <-m.queued:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return fetchCall{}
	}
}

// Test helpers

func articles(from, to int) []news.Article {
	out := make([]news.Article, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, news.Article{ID: fmt.Sprintf("A%d", i), Title: fmt.Sprintf("Article %d", i)})
	}
	return out
}

func ids(items []news.Article) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

func newController(f Fetcher) *Controller {
	return New(f, Options{Logger: zerolog.Nop()})
}

func waitStatus(t *testing.T, c *Controller, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Snapshot().Status == want }, 2*time.Second, 5*time.Millisecond)
}

func TestNewControllerIsIdle(t *testing.T) {
	c := newController(newMockFetcher())
	s := c.Snapshot()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, 1, s.Page)
	assert.Empty(t, s.Items)
	assert.NoError(t, s.Err)
}

func TestPaginationScenario(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	f.failPage(3, errors.New("connection reset"))
	c := newController(f)
	ctx := context.Background()

	require.NoError(t, c.LoadFirstPage(ctx))
	s := c.Snapshot()
	assert.Len(t, s.Items, 10)
	assert.Equal(t, 1, s.Page)

	require.NoError(t, c.LoadNextPage(ctx))
	s = c.Snapshot()
	assert.Equal(t, ids(articles(1, 20)), ids(s.Items))
	assert.Equal(t, 2, s.Page)

	err := c.LoadNextPage(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "connection reset")
	s = c.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, Idle, s.Status)
	assert.ErrorIs(t, s.Err, ErrFetchFailed)

	f.setPage(3, articles(21, 30))
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, 3, f.lastCall(), "retry must re-request the failed page")
	s = c.Snapshot()
	assert.Equal(t, ids(articles(1, 30)), ids(s.Items))
	assert.Equal(t, 3, s.Page)
	assert.NoError(t, s.Err)
}

func TestSuccessfulLoadMoreConcatenatesPages(t *testing.T) {
	f := newMockFetcher()
	for p := 1; p <= 6; p++ {
		f.setPage(p, articles((p-1)*3+1, p*3))
	}
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	for n := 1; n <= 5; n++ {
		require.NoError(t, c.LoadNextPage(ctx))
		s := c.Snapshot()
		assert.Equal(t, n+1, s.Page)
		assert.Equal(t, ids(articles(1, (n+1)*3)), ids(s.Items))
	}
}

func TestFailedFirstPageLeavesItems(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 5))
	f.setPage(2, articles(6, 10))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))
	require.NoError(t, c.LoadNextPage(ctx))

	f.failPage(1, errors.New("timeout"))
	err := c.Refresh(ctx)
	require.ErrorIs(t, err, ErrFetchFailed)

	s := c.Snapshot()
	assert.Equal(t, ids(articles(1, 10)), ids(s.Items))
	assert.Equal(t, 2, s.Page, "cursor returns to the pages still shown")
	assert.Equal(t, Idle, s.Status)

	f.setPage(3, articles(11, 12))
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, 3, f.lastCall())
}

func TestLoadFirstPageIsRetryable(t *testing.T) {
	f := newMockFetcher()
	f.failPage(1, errors.New("offline"))
	c := newController(f)
	ctx := context.Background()

	require.Error(t, c.LoadFirstPage(ctx))
	assert.Equal(t, Idle, c.Snapshot().Status)

	f.setPage(1, articles(1, 2))
	require.NoError(t, c.LoadFirstPage(ctx))
	assert.Len(t, c.Snapshot().Items, 2)
}

func TestRefreshReplacesItems(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	f.setPage(3, articles(21, 30))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))
	require.NoError(t, c.LoadNextPage(ctx))
	require.NoError(t, c.LoadNextPage(ctx))

	fresh := articles(100, 104)
	f.setPage(1, fresh)
	require.NoError(t, c.Refresh(ctx))

	s := c.Snapshot()
	assert.Equal(t, ids(fresh), ids(s.Items))
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, Idle, s.Status)
}

func TestConcurrentLoadNextPageIssuesOneFetch(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	done := make(chan error, 1)
	go func() { done <- c.LoadNextPage(ctx) }()

	call := f.next(t)
	assert.Equal(t, 2, call.page)
	assert.Equal(t, LoadingMore, c.Snapshot().Status)

	// Second trigger while the first is in flight.
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, 2, f.callCount(), "first page plus exactly one load-more")

	close(call.release)
	require.NoError(t, <-done)
	s := c.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.Equal(t, 2, s.Page)
}

func TestLoadNextPageNoOpDuringRefresh(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 3))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	call := f.next(t)
	assert.Equal(t, Refreshing, c.Snapshot().Status)

	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, 2, f.callCount())

	close(call.release)
	require.NoError(t, <-done)
}

func TestStaleRefreshDoesNotClobberNewer(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 3))
	c := newController(f)
	ctx := context.Background()

	f.setGate(true)
	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Refresh(ctx) }()
	first := f.next(t)

	secondDone := make(chan error, 1)
	go func() { secondDone <- c.Refresh(ctx) }()
	second := f.next(t)

	// The newer refresh resolves first with fresh data.
	f.setPage(1, articles(50, 52))
	close(second.release)
	require.NoError(t, <-secondDone)
	assert.Equal(t, ids(articles(50, 52)), ids(c.Snapshot().Items))

	// The older one arrives late with different data and must be dropped.
	f.setPage(1, articles(1, 3))
	close(first.release)
	require.NoError(t, <-firstDone)

	s := c.Snapshot()
	assert.Equal(t, ids(articles(50, 52)), ids(s.Items))
	assert.Equal(t, Idle, s.Status)
}

func TestStaleRefreshFailureIsIgnored(t *testing.T) {
	f := newMockFetcher()
	c := newController(f)
	ctx := context.Background()

	f.setGate(true)
	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Refresh(ctx) }()
	first := f.next(t)

	secondDone := make(chan error, 1)
	go func() { secondDone <- c.Refresh(ctx) }()
	second := f.next(t)

	f.failPage(1, errors.New("boom"))
	close(first.release)
	require.NoError(t, <-firstDone, "superseded refresh reports nothing")
	assert.Equal(t, Refreshing, c.Snapshot().Status)
	assert.NoError(t, c.Snapshot().Err)

	f.setPage(1, articles(1, 2))
	close(second.release)
	require.NoError(t, <-secondDone)
	assert.Len(t, c.Snapshot().Items, 2)
}

func TestRefreshDropsInFlightLoadMore(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	moreDone := make(chan error, 1)
	go func() { moreDone <- c.LoadNextPage(ctx) }()
	more := f.next(t)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	refresh := f.next(t)

	f.setPage(1, articles(200, 201))
	close(refresh.release)
	require.NoError(t, <-refreshDone)

	close(more.release)
	require.NoError(t, <-moreDone)

	s := c.Snapshot()
	assert.Equal(t, ids(articles(200, 201)), ids(s.Items), "old page 2 must not be appended to the refreshed list")
	assert.Equal(t, 1, s.Page)
	waitStatus(t, c, Idle)
}

func TestRefreshDuringFailingLoadMoreKeepsCursor(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	f.failPage(2, errors.New("late failure"))
	moreDone := make(chan error, 1)
	go func() { moreDone <- c.LoadNextPage(ctx) }()
	more := f.next(t)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	refresh := f.next(t)
	close(refresh.release)
	require.NoError(t, <-refreshDone)

	close(more.release)
	require.NoError(t, <-moreDone, "failure of a dropped request is not reported")
	s := c.Snapshot()
	assert.Equal(t, 1, s.Page)
	assert.NoError(t, s.Err)
}

func TestLoadMoreDuringFailedRefreshIsKept(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	moreDone := make(chan error, 1)
	go func() { moreDone <- c.LoadNextPage(ctx) }()
	more := f.next(t)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	refresh := f.next(t)

	// Page 2 lands while the refresh is still pending.
	close(more.release)
	require.NoError(t, <-moreDone)
	s := c.Snapshot()
	assert.Equal(t, ids(articles(1, 20)), ids(s.Items))
	assert.Equal(t, Refreshing, s.Status)

	f.failPage(1, errors.New("offline"))
	close(refresh.release)
	require.ErrorIs(t, <-refreshDone, ErrFetchFailed)

	s = c.Snapshot()
	assert.Equal(t, ids(articles(1, 20)), ids(s.Items), "merged page survives the failed refresh")
	assert.Equal(t, 2, s.Page)

	f.setGate(false)
	f.setPage(3, articles(21, 30))
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, 3, f.lastCall())
	assert.Len(t, c.Snapshot().Items, 30)
}

func TestLoadMoreDuringSuccessfulRefreshIsReplaced(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 10))
	f.setPage(2, articles(11, 20))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))

	f.setGate(true)
	moreDone := make(chan error, 1)
	go func() { moreDone <- c.LoadNextPage(ctx) }()
	more := f.next(t)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	refresh := f.next(t)

	close(more.release)
	require.NoError(t, <-moreDone)

	f.setPage(1, articles(100, 104))
	close(refresh.release)
	require.NoError(t, <-refreshDone)

	s := c.Snapshot()
	assert.Equal(t, ids(articles(100, 104)), ids(s.Items))
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, Idle, s.Status)
}

func TestDuplicatesKeptByDefault(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 5))
	f.setPage(2, articles(4, 8))
	c := newController(f)
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))
	require.NoError(t, c.LoadNextPage(ctx))

	got := ids(c.Snapshot().Items)
	assert.Len(t, got, 10)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5", "A4", "A5", "A6", "A7", "A8"}, got)
}

func TestDedupeOption(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 5))
	f.setPage(2, articles(4, 8))
	c := New(f, Options{Dedupe: true, Logger: zerolog.Nop()})
	ctx := context.Background()
	require.NoError(t, c.LoadFirstPage(ctx))
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, ids(articles(1, 8)), ids(c.Snapshot().Items))

	// Refresh forgets what was seen.
	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.LoadNextPage(ctx))
	assert.Equal(t, ids(articles(1, 8)), ids(c.Snapshot().Items))
}

func TestSubscribeReceivesStates(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 2))
	c := newController(f)

	states, cancel := c.Subscribe()
	defer cancel()

	initial := <-states
	assert.Equal(t, Idle, initial.Status)

	require.NoError(t, c.LoadFirstPage(context.Background()))

	// The buffer keeps only the latest snapshot.
	latest := <-states
	assert.Equal(t, Idle, latest.Status)
	assert.Len(t, latest.Items, 2)

	select {
	case s := <-states:
		t.Fatalf("unexpected extra state: %+v", s)
	default:
	}
}

func TestSubscribeSeesLoadingStatus(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 2))
	f.setGate(true)
	c := newController(f)

	states, cancel := c.Subscribe()
	defer cancel()
	<-states

	done := make(chan error, 1)
	go func() { done <- c.LoadFirstPage(context.Background()) }()
	call := f.next(t)

	s := <-states
	assert.Equal(t, LoadingFirst, s.Status)

	close(call.release)
	require.NoError(t, <-done)
	s = <-states
	assert.Equal(t, Idle, s.Status)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c := newController(newMockFetcher())
	states, cancel := c.Subscribe()
	<-states
	cancel()
	cancel()

	_, ok := <-states
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic.
	require.NoError(t, c.LoadFirstPage(context.Background()))
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newMockFetcher()
	f.setPage(1, articles(1, 2))
	c := newController(f)
	require.NoError(t, c.LoadFirstPage(context.Background()))

	s := c.Snapshot()
	s.Items[0].Title = "mutated"
	assert.Equal(t, "Article 1", c.Snapshot().Items[0].Title)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", LoadingFirst.String())
	assert.Equal(t, "loading more", LoadingMore.String())
	assert.Equal(t, "refreshing", Refreshing.String())
	assert.Equal(t, "unknown", Status(42).String())
}
