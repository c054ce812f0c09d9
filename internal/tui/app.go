package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/imagecache"
	"github.com/matheuskafuri/headlines/internal/news"
	"github.com/matheuskafuri/headlines/internal/pager"
)

// Pager is the list controller the app drives.
type Pager interface {
	LoadFirstPage(ctx context.Context) error
	LoadNextPage(ctx context.Context) error
	Refresh(ctx context.Context) error
	Subscribe() (<-chan pager.State, func())
}

// Images is the per-article image cache.
type Images interface {
	Cached(a news.Article) (string, bool)
	Download(ctx context.Context, a news.Article) (string, error)
}

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type App struct {
	pager   Pager
	images  Images
	toasts  *Toaster
	open    func(url string) error
	query   string
	timeout time.Duration
	log     zerolog.Logger

	states      <-chan pager.State
	unsubscribe func()

	state         pager.State
	cursor        int
	focus         focusPane
	previewScroll int

	width  int
	height int

	spinner  spinner.Model
	spinning bool

	// cached maps identity to the local image path. checked records which
	// identities have already been looked up on disk.
	cached  map[string]string
	checked map[string]bool
	saving  map[string]bool

	toast   string
	toastID int
	err     error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Pager  Pager
	Images Images
	// Toasts may be nil, in which case image feedback is not shown.
	Toasts *Toaster
	Open   func(url string) error
	// Query is shown in the header.
	Query string
	// Timeout bounds each page load and image download.
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	states, unsubscribe := opts.Pager.Subscribe()
	return &App{
		pager:       opts.Pager,
		images:      opts.Images,
		toasts:      opts.Toasts,
		open:        opts.Open,
		query:       opts.Query,
		timeout:     timeout,
		log:         opts.Log.With().Str("component", "tui").Logger(),
		states:      states,
		unsubscribe: unsubscribe,
		spinner:     sp,
		cached:      make(map[string]string),
		checked:     make(map[string]bool),
		saving:      make(map[string]bool),
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForState(a.states),
		a.pagerCmd(a.pager.LoadFirstPage),
	}
	if a.toasts != nil {
		cmds = append(cmds, a.toasts.wait())
	}
	return tea.Batch(cmds...)
}

func waitForState(ch <-chan pager.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{state: s}
	}
}

// pagerCmd runs one controller operation off the render loop. Results reach
// the app through the subscription, so only the error is reported here.
func (a *App) pagerCmd(op func(context.Context) error) tea.Cmd {
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := op(ctx); err != nil {
			return pagerErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) checkCachedCmd(articles []news.Article) tea.Cmd {
	images := a.images
	return func() tea.Msg {
		found := make(map[string]string)
		for _, art := range articles {
			if p, ok := images.Cached(art); ok {
				found[art.ID] = p
			}
		}
		return cachedMsg{paths: found}
	}
}

func (a *App) downloadCmd(art news.Article) tea.Cmd {
	images := a.images
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		path, err := images.Download(ctx, art)
		return imageDoneMsg{id: art.ID, path: path, err: err}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case stateMsg:
		return a, a.applyState(msg.state)

	case pagerErrMsg:
		a.log.Warn().Err(msg.err).Msg("page load failed")
		return a, nil

	case cachedMsg:
		for id, p := range msg.paths {
			a.cached[id] = p
		}
		return a, nil

	case imageDoneMsg:
		delete(a.saving, msg.id)
		switch {
		case msg.err == nil:
			a.cached[msg.id] = msg.path
		case errors.Is(msg.err, imagecache.ErrNoAsset):
			return a, a.showToast("No image to download", imagecache.Short)
		default:
			a.log.Debug().Err(msg.err).Str("id", msg.id).Msg("image not saved")
		}
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case toastMsg:
		return a, tea.Batch(a.toasts.wait(), a.showToast(msg.Text, msg.Duration))

	case toastExpiredMsg:
		if msg.id == a.toastID {
			a.toast = ""
		}
		return a, nil

	case spinner.TickMsg:
		if a.state.Status == pager.Idle {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) applyState(s pager.State) tea.Cmd {
	a.state = s
	if a.cursor >= len(s.Items) {
		a.cursor = max(0, len(s.Items)-1)
	}

	cmds := []tea.Cmd{waitForState(a.states)}

	if s.Status != pager.Idle && !a.spinning {
		a.spinning = true
		cmds = append(cmds, a.spinner.Tick)
	}

	var unchecked []news.Article
	for _, art := range s.Items {
		if art.ID == "" || a.checked[art.ID] {
			continue
		}
		a.checked[art.ID] = true
		unchecked = append(unchecked, art)
	}
	if len(unchecked) > 0 && a.images != nil {
		cmds = append(cmds, a.checkCachedCmd(unchecked))
	}

	return tea.Batch(cmds...)
}

func (a *App) showToast(text string, d imagecache.Duration) tea.Cmd {
	a.toast = text
	a.toastID++
	id := a.toastID
	return tea.Tick(toastDuration(d), func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (a *App) selected() (news.Article, bool) {
	if a.cursor < 0 || a.cursor >= len(a.state.Items) {
		return news.Article{}, false
	}
	return a.state.Items[a.cursor], true
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusPreview {
			a.previewScroll++
			return a, nil
		}
		if a.cursor < len(a.state.Items)-1 {
			a.cursor++
			a.previewScroll = 0
		}
		return a, a.reachedEnd()
	case "k", "up":
		if a.focus == focusPreview {
			if a.previewScroll > 0 {
				a.previewScroll--
			}
			return a, nil
		}
		if a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		}
		return a, nil
	case "G", "end":
		if n := len(a.state.Items); n > 0 {
			a.cursor = n - 1
			a.previewScroll = 0
		}
		return a, a.reachedEnd()
	case "g", "home":
		a.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "r":
		a.cursor = 0
		a.previewScroll = 0
		return a, a.pagerCmd(a.pager.Refresh)
	case "o", "enter":
		if art, ok := a.selected(); ok && art.URL != "" && a.open != nil {
			return a, a.openCmd(art.URL)
		}
		return a, nil
	case "d":
		art, ok := a.selected()
		if !ok || a.images == nil || a.saving[art.ID] {
			return a, nil
		}
		if art.ID != "" {
			a.saving[art.ID] = true
		}
		return a, a.downloadCmd(art)
	}
	return a, nil
}

// reachedEnd asks for the next page once the cursor sits on the last item.
// The controller ignores the request while a load is already running.
func (a *App) reachedEnd() tea.Cmd {
	n := len(a.state.Items)
	if n == 0 || a.cursor != n-1 || a.state.Status != pager.Idle {
		return nil
	}
	return a.pagerCmd(a.pager.LoadNextPage)
}

func (a *App) View() string {
	if a.width == 0 {
		return headerStyle.Render("headlines")
	}

	headerHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - statusHeight - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1 // gap

	headerLeft := headerStyle.Render("headlines")
	headerRight := headerQueryStyle.Render(a.query)
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	innerListW := listWidth - 4 // border + padding
	var listContent string
	if len(a.state.Items) == 0 && a.state.Status != pager.Idle {
		listContent = lipglossCenter(a.spinner.View()+" Loading headlines...", innerListW, contentHeight)
	} else {
		listContent = renderList(listView{
			items:       a.state.Items,
			cursor:      a.cursor,
			cached:      a.cached,
			saving:      a.saving,
			loadingMore: a.state.Status == pager.LoadingMore,
			spinner:     a.spinner.View(),
		}, contentHeight, innerListW)
	}

	listPane := paneStyle(a.focus == focusList).Width(listWidth - 2).Height(contentHeight).Render(listContent)

	var previewContent string
	if art, ok := a.selected(); ok {
		previewContent = renderPreview(&art, a.cached[art.ID], previewWidth-4, contentHeight, a.previewScroll)
	} else {
		previewContent = renderPreview(nil, "", previewWidth-4, contentHeight, 0)
	}
	previewPane := paneStyle(a.focus == focusPreview).Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		count:  len(a.state.Items),
		page:   a.state.Page,
		status: a.state.Status,
		err:    a.state.Err,
		toast:  a.toast,
	}, a.width)
	if a.state.Status == pager.Refreshing {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	defer app.unsubscribe()
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
