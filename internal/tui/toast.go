package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/headlines/internal/imagecache"
)

type toastMsg Toast

type Toast struct {
	Text     string
	Duration imagecache.Duration
}

// Toaster carries image cache notifications into the TUI. Notify never
// blocks; when the buffer is full the notification is dropped.
type Toaster struct {
	ch chan Toast
}

var _ imagecache.Notifier = (*Toaster)(nil)

func NewToaster() *Toaster {
	return &Toaster{ch: make(chan Toast, 16)}
}

func (t *Toaster) Notify(msg string, d imagecache.Duration) {
	select {
	case t.ch <- Toast{Text: msg, Duration: d}:
	default:
	}
}

func (t *Toaster) wait() tea.Cmd {
	return func() tea.Msg {
		return toastMsg(<-t.ch)
	}
}

func toastDuration(d imagecache.Duration) time.Duration {
	if d == imagecache.Long {
		return 3500 * time.Millisecond
	}
	return 2 * time.Second
}
