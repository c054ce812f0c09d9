package pager

import "github.com/matheuskafuri/headlines/internal/news"

type Status int

const (
	Idle Status = iota
	LoadingFirst
	LoadingMore
	Refreshing
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingFirst:
		return "loading"
	case LoadingMore:
		return "loading more"
	case Refreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// State is a snapshot of the list. Items is a private copy; subscribers
// may keep it without synchronizing with the controller.
type State struct {
	Items  []news.Article
	Page   int
	Status Status
	// Err is the most recent fetch failure, cleared by the next success.
	Err error
}
