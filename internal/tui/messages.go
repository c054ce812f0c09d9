package tui

import "github.com/matheuskafuri/headlines/internal/pager"

type stateMsg struct {
	state pager.State
}

type pagerErrMsg struct {
	err error
}

type cachedMsg struct {
	paths map[string]string
}

type imageDoneMsg struct {
	id   string
	path string
	err  error
}

type openErrMsg struct {
	err error
}

type toastExpiredMsg struct {
	id int
}
