// Package navigation moves the user between screens.
package navigation

import "sync"

// Mode selects how a transition treats history.
type Mode int

const (
	// Push keeps the navigation history.
	Push Mode = iota
	// Reload discards history, like a full page load. Used after a forced logout.
	Reload
)

func (m Mode) String() string {
	if m == Reload {
		return "reload"
	}
	return "push"
}

type Navigator interface {
	Navigate(path string, mode Mode)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, mode Mode)

func (f NavigatorFunc) Navigate(path string, mode Mode) {
	f(path, mode)
}

var _ Navigator = (*History)(nil)

// History is an in-memory Navigator. A Reload transition replaces the whole history and
// is left pending until a consumer takes it.
type History struct {
	mu            sync.Mutex
	entries       []string
	pendingReload string
}

func NewHistory(start string) *History {
	return &History{entries: []string{start}}
}

func (h *History) Navigate(path string, mode Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if mode == Reload {
		h.entries = []string{path}
		h.pendingReload = path
		return
	}
	h.entries = append(h.entries, path)
}

// Current returns the active path.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Back pops the active path. It reports false when already at the first entry.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) < 2 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// TakeReload returns and clears the pending reload target.
func (h *History) TakeReload() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	path := h.pendingReload
	h.pendingReload = ""
	return path, path != ""
}
