package router

import (
	"slices"
	"strings"
)

// Location is the host environment's location and history service.
type Location interface {
	// CurrentPath returns the path without the query string.
	CurrentPath() string

	// QueryString returns the raw query without the leading '?'.
	QueryString() string

	// PushPath records a new history entry. It does not fire change
	// callbacks.
	PushPath(path string)

	// Back and Forward move through history. The change is reported
	// asynchronously through OnLocationChange callbacks.
	Back()
	Forward()

	// OnLocationChange registers a callback fired when the location changes
	// outside PushPath. The returned func unregisters it.
	OnLocationChange(fn func()) (unsubscribe func())
}

// MemoryLocation is an in-process Location with a back/forward stack.
type MemoryLocation struct {
	entries   []string
	index     int
	listeners map[int]func()
	nextID    int
}

// NewMemoryLocation creates a location whose only entry is initial
// (which may carry a query string). An empty initial path means no entry yet.
func NewMemoryLocation(initial string) *MemoryLocation {
	m := &MemoryLocation{index: -1, listeners: make(map[int]func())}
	if initial != "" {
		m.entries = []string{initial}
		m.index = 0
	}
	return m
}

func (m *MemoryLocation) current() string {
	if m.index < 0 {
		return ""
	}
	return m.entries[m.index]
}

// CurrentPath implements Location.
func (m *MemoryLocation) CurrentPath() string {
	path, _ := splitQuery(m.current())
	return path
}

// QueryString implements Location.
func (m *MemoryLocation) QueryString() string {
	_, query := splitQuery(m.current())
	return query
}

// PushPath implements Location. Forward entries are discarded.
func (m *MemoryLocation) PushPath(path string) {
	m.entries = append(m.entries[:m.index+1], path)
	m.index = len(m.entries) - 1
}

// Back implements Location. It is a no-op at the oldest entry.
func (m *MemoryLocation) Back() {
	if m.index <= 0 {
		return
	}
	m.index--
	m.fire()
}

// Forward implements Location. It is a no-op at the newest entry.
func (m *MemoryLocation) Forward() {
	if m.index >= len(m.entries)-1 {
		return
	}
	m.index++
	m.fire()
}

// Change simulates an external location change: a new entry is pushed and
// change callbacks fire.
func (m *MemoryLocation) Change(path string) {
	m.PushPath(path)
	m.fire()
}

// OnLocationChange implements Location.
func (m *MemoryLocation) OnLocationChange(fn func()) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		delete(m.listeners, id)
	}
}

// History returns the entries and the current index.
func (m *MemoryLocation) History() ([]string, int) {
	return append([]string(nil), m.entries...), m.index
}

// CanGoBack reports whether Back would move.
func (m *MemoryLocation) CanGoBack() bool {
	return m.index > 0
}

// CanGoForward reports whether Forward would move.
func (m *MemoryLocation) CanGoForward() bool {
	return m.index < len(m.entries)-1
}

func (m *MemoryLocation) fire() {
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := m.listeners[id]; ok {
			fn()
		}
	}
}

func splitQuery(full string) (path, query string) {
	path, query, _ = strings.Cut(full, "?")
	return path, query
}
