// Package ui provides the display surface abstraction: three fixed
// rectangular regions (scrollback viewport, status banner, input field)
// with batched, double-buffered redraw, plus translated keyboard and
// resize events.
package ui

import "github.com/sfeek/ChatClient/internal/scrollback"

// Region identifies one of the three fixed display regions.
type Region int

const (
	// RegionViewport is the scrollback view, rows-2 tall.
	RegionViewport Region = iota
	// RegionBanner is the single status line above the input field.
	RegionBanner
	// RegionInput is the single input line at the bottom.
	RegionInput
)

// EventKind identifies the type of a display event.
type EventKind int

const (
	EventNone EventKind = iota
	// EventKey is a keystroke.
	EventKey
	// EventResize reports new terminal dimensions.
	EventResize
	// EventInterrupt is the user's interrupt request (Ctrl-C).
	EventInterrupt
)

// Key identifies a non-printing key.
type Key int

// Keys the session loop acts on.
const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Event is one keyboard, resize or interrupt notification.
type Event struct {
	Kind EventKind

	// Key event fields
	Key  Key
	Rune rune

	// Resize event fields
	Width, Height int
}

// Screen is the host display collaborator. Implementations must deliver
// resize and interrupt notifications through Events so the session loop
// observes them at the top of each iteration.
type Screen interface {
	// Init prepares the display. It must be called before any other
	// method.
	Init() error

	// Fini releases the display. Safe to call more than once.
	Fini()

	// Size returns the full terminal dimensions.
	Size() (width, height int)

	// Clear erases one region in the pending (back) buffer.
	Clear(r Region)

	// SetCell writes one character into a region at region-local
	// coordinates. Writes outside the region are ignored.
	SetCell(r Region, x, y int, ch rune, color scrollback.Color)

	// ShowCursor places the visible cursor at a region-local column.
	ShowCursor(r Region, x int)

	// Show flushes all pending region updates atomically.
	Show()

	// Beep sounds the terminal bell.
	Beep()

	// Events returns the channel of translated display events. The
	// channel is valid after Init and closes on Fini.
	Events() <-chan Event
}

// regionRect returns the absolute origin and size of region r on a
// terminal of the given dimensions. The viewport gets rows-2, banner and
// input one row each.
func regionRect(r Region, width, height int) (x, y, w, h int) {
	switch r {
	case RegionViewport:
		return 0, 0, width, max(height-2, 0)
	case RegionBanner:
		return 0, max(height-2, 0), width, 1
	case RegionInput:
		return 0, max(height-1, 0), width, 1
	}
	return 0, 0, 0, 0
}
