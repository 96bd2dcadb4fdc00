package ui

import (
	"strings"
	"sync"

	"github.com/sfeek/ChatClient/internal/scrollback"
)

// NullScreen is an in-memory Screen for tests and headless use. Events
// are injected with PostEvent; cell contents can be inspected per
// region.
type NullScreen struct {
	mu      sync.Mutex
	width   int
	height  int
	cells   map[Region][][]rune
	colors  map[Region][][]scrollback.Color
	cursorR Region
	cursorX int
	beeps   int
	shows   int
	events  chan Event
	closed  bool
}

// NewNullScreen creates a null screen of the given size.
func NewNullScreen(width, height int) *NullScreen {
	return &NullScreen{
		width:  width,
		height: height,
		events: make(chan Event, 64),
	}
}

func (s *NullScreen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocate()
	return nil
}

// allocate builds empty cell grids for all three regions. Caller holds
// the lock.
func (s *NullScreen) allocate() {
	s.cells = make(map[Region][][]rune)
	s.colors = make(map[Region][][]scrollback.Color)
	for _, r := range []Region{RegionViewport, RegionBanner, RegionInput} {
		_, _, w, h := regionRect(r, s.width, s.height)
		rows := make([][]rune, h)
		cols := make([][]scrollback.Color, h)
		for y := 0; y < h; y++ {
			rows[y] = make([]rune, w)
			cols[y] = make([]scrollback.Color, w)
			for x := range rows[y] {
				rows[y][x] = ' '
				cols[y][x] = scrollback.ColorDefault
			}
		}
		s.cells[r] = rows
		s.colors[r] = cols
	}
}

func (s *NullScreen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

func (s *NullScreen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *NullScreen) Clear(r Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.cells[r]
	for y := range rows {
		for x := range rows[y] {
			rows[y][x] = ' '
			s.colors[r][y][x] = scrollback.ColorDefault
		}
	}
}

func (s *NullScreen) SetCell(r Region, x, y int, ch rune, color scrollback.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.cells[r]
	if y < 0 || y >= len(rows) || x < 0 || x >= len(rows[y]) {
		return
	}
	rows[y][x] = ch
	s.colors[r][y][x] = color
}

func (s *NullScreen) ShowCursor(r Region, x int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorR = r
	s.cursorX = x
}

func (s *NullScreen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows++
}

func (s *NullScreen) Beep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beeps++
}

func (s *NullScreen) Events() <-chan Event {
	return s.events
}

// PostEvent injects an event as if the user produced it.
func (s *NullScreen) PostEvent(ev Event) {
	s.events <- ev
}

// Resize changes the recorded size and reallocates the regions. Combine
// with PostEvent to simulate a terminal resize.
func (s *NullScreen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
	s.allocate()
}

// Row returns the trimmed text of one region row.
func (s *NullScreen) Row(r Region, y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.cells[r]
	if y < 0 || y >= len(rows) {
		return ""
	}
	return strings.TrimRight(string(rows[y]), " ")
}

// ColorAt returns the color of one cell.
func (s *NullScreen) ColorAt(r Region, x, y int) scrollback.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := s.colors[r]
	if y < 0 || y >= len(cols) || x < 0 || x >= len(cols[y]) {
		return scrollback.ColorDefault
	}
	return cols[y][x]
}

// Cursor returns the last cursor placement.
func (s *NullScreen) Cursor() (Region, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorR, s.cursorX
}

// Beeps returns how many times the bell rang.
func (s *NullScreen) Beeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beeps
}

// Shows returns how many batched flushes happened.
func (s *NullScreen) Shows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows
}
