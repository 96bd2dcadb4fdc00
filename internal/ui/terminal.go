package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/sfeek/ChatClient/internal/scrollback"
)

// Terminal implements Screen on a real terminal using tcell.
type Terminal struct {
	screen tcell.Screen
	events chan Event
	quit   chan struct{}
}

// NewTerminal creates a terminal screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.SetStyle(tcell.StyleDefault)
	t.screen.Clear()

	t.events = make(chan Event, 16)
	t.quit = make(chan struct{})
	go t.eventLoop()
	return nil
}

func (t *Terminal) Fini() {
	select {
	case <-t.quit:
		// already finished
	default:
		close(t.quit)
	}
	t.screen.Fini()
}

// eventLoop translates tcell events into display events until Fini.
func (t *Terminal) eventLoop() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		var out Event
		switch tev := ev.(type) {
		case *tcell.EventResize:
			w, h := tev.Size()
			out = Event{Kind: EventResize, Width: w, Height: h}
		case *tcell.EventKey:
			out = translateKey(tev)
			if out.Kind == EventNone {
				continue
			}
		default:
			continue
		}

		select {
		case t.events <- out:
		case <-t.quit:
			return
		}
	}
}

// translateKey maps a tcell key event onto the client's key set.
func translateKey(ev *tcell.EventKey) Event {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return Event{Kind: EventInterrupt}
	case tcell.KeyEnter:
		return Event{Kind: EventKey, Key: KeyEnter}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Event{Kind: EventKey, Key: KeyBackspace}
	case tcell.KeyDelete:
		return Event{Kind: EventKey, Key: KeyDelete}
	case tcell.KeyLeft:
		return Event{Kind: EventKey, Key: KeyLeft}
	case tcell.KeyRight:
		return Event{Kind: EventKey, Key: KeyRight}
	case tcell.KeyUp:
		return Event{Kind: EventKey, Key: KeyUp}
	case tcell.KeyDown:
		return Event{Kind: EventKey, Key: KeyDown}
	case tcell.KeyHome:
		return Event{Kind: EventKey, Key: KeyHome}
	case tcell.KeyEnd:
		return Event{Kind: EventKey, Key: KeyEnd}
	case tcell.KeyPgUp:
		return Event{Kind: EventKey, Key: KeyPageUp}
	case tcell.KeyPgDn:
		return Event{Kind: EventKey, Key: KeyPageDown}
	case tcell.KeyRune:
		return Event{Kind: EventKey, Key: KeyRune, Rune: ev.Rune()}
	default:
		return Event{Kind: EventNone}
	}
}

func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

func (t *Terminal) Clear(r Region) {
	w, h := t.screen.Size()
	rx, ry, rw, rh := regionRect(r, w, h)
	style := t.regionStyle(r, scrollback.ColorDefault)
	for y := ry; y < ry+rh; y++ {
		for x := rx; x < rx+rw; x++ {
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (t *Terminal) SetCell(r Region, x, y int, ch rune, color scrollback.Color) {
	w, h := t.screen.Size()
	rx, ry, rw, rh := regionRect(r, w, h)
	if x < 0 || y < 0 || x >= rw || y >= rh {
		return
	}
	t.screen.SetContent(rx+x, ry+y, ch, nil, t.regionStyle(r, color))
}

func (t *Terminal) ShowCursor(r Region, x int) {
	w, h := t.screen.Size()
	rx, ry, rw, _ := regionRect(r, w, h)
	if x < 0 || x >= rw {
		x = rw - 1
	}
	t.screen.ShowCursor(rx+x, ry)
}

func (t *Terminal) Show() {
	t.screen.Show()
}

func (t *Terminal) Beep() {
	t.screen.Beep() //nolint:errcheck // a failed bell is not actionable
}

func (t *Terminal) Events() <-chan Event {
	return t.events
}

// regionStyle resolves the style for a cell: the banner is drawn in its
// fixed white-on-blue scheme, the other regions follow the text color.
func (t *Terminal) regionStyle(r Region, color scrollback.Color) tcell.Style {
	if r == RegionBanner {
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	}
	return tcell.StyleDefault.Foreground(tcellColor(color))
}

// tcellColor maps the scrollback color indices onto tcell's basic
// palette.
func tcellColor(c scrollback.Color) tcell.Color {
	switch c {
	case scrollback.ColorRed:
		return tcell.ColorMaroon
	case scrollback.ColorGreen:
		return tcell.ColorGreen
	case scrollback.ColorYellow:
		return tcell.ColorOlive
	case scrollback.ColorBlue:
		return tcell.ColorNavy
	case scrollback.ColorMagenta:
		return tcell.ColorPurple
	case scrollback.ColorCyan:
		return tcell.ColorTeal
	case scrollback.ColorWhite:
		return tcell.ColorSilver
	default:
		return tcell.ColorDefault
	}
}
