// Package app is the session controller: it owns the protocol
// negotiator, terminal renderer, scrollback buffer, line editor and
// display, and drives them from a single event loop.
package app

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/sfeek/ChatClient/internal/config"
	"github.com/sfeek/ChatClient/internal/editbuf"
	"github.com/sfeek/ChatClient/internal/script"
	"github.com/sfeek/ChatClient/internal/scrollback"
	"github.com/sfeek/ChatClient/internal/telnet"
	"github.com/sfeek/ChatClient/internal/term"
	"github.com/sfeek/ChatClient/internal/ui"
)

// Options configures a session.
type Options struct {
	// Host and Port identify the server.
	Host string
	Port string

	// Config carries the loaded configuration file.
	Config config.Config

	// Debug enables debug-level logging.
	Debug bool
}

// netChunk is one delivery from the transport reader goroutine. A nil
// err carries parsed events; io.EOF reports an orderly peer close; any
// other error is fatal.
type netChunk struct {
	events []telnet.Event
	n      int
	err    error
}

// App is one client session. All state mutation happens on the Run
// goroutine; the reader and display goroutines only feed channels.
type App struct {
	opts   Options
	log    *Logger
	logOut io.Closer

	screen ui.Screen
	conn   net.Conn

	neg   *telnet.Negotiator
	buf   *scrollback.Buffer
	rend  *term.Renderer
	edit  *editbuf.Buffer
	hooks *script.Engine

	// viewport scroll state
	windowPos    int
	manualScroll bool

	connected bool
	sentBytes uint64
	recvBytes uint64

	fatal error
}

// New creates a session bound to an established connection and display.
func New(opts Options, screen ui.Screen, conn net.Conn) (*App, error) {
	a := &App{
		opts:      opts,
		screen:    screen,
		conn:      conn,
		neg:       telnet.New(),
		buf:       scrollback.New(),
		edit:      editbuf.New(),
		connected: true,
	}

	a.log = a.openLogger()
	a.rend = term.New(a.buf, screen.Beep)

	a.hooks = script.New(func(line string) {
		a.transmit(a.neg.SubmitLine(line))
	})
	a.rend.OnLine(func(line string) {
		if err := a.hooks.OnLine(line); err != nil {
			a.warn(fmt.Sprintf("script: %v", err))
		}
	})
	if path := opts.Config.Script; path != "" {
		if err := a.hooks.Load(path); err != nil {
			a.log.Warn("script load failed: %v", err)
			a.warn(err.Error())
		}
	}

	return a, nil
}

// openLogger builds the session logger from the options. Without a log
// file the logger is disabled.
func (a *App) openLogger() *Logger {
	level := LogLevelInfo
	if a.opts.Debug {
		level = LogLevelDebug
	}
	path := a.opts.Config.LogFile
	if path == "" {
		return NewLogger(nil, level)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return NewLogger(nil, level)
	}
	a.logOut = f
	return NewLogger(f, level)
}

// Run drives the session until interrupt, disconnect or a fatal error.
// A nil return means an orderly exit.
func (a *App) Run() error {
	if err := a.screen.Init(); err != nil {
		return NewOperationError("display", "", err)
	}
	defer a.screen.Fini()
	defer a.shutdown()

	w, h := a.screen.Size()
	a.neg.NotifyDimensions(w, h)

	netCh := make(chan netChunk, 8)
	go a.readLoop(netCh)

	a.log.Info("session started host=%s port=%s", a.opts.Host, a.opts.Port)
	a.redraw()

	for {
		select {
		case ev, ok := <-a.screen.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case ui.EventInterrupt:
				a.log.Info("interrupt requested")
				return nil
			case ui.EventResize:
				a.handleResize(ev.Width, ev.Height)
			case ui.EventKey:
				a.handleKey(ev)
			}

		case chunk := <-netCh:
			if chunk.err != nil {
				if isOrderlyClose(chunk.err) {
					a.finalPause()
					return nil
				}
				a.screen.Fini()
				return NewOperationError("recv", a.target(), chunk.err)
			}
			a.recvBytes += uint64(chunk.n)
			a.handleEvents(chunk.events)
		}

		if a.fatal != nil {
			a.screen.Fini()
			return a.fatal
		}
		a.redraw()
	}
}

// shutdown logs the session totals and releases the hook engine.
func (a *App) shutdown() {
	a.log.Info("session ended sent=%d recv=%d", a.sentBytes, a.recvBytes)
	a.hooks.Close()
	if a.logOut != nil {
		a.logOut.Close()
	}
}

// target returns host:port for error reporting.
func (a *App) target() string {
	return net.JoinHostPort(a.opts.Host, a.opts.Port)
}

// readLoop reads transport bytes, runs them through the negotiator and
// forwards the resulting events. When compression begins it wraps the
// remaining stream in a zlib reader and keeps going.
func (a *App) readLoop(ch chan<- netChunk) {
	var src io.Reader = a.conn
	buf := make([]byte, 2048)

	for {
		n, err := src.Read(buf)
		if n > 0 {
			events := a.neg.Feed(buf[:n])
			for i, ev := range events {
				if ev.Kind != telnet.EventCompressBegin {
					continue
				}
				// every byte after the marker is compressed
				zr, zerr := zlib.NewReader(io.MultiReader(bytes.NewReader(ev.Data), src))
				if zerr != nil {
					ch <- netChunk{err: NewOperationError("compress", "", zerr)}
					return
				}
				src = zr
				events[i].Data = nil
				break
			}
			ch <- netChunk{events: events, n: n}
		}
		if err != nil {
			ch <- netChunk{err: err}
			return
		}
	}
}

// handleEvents consumes one batch of negotiator events in order.
func (a *App) handleEvents(events []telnet.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case telnet.EventData:
			a.rend.Write(ev.Data)
		case telnet.EventSend:
			a.transmit(ev.Data)
		case telnet.EventWill:
			a.log.Debug("peer enabled option %d", ev.Option)
		case telnet.EventWont:
			a.log.Debug("peer disabled option %d", ev.Option)
		case telnet.EventDo:
			a.log.Debug("peer requested option %d", ev.Option)
		case telnet.EventDont:
			a.log.Debug("peer refused option %d", ev.Option)
		case telnet.EventSubnegotiation:
			a.log.Debug("subnegotiation option=%d len=%d", ev.Option, len(ev.Data))
		case telnet.EventCompressBegin:
			a.log.Info("stream compression enabled")
		case telnet.EventWarning:
			a.log.Warn("telnet: %s", ev.Msg)
			a.warn(ev.Msg)
		case telnet.EventError:
			a.log.Error("telnet: %s", ev.Msg)
			a.fatal = NewOperationError("telnet", a.target(), errors.New(ev.Msg))
			return
		}
	}
}

// warn renders a negotiation warning inline in the viewport.
func (a *App) warn(msg string) {
	a.rend.WriteString("\nWARNING: "+msg+"\n", scrollback.ColorRed)
}

// transmit writes a frame to the transport, blocking until every byte is
// accepted. Write failures end the session.
func (a *App) transmit(frame []byte) {
	for len(frame) > 0 {
		n, err := a.conn.Write(frame)
		a.sentBytes += uint64(n)
		frame = frame[n:]
		if err != nil {
			if isOrderlyClose(err) {
				a.fatal = ErrDisconnected
			} else {
				a.fatal = NewOperationError("send", a.target(), err)
			}
			return
		}
	}
}

// isOrderlyClose reports whether err is the peer ending the connection
// rather than a transport fault.
func isOrderlyClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}

// handleResize reports the new dimensions to the peer and repaints.
func (a *App) handleResize(w, h int) {
	a.log.Debug("resize %dx%d", w, h)
	if frame := a.neg.NotifyDimensions(w, h); frame != nil {
		a.transmit(frame)
	}
}

// handleKey applies one keystroke to the editor or the scroll window.
func (a *App) handleKey(ev ui.Event) {
	switch ev.Key {
	case ui.KeyEnter:
		line := a.edit.String()
		a.edit.Set("")
		a.manualScroll = false
		a.submit(line)
	case ui.KeyBackspace:
		a.edit.Backspace()
	case ui.KeyDelete:
		a.edit.DeleteForward()
	case ui.KeyLeft:
		a.edit.MoveLeft()
	case ui.KeyRight:
		a.edit.MoveRight()
	case ui.KeyHome:
		a.edit.Home()
	case ui.KeyEnd:
		a.edit.End()
	case ui.KeyUp:
		a.scrollBy(-1)
	case ui.KeyDown:
		a.scrollBy(1)
	case ui.KeyPageUp:
		a.scrollBy(-10)
	case ui.KeyPageDown:
		a.scrollBy(10)
	case ui.KeyRune:
		a.edit.Insert(ev.Rune)
	}
}

// scrollBy moves the view window and suspends tail-following until the
// next submitted line.
func (a *App) scrollBy(delta int) {
	a.manualScroll = true
	a.windowPos += delta
	if a.windowPos < 0 {
		a.windowPos = 0
	}
	if a.windowPos > scrollback.MaxLines {
		a.windowPos = scrollback.MaxLines
	}
}

// submit runs a typed line through the input hook and transmits it.
func (a *App) submit(line string) {
	line, send, err := a.hooks.OnInput(line)
	if err != nil {
		a.warn(fmt.Sprintf("script: %v", err))
	}
	if !send {
		return
	}
	a.transmit(a.neg.SubmitLine(line))
}

// finalPause keeps the last frame on screen after a clean disconnect
// until the user presses a key.
func (a *App) finalPause() {
	a.connected = false
	a.log.Info("peer closed connection")
	a.redraw()
	for ev := range a.screen.Events() {
		if ev.Kind == ui.EventKey || ev.Kind == ui.EventInterrupt {
			return
		}
	}
}

// redraw repaints all three regions and flushes them in one batch.
func (a *App) redraw() {
	w, h := a.screen.Size()
	viewH := h - 2
	if viewH < 1 || w < 1 {
		return
	}

	if !a.manualScroll {
		a.windowPos = a.buf.Last() - viewH + 1
		if a.windowPos < 0 {
			a.windowPos = 0
		}
	}

	a.screen.Clear(ui.RegionViewport)
	a.buf.Render(a.windowPos, a.windowPos+viewH-1, func(row int, line []scrollback.Cell) {
		for x, cell := range line {
			if x >= w {
				break
			}
			a.screen.SetCell(ui.RegionViewport, x, row, cell.Ch, cell.Color)
		}
	})

	a.paintBanner(w)
	a.paintInput(w)
	a.screen.Show()
}

// paintBanner draws the status line: a configured sticky banner, or the
// automatic host:port - (state) form.
func (a *App) paintBanner(width int) {
	text := a.opts.Config.Banner
	if text == "" {
		state := "connected"
		if !a.connected {
			state = "disconnected"
		}
		text = fmt.Sprintf("%s:%s - (%s)", a.opts.Host, a.opts.Port, state)
	}

	a.screen.Clear(ui.RegionBanner)
	for x, ch := range []rune(text) {
		if x >= width {
			break
		}
		a.screen.SetCell(ui.RegionBanner, x, 0, ch, scrollback.ColorDefault)
	}
}

// paintInput draws the edit buffer with horizontal scrolling and places
// the cursor. When the peer has taken over echo the text is masked.
func (a *App) paintInput(width int) {
	text, col := a.edit.VisibleSlice(width)

	a.screen.Clear(ui.RegionInput)
	for x, ch := range []rune(text) {
		if x >= width {
			break
		}
		if !a.neg.LocalEcho() {
			ch = '*'
		}
		a.screen.SetCell(ui.RegionInput, x, 0, ch, scrollback.ColorDefault)
	}
	a.screen.ShowCursor(ui.RegionInput, col)
}

// Dial connects to the server. Connection setup is deliberately plain;
// everything interesting happens after the stream exists.
func Dial(host, port string) (net.Conn, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return conn, nil
}
