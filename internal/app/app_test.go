package app

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sfeek/ChatClient/internal/scrollback"
	"github.com/sfeek/ChatClient/internal/telnet"
	"github.com/sfeek/ChatClient/internal/ui"
)

// newTestApp builds a session on a net.Pipe with everything the server
// writes drained into a sink goroutine, so transmit never blocks.
func newTestApp(t *testing.T, width, height int) (*App, *ui.NullScreen, net.Conn) {
	t.Helper()

	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	go func() {
		buf := make([]byte, 1024)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	screen := ui.NewNullScreen(width, height)
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}

	a, err := New(Options{Host: "example.com", Port: "6969"}, screen, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, screen, server
}

func TestKeyEditingAndInputRow(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	for _, ch := range "helo" {
		a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyRune, Rune: ch})
	}
	a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyLeft})
	a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyRune, Rune: 'l'})

	if got := a.edit.String(); got != "hello" {
		t.Fatalf("edit buffer = %q, want %q", got, "hello")
	}

	a.redraw()
	if got := screen.Row(ui.RegionInput, 0); got != "hello" {
		t.Errorf("input row = %q, want %q", got, "hello")
	}
	if r, x := screen.Cursor(); r != ui.RegionInput || x != 4 {
		t.Errorf("cursor = (%v, %d), want (input, 4)", r, x)
	}
}

func TestEnterClearsBufferAndResumesFollowing(t *testing.T) {
	a, _, _ := newTestApp(t, 80, 24)

	a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyUp})
	if !a.manualScroll {
		t.Fatal("scroll key did not enter manual scroll mode")
	}

	a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyRune, Rune: 'x'})
	a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyEnter})

	if a.edit.Len() != 0 {
		t.Errorf("edit buffer not cleared, len = %d", a.edit.Len())
	}
	if a.manualScroll {
		t.Error("submit did not resume tail-following")
	}
}

func TestScrollClamping(t *testing.T) {
	a, _, _ := newTestApp(t, 80, 24)

	a.scrollBy(-50)
	if a.windowPos != 0 {
		t.Errorf("windowPos = %d, want 0", a.windowPos)
	}
	a.scrollBy(scrollback.MaxLines + 50)
	if a.windowPos != scrollback.MaxLines {
		t.Errorf("windowPos = %d, want %d", a.windowPos, scrollback.MaxLines)
	}
}

func TestInboundDataRendersToViewport(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	a.handleEvents([]telnet.Event{
		{Kind: telnet.EventData, Data: []byte("Hello\r\n\x1b[31mWorld\x1b[0m\r\n")},
	})
	a.redraw()

	if got := screen.Row(ui.RegionViewport, 0); got != "Hello" {
		t.Errorf("viewport row 0 = %q, want %q", got, "Hello")
	}
	if got := screen.Row(ui.RegionViewport, 1); got != "World" {
		t.Errorf("viewport row 1 = %q, want %q", got, "World")
	}
	if c := screen.ColorAt(ui.RegionViewport, 0, 1); c != scrollback.ColorRed {
		t.Errorf("viewport cell color = %v, want red", c)
	}
}

func TestWarningRenderedInline(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	a.handleEvents([]telnet.Event{
		{Kind: telnet.EventWarning, Msg: "unknown negotiation command"},
	})
	a.redraw()

	found := false
	for y := 0; y < 22; y++ {
		row := screen.Row(ui.RegionViewport, y)
		if strings.Contains(row, "WARNING: unknown negotiation command") {
			found = true
			if c := screen.ColorAt(ui.RegionViewport, 0, y); c != scrollback.ColorRed {
				t.Errorf("warning color = %v, want red", c)
			}
		}
	}
	if !found {
		t.Error("warning text not rendered in viewport")
	}
}

func TestEchoMaskingAfterServerTakesEcho(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	// Server announces it will echo; the client must stop showing typed
	// characters in clear.
	a.neg.Feed([]byte{telnet.IAC, telnet.WILL, telnet.OptEcho})

	for _, ch := range "secret" {
		a.handleKey(ui.Event{Kind: ui.EventKey, Key: ui.KeyRune, Rune: ch})
	}
	a.redraw()

	if got := screen.Row(ui.RegionInput, 0); got != "******" {
		t.Errorf("input row = %q, want %q", got, "******")
	}
}

func TestBannerShowsConnectionState(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	a.redraw()
	if got := screen.Row(ui.RegionBanner, 0); got != "example.com:6969 - (connected)" {
		t.Errorf("banner = %q", got)
	}

	a.connected = false
	a.redraw()
	if got := screen.Row(ui.RegionBanner, 0); got != "example.com:6969 - (disconnected)" {
		t.Errorf("banner = %q", got)
	}
}

func TestConfiguredBannerPaintsByRune(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)
	a.opts.Config.Banner = "café über MUD"

	a.redraw()
	if got := screen.Row(ui.RegionBanner, 0); got != "café über MUD" {
		t.Errorf("banner = %q, want %q", got, "café über MUD")
	}
}

func TestViewportFollowsTail(t *testing.T) {
	a, screen, _ := newTestApp(t, 80, 24)

	for i := 0; i < 40; i++ {
		a.buf.AppendLine("line", scrollback.ColorDefault)
	}
	a.buf.AppendLine("newest", scrollback.ColorDefault)
	a.redraw()

	// 41 complete lines plus the in-progress line 41; viewport is 22
	// rows, so the window starts at 41-22+1 = 20 and "newest" sits on
	// row 20 of the region.
	if got := screen.Row(ui.RegionViewport, 20); got != "newest" {
		t.Errorf("tail row = %q, want %q", got, "newest")
	}
}

func TestFatalTelnetErrorStopsSession(t *testing.T) {
	a, _, _ := newTestApp(t, 80, 24)

	a.handleEvents([]telnet.Event{
		{Kind: telnet.EventError, Msg: "corrupt subnegotiation"},
	})

	if a.fatal == nil {
		t.Fatal("corrupt stream did not set a fatal error")
	}
	var opErr *OperationError
	if !errors.As(a.fatal, &opErr) || opErr.Op != "telnet" {
		t.Errorf("fatal = %v, want telnet operation error", a.fatal)
	}
}

// TestFullSessionLifecycle drives Run end to end over a pipe: the server
// negotiates, sends a line of text, then closes. The session must render
// the text, hold the final frame until a key arrives, and exit cleanly.
func TestFullSessionLifecycle(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	screen := ui.NewNullScreen(80, 24)
	a, err := New(Options{Host: "mud.example", Port: "4000"}, screen, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	// Drain the client's replies so pipe writes never block.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		buf := make([]byte, 1024)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	writeAll(t, server, []byte{telnet.IAC, telnet.WILL, telnet.OptEcho})
	writeAll(t, server, []byte("Hello\r\n"))

	// Give the session loop a moment to consume before closing.
	waitFor(t, func() bool {
		return screen.Row(ui.RegionViewport, 0) == "Hello"
	})

	server.Close()
	<-drained

	// The session holds the last frame until a key is pressed.
	select {
	case err := <-done:
		t.Fatalf("Run returned before final keypress: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got := screen.Row(ui.RegionViewport, 0); got != "Hello" {
		t.Errorf("final frame row 0 = %q, want %q", got, "Hello")
	}

	screen.PostEvent(ui.Event{Kind: ui.EventKey, Key: ui.KeyEnter})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after final keypress")
	}
}

func TestInterruptEndsSession(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	defer client.Close()

	screen := ui.NewNullScreen(80, 24)
	a, err := New(Options{Host: "mud.example", Port: "4000"}, screen, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	screen.PostEvent(ui.Event{Kind: ui.EventInterrupt})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after interrupt")
	}
}

func writeAll(t *testing.T, conn net.Conn, p []byte) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write(p); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
