// Package term implements the terminal rendering state machine. It
// consumes the application-data byte stream, interprets embedded SGR
// color escape sequences, and appends literal characters to the
// scrollback buffer under the currently active color.
package term

import (
	"unicode/utf8"

	"github.com/sfeek/ChatClient/internal/scrollback"
)

// maxParams caps the accumulated escape parameters. Once the cap is
// reached, further separators are absorbed and digits keep mutating the
// final slot. Legacy behavior, kept deliberately.
const maxParams = 16

const (
	byteBell = 0x07
	byteCR   = 0x0D
	byteESC  = 0x1B
)

type state int

const (
	statePlain state = iota
	stateEscape
	stateParams
)

// Renderer interprets inbound text and writes it to a scrollback buffer.
// One instance lives per session and is mutated continuously as the byte
// stream is processed.
type Renderer struct {
	state   state
	params  [maxParams]int
	nparams int
	color   scrollback.Color
	buf     *scrollback.Buffer
	bell    func()
	onLine  func(string)

	// partial UTF-8 sequence carried across Write calls
	pending []byte
	// mirror of the current inbound line, for the line hook
	lineBuf []rune
}

// New creates a renderer writing into buf. bell, if non-nil, is invoked
// once per BEL byte in the stream; BEL bytes are never stored.
func New(buf *scrollback.Buffer, bell func()) *Renderer {
	return &Renderer{
		color: scrollback.ColorDefault,
		buf:   buf,
		bell:  bell,
	}
}

// OnLine registers a hook invoked with the text of every inbound line
// as its newline arrives. Pass-through writes do not trigger it.
func (r *Renderer) OnLine(fn func(string)) {
	r.onLine = fn
}

// Color returns the currently active color register.
func (r *Renderer) Color() scrollback.Color {
	return r.color
}

// Write feeds inbound application bytes through the state machine. It
// always consumes all of p and never fails.
func (r *Renderer) Write(p []byte) (int, error) {
	for _, b := range p {
		// BEL is an out-of-band alert at any parse position; it is
		// consumed before the escape machine sees it.
		if b == byteBell {
			if r.bell != nil {
				r.bell()
			}
			continue
		}
		r.step(b)
	}
	return len(p), nil
}

// WriteString bypasses escape interpretation and appends text literally
// under the given color. Used for internally generated text such as
// warning banners. Newlines still break lines and truncation rules still
// apply.
func (r *Renderer) WriteString(s string, color scrollback.Color) {
	for _, ch := range s {
		r.buf.AppendChar(ch, color)
	}
}

func (r *Renderer) step(b byte) {
	switch r.state {
	case statePlain:
		switch {
		case b == byteESC:
			r.flushPending()
			r.state = stateEscape
		case b == byteCR:
			// stripped
		default:
			r.literal(b)
		}

	case stateEscape:
		if b == '[' {
			r.state = stateParams
			r.nparams = 1
			r.params[0] = 0
		} else {
			// unsupported sequence; drop the byte
			r.state = statePlain
		}

	case stateParams:
		switch {
		case b >= '0' && b <= '9':
			r.params[r.nparams-1] = r.params[r.nparams-1]*10 + int(b-'0')
		case b == ';':
			if r.nparams < maxParams {
				r.nparams++
				r.params[r.nparams-1] = 0
			}
			// at the cap the separator is absorbed; digits keep
			// accumulating into the final slot
		default:
			r.dispatch(b)
			r.state = statePlain
		}
	}
}

// dispatch applies the completed escape run. Only 'm' (set style) is
// recognized; every other command byte just ends the run.
func (r *Renderer) dispatch(cmd byte) {
	if cmd != 'm' {
		return
	}
	for i := 0; i < r.nparams; i++ {
		p := r.params[i]
		switch {
		case p == 0:
			r.color = scrollback.ColorDefault
		case p >= 31 && p <= 37:
			r.color = scrollback.Color(p - 30)
		}
	}
}

// literal appends a text byte, reassembling multi-byte UTF-8 sequences
// that may arrive split across reads.
func (r *Renderer) literal(b byte) {
	if len(r.pending) == 0 {
		if b < utf8.RuneSelf {
			r.emit(rune(b))
			return
		}
		r.pending = append(r.pending, b)
		return
	}

	r.pending = append(r.pending, b)
	for len(r.pending) > 0 && utf8.FullRune(r.pending) {
		ch, size := utf8.DecodeRune(r.pending)
		r.pending = append(r.pending[:0], r.pending[size:]...)
		r.emit(ch)
	}
	if len(r.pending) >= utf8.UTFMax {
		r.flushPending()
	}
}

// emit stores one decoded character and feeds the line hook.
func (r *Renderer) emit(ch rune) {
	r.buf.AppendChar(ch, r.color)
	if ch == '\n' {
		if r.onLine != nil {
			r.onLine(string(r.lineBuf))
		}
		r.lineBuf = r.lineBuf[:0]
	} else {
		r.lineBuf = append(r.lineBuf, ch)
	}
}

// flushPending emits any stalled partial sequence as replacement chars.
func (r *Renderer) flushPending() {
	for range r.pending {
		r.emit(utf8.RuneError)
	}
	r.pending = r.pending[:0]
}
