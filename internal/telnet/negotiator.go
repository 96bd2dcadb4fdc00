package telnet

import (
	"fmt"
	"sync"
)

// optionPolicy is the client's fixed stance on one option.
type optionPolicy struct {
	// accept: reply WILL when the peer sends DO (we are willing to
	// perform the option locally).
	accept bool
	// request: reply DO when the peer sends WILL (we want the peer to
	// perform the option).
	request bool
}

// defaultPolicies mirrors the client's negotiation table: the peer may
// take over echo, we offer window-size reporting, and compression and
// ZMP are accepted passively when the peer initiates them. Every option
// outside this table is refused uniformly.
func defaultPolicies() map[byte]optionPolicy {
	return map[byte]optionPolicy{
		OptEcho:      {accept: false, request: true},
		OptNAWS:      {accept: true, request: false},
		OptCompress2: {accept: false, request: true},
		OptZMP:       {accept: false, request: true},
	}
}

type parseState int

const (
	psData parseState = iota
	psIAC
	psNegotiate
	psSBOption
	psSBData
	psSBIAC
)

// Negotiator performs telnet option negotiation over a byte stream fed
// in arbitrary chunks. It is created at connection start and holds all
// framing state between Feed calls.
//
// Feed, SubmitLine and NotifyDimensions may be called from different
// goroutines; internal state is mutex-guarded.
type Negotiator struct {
	mu       sync.Mutex
	policies map[byte]optionPolicy

	// local: options we perform (we answered WILL to a DO).
	// remote: options the peer performs (we answered DO to a WILL).
	local  map[byte]bool
	remote map[byte]bool

	state parseState
	verb  byte
	sbOpt byte
	sbBuf []byte

	width, height int
}

// New creates a negotiator with the fixed client option table.
func New() *Negotiator {
	return &Negotiator{
		policies: defaultPolicies(),
		local:    make(map[byte]bool),
		remote:   make(map[byte]bool),
	}
}

// LocalEcho reports whether the client should echo its own input. It is
// true until the peer negotiates ECHO on.
func (n *Negotiator) LocalEcho() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.remote[OptEcho]
}

// Feed parses inbound transport bytes and returns the ordered events
// they produce. Partial commands and subnegotiations are buffered across
// calls. After an EventCompressBegin the remaining bytes of p are
// returned inside the event untouched and must be fed through the
// decompressor.
func (n *Negotiator) Feed(p []byte) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	var events []Event
	var data []byte
	flush := func() {
		if len(data) > 0 {
			events = append(events, Event{Kind: EventData, Data: data})
			data = nil
		}
	}

	for i := 0; i < len(p); i++ {
		b := p[i]
		switch n.state {
		case psData:
			if b == IAC {
				n.state = psIAC
			} else {
				data = append(data, b)
			}

		case psIAC:
			switch b {
			case IAC:
				// escaped literal 255
				data = append(data, IAC)
				n.state = psData
			case WILL, WONT, DO, DONT:
				n.verb = b
				n.state = psNegotiate
			case SB:
				n.state = psSBOption
			case SE, NOP, DM, BRK, IP, AO, AYT, EC, EL, GA, EOR:
				// point commands carry no payload the client acts on,
				// but they still delimit the surrounding data
				flush()
				n.state = psData
			default:
				flush()
				events = append(events, Event{
					Kind: EventWarning,
					Msg:  fmt.Sprintf("unknown telnet command %d", b),
				})
				n.state = psData
			}

		case psNegotiate:
			flush()
			events = append(events, n.negotiate(n.verb, b)...)
			n.state = psData

		case psSBOption:
			n.sbOpt = b
			n.sbBuf = n.sbBuf[:0]
			n.state = psSBData

		case psSBData:
			if b == IAC {
				n.state = psSBIAC
			} else {
				n.sbBuf = append(n.sbBuf, b)
			}

		case psSBIAC:
			switch b {
			case IAC:
				n.sbBuf = append(n.sbBuf, IAC)
				n.state = psSBData
			case SE:
				flush()
				ev, compressed := n.endSubnegotiation()
				n.state = psData
				if compressed {
					// every byte after this point is part of the
					// compressed stream; hand the tail back untouched
					ev.Data = append([]byte(nil), p[i+1:]...)
					return append(events, ev)
				}
				events = append(events, ev)
			default:
				flush()
				events = append(events, Event{
					Kind: EventError,
					Msg:  fmt.Sprintf("unexpected byte %d after IAC inside subnegotiation", b),
				})
				n.state = psData
				return events
			}
		}
	}

	flush()
	return events
}

// negotiate answers a single WILL/WONT/DO/DONT for opt. Replies are
// suppressed when the option state would not change, which keeps two
// compliant endpoints from looping.
func (n *Negotiator) negotiate(verb, opt byte) []Event {
	pol := n.policies[opt]

	switch verb {
	case WILL:
		if !pol.request {
			return []Event{{Kind: EventSend, Data: []byte{IAC, DONT, opt}}}
		}
		if n.remote[opt] {
			return nil
		}
		n.remote[opt] = true
		return []Event{
			{Kind: EventSend, Data: []byte{IAC, DO, opt}},
			{Kind: EventWill, Option: opt},
		}

	case WONT:
		if !n.remote[opt] {
			return []Event{{Kind: EventWont, Option: opt}}
		}
		n.remote[opt] = false
		return []Event{
			{Kind: EventSend, Data: []byte{IAC, DONT, opt}},
			{Kind: EventWont, Option: opt},
		}

	case DO:
		if !pol.accept {
			return []Event{{Kind: EventSend, Data: []byte{IAC, WONT, opt}}}
		}
		if n.local[opt] {
			return nil
		}
		n.local[opt] = true
		events := []Event{
			{Kind: EventSend, Data: []byte{IAC, WILL, opt}},
			{Kind: EventDo, Option: opt},
		}
		if opt == OptNAWS {
			// the peer asked for window sizes; report immediately
			events = append(events, Event{Kind: EventSend, Data: n.nawsFrame()})
		}
		return events

	case DONT:
		if !n.local[opt] {
			return []Event{{Kind: EventDont, Option: opt}}
		}
		n.local[opt] = false
		return []Event{
			{Kind: EventSend, Data: []byte{IAC, WONT, opt}},
			{Kind: EventDont, Option: opt},
		}
	}
	return nil
}

// endSubnegotiation dispatches the buffered subnegotiation block. The
// second return value reports that the remaining stream is compressed.
func (n *Negotiator) endSubnegotiation() (Event, bool) {
	opt := n.sbOpt
	payload := append([]byte(nil), n.sbBuf...)
	n.sbBuf = n.sbBuf[:0]

	switch {
	case opt == OptCompress2 && n.remote[OptCompress2]:
		return Event{Kind: EventCompressBegin, Option: opt}, true
	case n.remote[opt] || n.local[opt]:
		return Event{Kind: EventSubnegotiation, Option: opt, Data: payload}, false
	default:
		return Event{
			Kind: EventWarning,
			Msg:  fmt.Sprintf("subnegotiation for disabled option %s (%d)", optionName(opt), opt),
		}, false
	}
}

// SubmitLine frames one line of user input for transmission: the text
// with IAC bytes escaped, terminated by CR LF. No escape interpretation
// is applied to user text.
func (n *Negotiator) SubmitLine(text string) []byte {
	return append(EscapeIAC([]byte(text)), '\r', '\n')
}

// NotifyDimensions records the display size and, when the peer has
// enabled window-size reporting, returns a NAWS report frame to send.
// It returns nil otherwise.
func (n *Negotiator) NotifyDimensions(width, height int) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.width, n.height = width, height
	if !n.local[OptNAWS] {
		return nil
	}
	return n.nawsFrame()
}

// nawsFrame builds IAC SB NAWS <w16> <h16> IAC SE with the payload
// IAC-escaped. Caller holds the lock.
func (n *Negotiator) nawsFrame() []byte {
	w, h := n.width, n.height
	payload := []byte{byte(w >> 8), byte(w), byte(h >> 8), byte(h)}
	frame := []byte{IAC, SB, OptNAWS}
	frame = append(frame, EscapeIAC(payload)...)
	return append(frame, IAC, SE)
}
