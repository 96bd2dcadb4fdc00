package telnet

import "fmt"

// EventKind identifies one variant of the closed negotiation event set.
type EventKind int

const (
	// EventData carries application bytes for the terminal renderer.
	EventData EventKind = iota
	// EventSend carries bytes that must be written back to the transport.
	EventSend
	// EventWill reports that the peer announced an option and we accepted.
	EventWill
	// EventWont reports that the peer withdrew an option.
	EventWont
	// EventDo reports that the peer asked us to enable an option and we
	// agreed.
	EventDo
	// EventDont reports that the peer asked us to disable an option.
	EventDont
	// EventSubnegotiation carries an option-specific payload block.
	EventSubnegotiation
	// EventCompressBegin signals that every transport byte after this
	// event is zlib-compressed; Data holds the already-read tail of the
	// compressed stream.
	EventCompressBegin
	// EventWarning reports a malformed or unsupported sequence that was
	// absorbed without ending the session.
	EventWarning
	// EventError reports protocol corruption that cannot be
	// resynchronized; the session must terminate.
	EventError
)

// String returns the variant name, for logs and test failures.
func (k EventKind) String() string {
	switch k {
	case EventData:
		return "Data"
	case EventSend:
		return "Send"
	case EventWill:
		return "Will"
	case EventWont:
		return "Wont"
	case EventDo:
		return "Do"
	case EventDont:
		return "Dont"
	case EventSubnegotiation:
		return "Subnegotiation"
	case EventCompressBegin:
		return "CompressBegin"
	case EventWarning:
		return "Warning"
	case EventError:
		return "Error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one tagged negotiation event. Which fields are meaningful
// depends on Kind: Data for Data/Send/Subnegotiation/CompressBegin,
// Option for the negotiation and subnegotiation variants, Msg for
// Warning and Error.
type Event struct {
	Kind   EventKind
	Data   []byte
	Option byte
	Msg    string
}
