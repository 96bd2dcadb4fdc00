// Package telnet implements the client side of telnet option negotiation
// and framing. A Negotiator consumes raw inbound transport bytes and
// demultiplexes them into application data, negotiation traffic handled
// against a fixed option policy table, and reply bytes that must be
// written back to the transport.
package telnet

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255 // interpret as command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // subnegotiation begin
	GA   byte = 249 // go ahead
	EL   byte = 248
	EC   byte = 247
	AYT  byte = 246
	AO   byte = 245
	IP   byte = 244
	BRK  byte = 243
	DM   byte = 242
	NOP  byte = 241
	SE   byte = 240 // subnegotiation end
	EOR  byte = 239 // end of record
)

// Option codes recognized by the client's policy table.
const (
	OptEcho      byte = 1  // RFC 857, server-controlled echo
	OptNAWS      byte = 31 // RFC 1073, window size reporting
	OptCompress2 byte = 86 // MCCP2 stream compression
	OptZMP       byte = 93 // Zenith Mud Protocol messaging
)

// optionName maps known option codes to their conventional names for
// warnings and logs.
func optionName(opt byte) string {
	switch opt {
	case OptEcho:
		return "ECHO"
	case OptNAWS:
		return "NAWS"
	case OptCompress2:
		return "COMPRESS2"
	case OptZMP:
		return "ZMP"
	default:
		return "UNKNOWN"
	}
}

// EscapeIAC doubles every IAC byte in p so it survives transmission as
// literal data.
func EscapeIAC(p []byte) []byte {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if b == IAC {
			out = append(out, IAC)
		}
		out = append(out, b)
	}
	return out
}
