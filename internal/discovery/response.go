package discovery

import (
	"fmt"
	"net"
	"time"

	"github.com/muurk/infoclient/internal/protocol"
)

// Response is one reply packet received during a discovery round
type Response struct {
	// Index is the reply's position in arrival order, starting at 0
	Index int

	// Packet holds the raw 512 reply bytes, uninterpreted
	Packet protocol.Packet

	// From is the source of the first datagram of this reply
	From net.Addr

	// ReceivedAt is when the reply was complete
	ReceivedAt time.Time
}

// Bytes returns the raw reply bytes
func (r *Response) Bytes() []byte {
	return r.Packet.Bytes()
}

// Header returns the positional header of the reply
func (r *Response) Header() protocol.Header {
	return r.Packet.Header()
}

// IP returns the source IP address as a string, or "" if unknown
func (r *Response) IP() string {
	switch a := r.From.(type) {
	case *net.UDPAddr:
		return a.IP.String()
	case nil:
		return ""
	default:
		host, _, err := net.SplitHostPort(a.String())
		if err != nil {
			return a.String()
		}
		return host
	}
}

// String returns a human-readable representation of the reply
func (r *Response) String() string {
	from := "unknown"
	if r.From != nil {
		from = r.From.String()
	}
	return fmt.Sprintf("Reply %d from %s: %s", r.Index+1, from, r.Header())
}
