package protocol

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

const (
	// PacketSize is the fixed size of every infosvr packet, query or reply
	PacketSize = 512

	// HeaderSize is the size of the positional header at the start of a packet
	HeaderSize = 8

	// DefaultPort is the UDP port infosvr listens and answers on
	DefaultPort = 9999
)

// Service identifiers
const (
	ServiceLPTEmulation uint8 = 11
	ServiceIBox         uint8 = 12
)

// Packet direction markers (cmd_rsp field)
const (
	PacketCommand  uint8 = 21
	PacketResponse uint8 = 22
)

// Operations
const (
	OperationGetInfo uint16 = 31
	// OperationManuCmd runs a system command on the device without authentication.
	OperationManuCmd uint16 = 51
)

// Header field offsets
const (
	offService   = 0
	offCmdRsp    = 1
	offOperation = 2
	offID        = 4
)

// Packet is a complete infosvr datagram.
type Packet [PacketSize]byte

// Bytes returns the packet as a slice backed by the packet array.
func (p *Packet) Bytes() []byte {
	return p[:]
}

// Payload returns bytes 8..511.
func (p *Packet) Payload() []byte {
	return p[HeaderSize:]
}

// Header reads the positional header out of the packet.
func (p Packet) Header() Header {
	h, _ := ParseHeader(p[:])
	return h
}

// Header is the positional view of the first 8 bytes of a packet.
//
// Layout:
//
//	[0]     service     Device class (12 = IBox)
//	[1]     cmd_rsp     21 = command, 22 = response
//	[2-3]   operation   31 = get-info, 51 = system command
//	[4-7]   id          Request correlation counter
//
// Operation and ID are stored in host byte order, unconverted, the same way
// the stock ASUS client writes them.
// TODO: confirm against a big-endian MIPS device whether the reply id is
// echoed as sent or re-encoded by the firmware.
type Header struct {
	Service   uint8
	CmdRsp    uint8
	Operation uint16
	ID        uint32
}

// ParseHeader reads the header fields out of b. Only the header is
// interpreted; payload bytes are left to the caller.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("packet too short for header: %d bytes (need %d)", len(b), HeaderSize)
	}
	return Header{
		Service:   b[offService],
		CmdRsp:    b[offCmdRsp],
		Operation: binary.NativeEndian.Uint16(b[offOperation:]),
		ID:        binary.NativeEndian.Uint32(b[offID:]),
	}, nil
}

// put writes the header into the first HeaderSize bytes of b.
func (h Header) put(b []byte) {
	b[offService] = h.Service
	b[offCmdRsp] = h.CmdRsp
	binary.NativeEndian.PutUint16(b[offOperation:], h.Operation)
	binary.NativeEndian.PutUint32(b[offID:], h.ID)
}

// IsResponse reports whether the header carries the response marker
func (h Header) IsResponse() bool {
	return h.CmdRsp == PacketResponse
}

// String returns a debug representation of the header
func (h Header) String() string {
	return fmt.Sprintf("Header{service=%d, cmd_rsp=%s, operation=%s, id=%d}",
		h.Service, CmdRspName(h.CmdRsp), OperationName(h.Operation), h.ID)
}

// OperationName returns a human-readable operation name
func OperationName(op uint16) string {
	switch op {
	case OperationGetInfo:
		return "get-info"
	case OperationManuCmd:
		return "manu-cmd"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CmdRspName returns a human-readable packet direction
func CmdRspName(v uint8) string {
	switch v {
	case PacketCommand:
		return "command"
	case PacketResponse:
		return "response"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// Codec builds command packets and owns the request counter that stamps
// each one with a fresh id.
type Codec struct {
	next atomic.Uint32
}

// NewCodec creates a codec whose first packet carries id 0
func NewCodec() *Codec {
	return &Codec{}
}

// NewCodecAt creates a codec whose first packet carries the given id
func NewCodecAt(start uint32) *Codec {
	c := &Codec{}
	c.next.Store(start)
	return c
}

// NextID returns the id the next built packet will carry
func (c *Codec) NextID() uint32 {
	return c.next.Load()
}

// Build constructs a zero-filled command packet with the given header
// fields and the next request id. The counter advances exactly once per call.
func (c *Codec) Build(service, cmdRsp uint8, operation uint16) Packet {
	var p Packet
	id := c.next.Add(1) - 1
	Header{
		Service:   service,
		CmdRsp:    cmdRsp,
		Operation: operation,
		ID:        id,
	}.put(p[:])
	return p
}

// BuildQuery constructs the get-info broadcast query.
func (c *Codec) BuildQuery() Packet {
	return c.Build(ServiceIBox, PacketCommand, OperationGetInfo)
}
