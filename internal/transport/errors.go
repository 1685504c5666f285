package transport

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of transport failure
type ErrorKind int

const (
	// KindSocketCreate indicates the socket could not be allocated
	KindSocketCreate ErrorKind = iota + 1
	// KindBind indicates the socket could not be bound to the local address
	KindBind
	// KindSocketOption indicates a socket option (SO_BROADCAST) could not be set
	KindSocketOption
	// KindAddress indicates a destination address could not be resolved
	KindAddress
	// KindSend indicates a fatal failure while transmitting
	KindSend
	// KindRecv indicates a fatal failure while receiving
	KindRecv
	// KindCancelled indicates the caller's context ended before the transfer completed
	KindCancelled
)

// Sentinels for errors.Is matching against *Error values.
var (
	ErrSocketCreate = &Error{Kind: KindSocketCreate}
	ErrBind         = &Error{Kind: KindBind}
	ErrSocketOption = &Error{Kind: KindSocketOption}
	ErrAddress      = &Error{Kind: KindAddress}
	ErrSend         = &Error{Kind: KindSend}
	ErrRecv         = &Error{Kind: KindRecv}
	ErrCancelled    = &Error{Kind: KindCancelled}
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindSocketCreate:
		return "socket create error"
	case KindBind:
		return "bind error"
	case KindSocketOption:
		return "socket option error"
	case KindAddress:
		return "address error"
	case KindSend:
		return "send error"
	case KindRecv:
		return "receive error"
	case KindCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a classified transport failure.
type Error struct {
	Kind ErrorKind // Category of failure
	Op   string    // Operation that failed (e.g., "socket", "bind", "sendto")
	Addr string    // Address involved, if any
	Err  error     // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Addr != "" {
		msg += " " + e.Addr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, transport.ErrBind).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0 if there
// is none.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
