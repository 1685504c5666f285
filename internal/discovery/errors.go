package discovery

import "fmt"

// Stage identifies the step of a discovery round that failed
type Stage int

const (
	// StageOpen is socket creation, bind and broadcast setup
	StageOpen Stage = iota + 1
	// StageResolve is building the broadcast destination address
	StageResolve
	// StageSend is transmitting the query
	StageSend
	// StageReceive is collecting a reply
	StageReceive
)

// String returns a human-readable name for the stage
func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "open"
	case StageResolve:
		return "resolve"
	case StageSend:
		return "send"
	case StageReceive:
		return "receive"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Error reports which stage of a discovery round failed. The transport
// error it wraps stays reachable through errors.Is and errors.As.
type Error struct {
	Stage Stage
	Reply int // 1-based reply number for StageReceive, 0 otherwise
	Err   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Stage == StageReceive {
		return fmt.Sprintf("discovery failed at %s (reply %d): %v", e.Stage, e.Reply, e.Err)
	}
	return fmt.Sprintf("discovery failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}
