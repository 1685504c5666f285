package main

import (
	"errors"

	"github.com/muurk/infoclient/internal/discovery"
	"github.com/muurk/infoclient/internal/transport"
)

// Exit statuses, one per failure stage
const (
	exitOK           = 0
	exitSocketCreate = 1
	exitAddress      = 2
	exitSend         = 3
	exitFirstReply   = 4
	exitLaterReply   = 5
	exitBind         = 6
	exitSocketOption = 7
	exitCancelled    = 8
	exitUsage        = 9
)

// usageError marks bad flags, arguments or settings
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit status. Anything that is
// not a discovery failure is a usage or configuration problem.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var de *discovery.Error
	if !errors.As(err, &de) {
		return exitUsage
	}

	switch transport.KindOf(de) {
	case transport.KindCancelled:
		return exitCancelled
	case transport.KindSocketCreate:
		return exitSocketCreate
	case transport.KindBind:
		return exitBind
	case transport.KindSocketOption:
		return exitSocketOption
	case transport.KindAddress:
		return exitAddress
	case transport.KindSend:
		return exitSend
	case transport.KindRecv:
		return receiveCode(de.Reply)
	}

	switch de.Stage {
	case discovery.StageOpen:
		return exitSocketCreate
	case discovery.StageResolve:
		return exitAddress
	case discovery.StageSend:
		return exitSend
	case discovery.StageReceive:
		return receiveCode(de.Reply)
	}
	return exitUsage
}

func receiveCode(reply int) int {
	if reply <= 1 {
		return exitFirstReply
	}
	return exitLaterReply
}

func failureTitle(err error) string {
	var de *discovery.Error
	if errors.As(err, &de) {
		return "Discovery failed"
	}
	return "Invalid usage"
}

// troubleshooting returns tips for the failure stage of err
func troubleshooting(err error) []string {
	switch exitCode(err) {
	case exitBind:
		return []string{
			"Replies are sent to UDP port 9999, so it must be free locally",
			"Stop any other infosvr client or service using that port",
			"Binding to a low port may need elevated privileges",
		}
	case exitSocketOption:
		return []string{"The system refused to enable broadcast on the socket"}
	case exitSocketCreate:
		return []string{"Check the process may open UDP sockets (sandbox, seccomp, file limits)"}
	case exitAddress:
		return []string{"--broadcast must be an IPv4 address, e.g. 255.255.255.255 or 192.168.1.255"}
	case exitSend:
		return []string{
			"Check a network interface is up with an IPv4 address",
			"Some networks block limited broadcast; try the subnet broadcast address",
		}
	case exitFirstReply, exitLaterReply:
		return []string{"The socket failed while waiting for replies; retry the query"}
	case exitCancelled:
		return []string{
			"No device answered before the timeout",
			"Ensure the device is powered on and on the same network segment",
			"Try increasing --timeout",
		}
	}
	return []string{"See 'infoclient --help' for usage"}
}
