//go:build windows

package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/sys/windows"
)

var errControl = errors.New("setsockopt SO_BROADCAST failed")

// Winsock bind failures
const (
	wsaeacces     = syscall.Errno(10013)
	wsaeaddrinuse = syscall.Errno(10048)
)

// openSocket relies on net.ListenConfig, which creates and binds in one
// call. SO_BROADCAST is applied from the Control hook, which runs before
// bind, so on Windows the order is create, enable broadcast, bind rather
// than create, bind, enable broadcast as on unix. A broadcast failure is
// still reported as KindSocketOption.
func openSocket(ip net.IP, port int, broadcast bool) (net.PacketConn, error) {
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))

	var optErr error
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			if !broadcast {
				return nil
			}
			err := c.Control(func(fd uintptr) {
				optErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_BROADCAST, 1)
			})
			if err != nil {
				return err
			}
			if optErr != nil {
				return errControl
			}
			return nil
		},
	}

	conn, err := lc.ListenPacket(context.Background(), "udp4", addr)
	if err != nil {
		if optErr != nil {
			return nil, &Error{Kind: KindSocketOption, Op: "setsockopt SO_BROADCAST", Addr: addr, Err: optErr}
		}
		if errors.Is(err, wsaeaddrinuse) || errors.Is(err, wsaeacces) {
			return nil, &Error{Kind: KindBind, Op: "bind", Addr: addr, Err: err}
		}
		return nil, &Error{Kind: KindSocketCreate, Op: "socket", Addr: addr, Err: err}
	}
	return conn, nil
}
