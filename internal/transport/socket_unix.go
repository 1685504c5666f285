//go:build unix

package transport

import (
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// openSocket performs create, bind and SO_BROADCAST as separate syscalls so
// each failure can be reported with its own kind, then hands the descriptor
// to the runtime poller.
func openSocket(ip net.IP, port int, broadcast bool) (net.PacketConn, error) {
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, &Error{Kind: KindSocketCreate, Op: "socket", Err: os.NewSyscallError("socket", err)}
	}
	unix.CloseOnExec(fd)

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip.To4())
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, &Error{Kind: KindBind, Op: "bind", Addr: addr, Err: os.NewSyscallError("bind", err)}
	}

	if broadcast {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
			_ = unix.Close(fd)
			return nil, &Error{Kind: KindSocketOption, Op: "setsockopt SO_BROADCAST", Addr: addr,
				Err: os.NewSyscallError("setsockopt", err)}
		}
	}

	// FilePacketConn dups the descriptor; the original is closed with f.
	f := os.NewFile(uintptr(fd), "udp4:"+addr)
	defer f.Close()

	conn, err := net.FilePacketConn(f)
	if err != nil {
		return nil, &Error{Kind: KindSocketCreate, Op: "register", Addr: addr, Err: err}
	}
	return conn, nil
}
