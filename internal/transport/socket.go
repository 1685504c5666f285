package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/muurk/infoclient/internal/logging"
	"github.com/muurk/infoclient/internal/protocol"
)

const (
	// DefaultListenAddress binds on every local interface so replies are
	// received regardless of which one they arrive on
	DefaultListenAddress = "0.0.0.0"

	// BroadcastAddress is the limited broadcast destination for queries
	BroadcastAddress = "255.255.255.255"
)

// Config describes the local UDP endpoint used for discovery
type Config struct {
	// ListenAddress is the local IPv4 address to bind (wildcard by default)
	ListenAddress string

	// Port is the local port to bind; replies are addressed to it
	Port int

	// Broadcast enables SO_BROADCAST so queries can go to 255.255.255.255
	Broadcast bool
}

// DefaultConfig returns the endpoint configuration infosvr replies expect:
// wildcard address, port 9999, broadcast enabled.
func DefaultConfig() Config {
	return Config{
		ListenAddress: DefaultListenAddress,
		Port:          protocol.DefaultPort,
		Broadcast:     true,
	}
}

// Open creates a UDP socket, binds it to cfg's address and port, then enables
// broadcast. Each step fails with its own error kind (ErrSocketCreate,
// ErrBind, ErrSocketOption); on failure everything acquired so far is
// released before the first error is returned.
func Open(cfg Config) (net.PacketConn, error) {
	ip, err := parseIPv4(cfg.ListenAddress)
	if err != nil {
		return nil, &Error{Kind: KindBind, Op: "bind", Addr: cfg.ListenAddress, Err: err}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, &Error{Kind: KindBind, Op: "bind", Addr: cfg.ListenAddress,
			Err: fmt.Errorf("invalid port %d", cfg.Port)}
	}

	conn, err := openSocket(ip, cfg.Port, cfg.Broadcast)
	if err != nil {
		logging.Warn("Socket setup failed",
			zap.String("listen_addr", cfg.ListenAddress),
			zap.Int("port", cfg.Port),
			zap.Error(err),
		)
		return nil, err
	}

	logging.LogSocket("opened", conn.LocalAddr().String())
	return conn, nil
}

// Listener opens discovery sockets from a fixed Config
type Listener struct {
	Config Config
}

// NewListener creates a Listener with DefaultConfig
func NewListener() *Listener {
	return &Listener{Config: DefaultConfig()}
}

// Open implements the discovery socket opener. The context is only checked
// before the socket is created; setup itself does not block.
func (l *Listener) Open(ctx context.Context) (net.PacketConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindCancelled, Op: "socket", Err: err}
	}
	return Open(l.Config)
}

// ResolveDestination builds the UDP endpoint for an IPv4 literal and port.
// Host names are rejected rather than looked up.
func ResolveDestination(host string, port int) (*net.UDPAddr, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	if port <= 0 || port > 65535 {
		return nil, &Error{Kind: KindAddress, Op: "resolve", Addr: addr,
			Err: fmt.Errorf("invalid port %d", port)}
	}

	ip := net.ParseIP(host).To4()
	if ip == nil {
		return nil, &Error{Kind: KindAddress, Op: "resolve", Addr: addr,
			Err: fmt.Errorf("not an IPv4 address: %q", host)}
	}
	return &net.UDPAddr{IP: ip, Port: port}, nil
}

func parseIPv4(s string) (net.IP, error) {
	if s == "" {
		return net.IPv4zero.To4(), nil
	}
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("not an IPv4 address: %q", s)
	}
	return ip, nil
}
