package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/infoclient/internal/logging"
	"github.com/muurk/infoclient/internal/protocol"
	"github.com/muurk/infoclient/internal/transport"
)

const (
	// DefaultReplies is the number of reply packets an infosvr device sends
	// per get-info query
	DefaultReplies = 2

	// DefaultTimeout of zero means a round waits for replies indefinitely
	DefaultTimeout time.Duration = 0
)

// Opener acquires the socket used for one discovery round
type Opener interface {
	Open(ctx context.Context) (net.PacketConn, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(ctx context.Context) (net.PacketConn, error)

// Open calls f(ctx)
func (f OpenerFunc) Open(ctx context.Context) (net.PacketConn, error) {
	return f(ctx)
}

// Scanner runs infosvr discovery rounds
type Scanner struct {
	// Opener provides the bound, broadcast-enabled socket
	Opener Opener

	// Codec builds the query and owns the request id counter
	Codec *protocol.Codec

	// BroadcastAddress is the destination IPv4 address for the query
	BroadcastAddress string

	// Port is the destination UDP port
	Port int

	// ExpectedReplies is the number of complete replies a round collects
	ExpectedReplies int

	// Timeout bounds a whole round; zero waits forever
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings: a socket bound to
// 0.0.0.0:9999, queries to 255.255.255.255:9999, two replies, no timeout.
func NewScanner() *Scanner {
	return &Scanner{
		Opener:           transport.NewListener(),
		Codec:            protocol.NewCodec(),
		BroadcastAddress: transport.BroadcastAddress,
		Port:             protocol.DefaultPort,
		ExpectedReplies:  DefaultReplies,
		Timeout:          DefaultTimeout,
	}
}

// Discover runs one discovery round
func (s *Scanner) Discover() ([]*Response, error) {
	return s.DiscoverWithContext(context.Background())
}

// DiscoverWithContext broadcasts one get-info query and collects
// ExpectedReplies complete replies in arrival order.
//
// The round fails on the first error and never returns partial results. The
// socket is closed exactly once however the round ends. Cancelling ctx, or
// Timeout expiring, unblocks a pending send or receive with
// transport.ErrCancelled.
func (s *Scanner) DiscoverWithContext(ctx context.Context) ([]*Response, error) {
	if s.ExpectedReplies < 1 {
		return nil, fmt.Errorf("expected replies must be at least 1, got %d", s.ExpectedReplies)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	conn, err := s.Opener.Open(ctx)
	if err != nil {
		return nil, &Error{Stage: StageOpen, Err: err}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Warn("Failed to close discovery socket", zap.Error(err))
			return
		}
		logging.LogSocket("closed", conn.LocalAddr().String())
	}()

	dst, err := transport.ResolveDestination(s.BroadcastAddress, s.Port)
	if err != nil {
		return nil, &Error{Stage: StageResolve, Err: err}
	}

	query := s.Codec.BuildQuery()
	logging.Debug("Sending get-info query",
		zap.String("dst", dst.String()),
		zap.Uint32("id", query.Header().ID),
	)

	if err := transport.SendExact(ctx, conn, dst, query.Bytes()); err != nil {
		return nil, &Error{Stage: StageSend, Err: err}
	}
	logging.LogPacket("sent", dst.String(), query.Bytes())

	responses := make([]*Response, 0, s.ExpectedReplies)
	for i := 0; i < s.ExpectedReplies; i++ {
		resp := &Response{Index: i}
		from, err := transport.RecvExact(ctx, conn, resp.Packet.Bytes())
		if err != nil {
			return nil, &Error{Stage: StageReceive, Reply: i + 1, Err: err}
		}
		resp.From = from
		resp.ReceivedAt = time.Now()

		logging.LogPacket("received", resp.From.String(), resp.Bytes())
		responses = append(responses, resp)
	}

	logging.Info("Discovery round complete",
		zap.Int("replies", len(responses)),
		zap.Uint32("id", query.Header().ID),
	)
	return responses, nil
}

// Discover is a convenience function to run one round with default settings
// and the given timeout (zero waits forever)
func Discover(timeout time.Duration) ([]*Response, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Discover()
}
