package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/infoclient/internal/logging"
)

// aLongTimeAgo is a deadline in the past, used to unblock a pending call
var aLongTimeAgo = time.Unix(1, 0)

// deadliner is the half of net.PacketConn the I/O loop needs for one direction
type deadliner func(t time.Time) error

// SendExact writes all of buf to dst, continuing from where a partial write
// stopped until every byte has been accepted.
//
// Interrupted calls, zero-byte writes and deadline expiries not caused by ctx
// are retried. When ctx ends the pending write is unblocked and ErrCancelled
// is returned. Any other failure is returned as ErrSend.
func SendExact(ctx context.Context, conn net.PacketConn, dst net.Addr, buf []byte) error {
	stop := watch(ctx, conn.SetWriteDeadline)
	defer stop()

	for off := 0; off < len(buf); {
		if err := ctx.Err(); err != nil {
			return &Error{Kind: KindCancelled, Op: "sendto", Addr: addrString(dst), Err: err}
		}

		n, err := conn.WriteTo(buf[off:], dst)
		if n > 0 {
			off += n
			if off < len(buf) {
				logging.Debug("Partial send",
					zap.Int("written", n),
					zap.Int("remaining", len(buf)-off),
				)
			}
		}
		if err == nil {
			continue
		}

		switch {
		case isInterrupted(err):
			logging.Debug("Send interrupted, retrying", zap.Error(err))
			continue
		case isTimeout(err):
			if ctxErr := contextDone(ctx); ctxErr != nil {
				return &Error{Kind: KindCancelled, Op: "sendto", Addr: addrString(dst), Err: ctxErr}
			}
			continue
		default:
			return &Error{Kind: KindSend, Op: "sendto", Addr: addrString(dst), Err: err}
		}
	}
	return nil
}

// RecvExact fills buf completely, reading as many times as needed. The
// returned address is the source of the first successful read.
//
// The retry and cancellation rules are the same as for SendExact; fatal
// failures are returned as ErrRecv.
func RecvExact(ctx context.Context, conn net.PacketConn, buf []byte) (net.Addr, error) {
	stop := watch(ctx, conn.SetReadDeadline)
	defer stop()

	var src net.Addr
	for off := 0; off < len(buf); {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: KindCancelled, Op: "recvfrom", Err: err}
		}

		n, from, err := conn.ReadFrom(buf[off:])
		if n > 0 {
			if src == nil {
				src = from
			}
			off += n
			if off < len(buf) {
				logging.Debug("Partial receive",
					zap.Int("read", n),
					zap.Int("remaining", len(buf)-off),
					zap.String("from", addrString(from)),
				)
			}
		}
		if err == nil {
			continue
		}

		switch {
		case isInterrupted(err):
			logging.Debug("Receive interrupted, retrying", zap.Error(err))
			continue
		case isTimeout(err):
			if ctxErr := contextDone(ctx); ctxErr != nil {
				return nil, &Error{Kind: KindCancelled, Op: "recvfrom", Err: ctxErr}
			}
			continue
		default:
			return nil, &Error{Kind: KindRecv, Op: "recvfrom", Err: err}
		}
	}
	return src, nil
}

// watch applies ctx's deadline to the socket and, if ctx can be cancelled,
// starts a goroutine that pulls the deadline into the past when it is. The
// returned func waits for that goroutine and clears the deadline.
func watch(ctx context.Context, setDeadline deadliner) (stop func()) {
	if d, ok := ctx.Deadline(); ok {
		_ = setDeadline(d)
	}

	if ctx.Done() == nil {
		return func() { _ = setDeadline(time.Time{}) }
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = setDeadline(aLongTimeAgo)
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-exited
		_ = setDeadline(time.Time{})
	}
}

// contextDone is ctx.Err, except that a passed deadline counts as done even
// if ctx's own timer has not fired yet.
func contextDone(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return nil
}

// isInterrupted reports whether err is a signal-interrupted system call
func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
