package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/muurk/infoclient/internal/protocol"
	"github.com/muurk/infoclient/internal/transport/transporttest"
)

var (
	broadcastDst = &net.UDPAddr{IP: net.IPv4bcast, Port: protocol.DefaultPort}
	deviceAddr   = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 1), Port: protocol.DefaultPort}
	otherAddr    = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 2), Port: protocol.DefaultPort}
)

func interrupted(op string) error {
	return &net.OpError{Op: op, Net: "udp", Err: os.NewSyscallError(op, syscall.EINTR)}
}

func testPayload() []byte {
	buf := make([]byte, protocol.PacketSize)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return buf
}

func TestSendExact(t *testing.T) {
	tests := []struct {
		name      string
		steps     []transporttest.WriteStep
		wantCalls int
	}{
		{
			name:      "single full write",
			steps:     nil,
			wantCalls: 1,
		},
		{
			name: "partial writes 1+7+500+4",
			steps: []transporttest.WriteStep{
				{N: 1}, {N: 7}, {N: 500}, {N: 4},
			},
			wantCalls: 4,
		},
		{
			name: "interrupted mid-transfer",
			steps: []transporttest.WriteStep{
				{N: 100}, {N: 0, Err: interrupted("sendto")}, {N: 412},
			},
			wantCalls: 3,
		},
		{
			name: "spurious zero-byte write",
			steps: []transporttest.WriteStep{
				{N: 0}, {N: 0}, {N: 512},
			},
			wantCalls: 3,
		},
		{
			name: "deadline expiry without cancellation",
			steps: []transporttest.WriteStep{
				{N: 0, Err: &net.OpError{Op: "write", Net: "udp", Err: os.ErrDeadlineExceeded}},
			},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := transporttest.NewConn(tt.steps...)
			buf := testPayload()

			if err := SendExact(context.Background(), conn, broadcastDst, buf); err != nil {
				t.Fatalf("SendExact() error = %v", err)
			}

			if got := conn.Written(); !bytes.Equal(got, buf) {
				t.Errorf("written %d bytes, not identical to buffer", len(got))
			}
			if got := conn.WriteCalls(); got != tt.wantCalls {
				t.Errorf("WriteCalls() = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestSendExact_FatalError(t *testing.T) {
	conn := transporttest.NewConn(
		transporttest.WriteStep{N: 10},
		transporttest.WriteStep{Err: &net.OpError{Op: "write", Net: "udp", Err: syscall.ENETUNREACH}},
	)

	err := SendExact(context.Background(), conn, broadcastDst, testPayload())
	if err == nil {
		t.Fatal("SendExact() error = nil, want send error")
	}
	if !errors.Is(err, ErrSend) {
		t.Errorf("errors.Is(err, ErrSend) = false, err = %v", err)
	}
	if !errors.Is(err, syscall.ENETUNREACH) {
		t.Errorf("underlying errno lost: %v", err)
	}
	if KindOf(err) != KindSend {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindSend)
	}
}

func TestSendExact_ClosedSocket(t *testing.T) {
	conn := transporttest.NewConn()
	_ = conn.Close()

	err := SendExact(context.Background(), conn, broadcastDst, testPayload())
	if !errors.Is(err, ErrSend) {
		t.Fatalf("SendExact() error = %v, want ErrSend", err)
	}
	if !errors.Is(err, net.ErrClosed) {
		t.Errorf("errors.Is(err, net.ErrClosed) = false, err = %v", err)
	}
}

func TestSendExact_AlreadyCancelled(t *testing.T) {
	conn := transporttest.NewConn()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SendExact(ctx, conn, broadcastDst, testPayload())
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("SendExact() error = %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("errors.Is(err, context.Canceled) = false, err = %v", err)
	}
	if got := conn.WriteCalls(); got != 0 {
		t.Errorf("WriteCalls() = %d, want 0", got)
	}
}

func chunks(buf []byte, sizes ...int) [][]byte {
	var out [][]byte
	off := 0
	for _, n := range sizes {
		out = append(out, buf[off:off+n])
		off += n
	}
	return out
}

func TestRecvExact(t *testing.T) {
	want := testPayload()
	parts := chunks(want, 1, 7, 500, 4)

	tests := []struct {
		name  string
		steps []transporttest.ReadStep
	}{
		{
			name:  "single datagram",
			steps: []transporttest.ReadStep{{Data: want, From: deviceAddr}},
		},
		{
			name: "fragments 1+7+500+4",
			steps: []transporttest.ReadStep{
				{Data: parts[0], From: deviceAddr},
				{Data: parts[1], From: otherAddr},
				{Data: parts[2], From: otherAddr},
				{Data: parts[3], From: otherAddr},
			},
		},
		{
			name: "interrupted mid-transfer",
			steps: []transporttest.ReadStep{
				{Data: parts[0], From: deviceAddr},
				{Data: parts[1], From: deviceAddr},
				{Err: interrupted("recvfrom")},
				{Data: parts[2], From: deviceAddr},
				{Data: parts[3], From: deviceAddr},
			},
		},
		{
			name: "spurious empty read",
			steps: []transporttest.ReadStep{
				{Data: nil, From: otherAddr},
				{Data: want, From: deviceAddr},
			},
		},
		{
			name: "deadline expiry without cancellation",
			steps: []transporttest.ReadStep{
				{Err: &net.OpError{Op: "read", Net: "udp", Err: os.ErrDeadlineExceeded}},
				{Data: want, From: deviceAddr},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := transporttest.NewConn()
			conn.Deliver(tt.steps...)

			buf := make([]byte, protocol.PacketSize)
			src, err := RecvExact(context.Background(), conn, buf)
			if err != nil {
				t.Fatalf("RecvExact() error = %v", err)
			}

			if !bytes.Equal(buf, want) {
				t.Error("received buffer differs from the uninterrupted payload")
			}
			if src == nil || src.String() != deviceAddr.String() {
				t.Errorf("source = %v, want %v", src, deviceAddr)
			}
			if got := conn.ReadCalls(); got != len(tt.steps) {
				t.Errorf("ReadCalls() = %d, want %d", got, len(tt.steps))
			}
		})
	}
}

func TestRecvExact_FatalError(t *testing.T) {
	conn := transporttest.NewConn()
	conn.Deliver(
		transporttest.ReadStep{Data: make([]byte, 100), From: deviceAddr},
		transporttest.ReadStep{Err: &net.OpError{Op: "read", Net: "udp", Err: syscall.ECONNREFUSED}},
	)

	_, err := RecvExact(context.Background(), conn, make([]byte, protocol.PacketSize))
	if !errors.Is(err, ErrRecv) {
		t.Fatalf("RecvExact() error = %v, want ErrRecv", err)
	}
	if errors.Is(err, ErrSend) {
		t.Error("receive failure matched ErrSend")
	}
}

func TestRecvExact_ClosedMidOperation(t *testing.T) {
	conn := transporttest.NewConn()
	conn.Deliver(transporttest.ReadStep{Data: make([]byte, 8), From: deviceAddr})

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = conn.Close()
	}()

	_, err := RecvExact(context.Background(), conn, make([]byte, protocol.PacketSize))
	if !errors.Is(err, ErrRecv) {
		t.Fatalf("RecvExact() error = %v, want ErrRecv", err)
	}
	if !errors.Is(err, net.ErrClosed) {
		t.Errorf("errors.Is(err, net.ErrClosed) = false, err = %v", err)
	}
}

func TestRecvExact_Cancelled(t *testing.T) {
	conn := transporttest.NewConn()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := RecvExact(ctx, conn, make([]byte, protocol.PacketSize))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("RecvExact() error = %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("errors.Is(err, context.Canceled) = false, err = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %v", elapsed)
	}
	if d := conn.ReadDeadline(); !d.IsZero() {
		t.Errorf("read deadline left at %v, want cleared", d)
	}
}

func TestRecvExact_ContextDeadline(t *testing.T) {
	conn := transporttest.NewConn()
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_, err := RecvExact(ctx, conn, make([]byte, protocol.PacketSize))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("RecvExact() error = %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("errors.Is(err, context.DeadlineExceeded) = false, err = %v", err)
	}
}

func TestRecvExact_BlocksWithoutData(t *testing.T) {
	conn := transporttest.NewConn()
	done := make(chan error, 1)

	go func() {
		_, err := RecvExact(context.Background(), conn, make([]byte, protocol.PacketSize))
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("RecvExact() returned early with %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	_ = conn.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrRecv) {
			t.Errorf("RecvExact() error = %v, want ErrRecv after close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RecvExact() did not return after close")
	}
}
