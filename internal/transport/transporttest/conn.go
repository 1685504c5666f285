// Package transporttest provides a scripted in-memory net.PacketConn for
// exercising the transport and discovery packages without real sockets.
package transporttest

import (
	"bytes"
	"net"
	"os"
	"sync"
	"time"
)

// WriteStep scripts the outcome of one WriteTo call. N is the number of
// bytes accepted (capped at the length offered); Err is returned alongside.
type WriteStep struct {
	N   int
	Err error
}

// ReadStep scripts the outcome of one ReadFrom call. Data is copied into the
// caller's buffer (truncated to fit) and From is reported as the source.
type ReadStep struct {
	Data []byte
	From net.Addr
	Err  error
}

// Conn is a net.PacketConn whose writes and reads follow a script.
//
// Writes consume WriteSteps in order; once the script is exhausted every
// write is accepted in full. Reads block until a ReadStep is queued with
// Deliver, the read deadline passes, or the conn is closed.
type Conn struct {
	// OnWrite, if set, is called after every successful write with the
	// accepted bytes and destination. It runs without the lock held.
	OnWrite func(p []byte, addr net.Addr)

	mu            sync.Mutex
	writeScript   []WriteStep
	written       bytes.Buffer
	writeCalls    int
	writeDeadline time.Time
	readCalls     int
	readDeadline  time.Time
	wake          chan struct{}
	closed        bool
	closeCount    int
	reads         chan ReadStep
	local         net.Addr
}

// NewConn creates a Conn with the given write script.
func NewConn(writes ...WriteStep) *Conn {
	return &Conn{
		writeScript: writes,
		wake:        make(chan struct{}),
		reads:       make(chan ReadStep, 64),
		local:       &net.UDPAddr{IP: net.IPv4zero, Port: 9999},
	}
}

// Deliver queues read outcomes. It never blocks for fewer than 64 pending steps.
func (c *Conn) Deliver(steps ...ReadStep) {
	for _, s := range steps {
		c.reads <- s
	}
}

// ReadFrom implements net.PacketConn.
func (c *Conn) ReadFrom(p []byte) (int, net.Addr, error) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: net.ErrClosed}
		}
		deadline := c.readDeadline
		wake := c.wake
		c.mu.Unlock()

		var (
			timer   *time.Timer
			timeout <-chan time.Time
		)
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: os.ErrDeadlineExceeded}
			}
			timer = time.NewTimer(d)
			timeout = timer.C
		}

		select {
		case step := <-c.reads:
			stopTimer(timer)
			c.mu.Lock()
			c.readCalls++
			c.mu.Unlock()
			if step.Err != nil {
				return 0, nil, step.Err
			}
			n := copy(p, step.Data)
			return n, step.From, nil
		case <-wake:
			// deadline changed or conn closed
			stopTimer(timer)
		case <-timeout:
			return 0, nil, &net.OpError{Op: "read", Net: "udp", Err: os.ErrDeadlineExceeded}
		}
	}
}

// WriteTo implements net.PacketConn.
func (c *Conn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, &net.OpError{Op: "write", Net: "udp", Err: net.ErrClosed}
	}
	if !c.writeDeadline.IsZero() && !time.Now().Before(c.writeDeadline) {
		c.mu.Unlock()
		return 0, &net.OpError{Op: "write", Net: "udp", Err: os.ErrDeadlineExceeded}
	}

	c.writeCalls++
	n, err := len(p), error(nil)
	if len(c.writeScript) > 0 {
		step := c.writeScript[0]
		c.writeScript = c.writeScript[1:]
		n, err = step.N, step.Err
		if n > len(p) {
			n = len(p)
		}
	}
	c.written.Write(p[:n])
	onWrite := c.OnWrite
	c.mu.Unlock()

	if onWrite != nil && n > 0 {
		onWrite(append([]byte(nil), p[:n]...), addr)
	}
	return n, err
}

// Close implements net.PacketConn. Every call is counted; only the first
// has an effect.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	if c.closed {
		return &net.OpError{Op: "close", Net: "udp", Err: net.ErrClosed}
	}
	c.closed = true
	c.wakeLocked()
	return nil
}

// LocalAddr implements net.PacketConn.
func (c *Conn) LocalAddr() net.Addr {
	return c.local
}

// SetDeadline implements net.PacketConn.
func (c *Conn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readDeadline = t
	c.writeDeadline = t
	c.wakeLocked()
	return nil
}

// SetReadDeadline implements net.PacketConn.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readDeadline = t
	c.wakeLocked()
	return nil
}

// SetWriteDeadline implements net.PacketConn.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeDeadline = t
	return nil
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func (c *Conn) wakeLocked() {
	close(c.wake)
	c.wake = make(chan struct{})
}

// Written returns a copy of every byte accepted by WriteTo so far.
func (c *Conn) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.written.Bytes()...)
}

// WriteCalls returns the number of WriteTo calls that reached the script.
func (c *Conn) WriteCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeCalls
}

// ReadCalls returns the number of ReadFrom calls that consumed a ReadStep.
func (c *Conn) ReadCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readCalls
}

// CloseCount returns how many times Close was called.
func (c *Conn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// ReadDeadline returns the current read deadline.
func (c *Conn) ReadDeadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readDeadline
}
