//go:build windows

package transport

import (
	"errors"
	"net"
	"testing"
)

func TestOpen_WindowsBroadcastBeforeBind(t *testing.T) {
	conn, err := Open(Config{ListenAddress: "127.0.0.1", Port: 0, Broadcast: true})
	if err != nil {
		t.Skipf("cannot open loopback UDP socket: %v", err)
	}
	defer conn.Close()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	if port == 0 {
		t.Fatal("bound port = 0, want ephemeral port")
	}

	second, err := Open(Config{ListenAddress: "127.0.0.1", Port: port, Broadcast: true})
	if second != nil {
		second.Close()
		t.Fatal("second bind to the same port succeeded")
	}
	if !errors.Is(err, ErrBind) {
		t.Errorf("Open() error = %v, want ErrBind", err)
	}
}
