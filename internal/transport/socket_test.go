package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/muurk/infoclient/internal/protocol"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddress != "0.0.0.0" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0", cfg.ListenAddress)
	}
	if cfg.Port != protocol.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, protocol.DefaultPort)
	}
	if !cfg.Broadcast {
		t.Error("Broadcast should be enabled by default")
	}
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		port    int
		want    string
		wantErr bool
	}{
		{name: "limited broadcast", host: BroadcastAddress, port: 9999, want: "255.255.255.255:9999"},
		{name: "subnet broadcast", host: "192.168.1.255", port: 9999, want: "192.168.1.255:9999"},
		{name: "not an address", host: "not an address", port: 9999, wantErr: true},
		{name: "zero port", host: BroadcastAddress, port: 0, wantErr: true},
		{name: "port out of range", host: BroadcastAddress, port: 70000, wantErr: true},
		{name: "ipv6 literal", host: "::1", port: 9999, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ResolveDestination(tt.host, tt.port)
			if tt.wantErr {
				if !errors.Is(err, ErrAddress) {
					t.Fatalf("ResolveDestination() error = %v, want ErrAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDestination() error = %v", err)
			}
			if addr.String() != tt.want {
				t.Errorf("ResolveDestination() = %v, want %v", addr, tt.want)
			}
		})
	}
}

func TestOpen_InvalidListenAddress(t *testing.T) {
	tests := []Config{
		{ListenAddress: "bogus", Port: 9999},
		{ListenAddress: "::1", Port: 9999},
		{ListenAddress: "127.0.0.1", Port: -1},
	}

	for _, cfg := range tests {
		conn, err := Open(cfg)
		if conn != nil {
			conn.Close()
		}
		if !errors.Is(err, ErrBind) {
			t.Errorf("Open(%+v) error = %v, want ErrBind", cfg, err)
		}
	}
}

func TestListener_OpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn, err := NewListener().Open(ctx)
	if conn != nil {
		conn.Close()
	}
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Open() error = %v, want ErrCancelled", err)
	}
}
