package config

import (
	"fmt"
	"time"

	"github.com/muurk/infoclient/internal/protocol"
)

// CurrentVersion is the only settings file version this build understands
const CurrentVersion = 1

// Output formats for discovery results
const (
	FormatRaw     = "raw"
	FormatHex     = "hex"
	FormatSummary = "summary"
)

// Registry represents the entire user configuration file.
// It stores discovery defaults and the history of devices that answered.
type Registry struct {
	Version    int                   `yaml:"version"`
	Defaults   *Defaults             `yaml:"defaults,omitempty"`
	Responders map[string]*Responder `yaml:"responders,omitempty"` // Keyed by source IP

	path string // file this registry was loaded from, "" for the default location
}

// Defaults holds discovery settings used when no flag overrides them.
type Defaults struct {
	ListenAddress    string `yaml:"listen_address"`    // Local bind address
	Port             int    `yaml:"port"`              // infosvr UDP port
	BroadcastAddress string `yaml:"broadcast_address"` // Query destination
	Replies          int    `yaml:"replies"`           // Replies collected per round
	TimeoutSeconds   int    `yaml:"timeout_seconds"`   // 0 waits forever
	Format           string `yaml:"format"`            // raw, hex or summary
}

// Responder records a device that answered a discovery round.
type Responder struct {
	Addr      string    `yaml:"addr"`                // Last source address (ip:port)
	FirstSeen time.Time `yaml:"first_seen"`          // First reply time
	LastSeen  time.Time `yaml:"last_seen"`           // Most recent reply time
	Replies   int       `yaml:"replies"`             // Total reply packets received
	Service   uint8     `yaml:"service,omitempty"`   // Service byte of the last reply
	Operation uint16    `yaml:"operation,omitempty"` // Operation of the last reply
	LastID    uint32    `yaml:"last_id"`             // Request id of the last reply
	Nickname  string    `yaml:"nickname,omitempty"`  // User-defined label
}

// NewDefaults returns the built-in discovery settings.
func NewDefaults() *Defaults {
	return &Defaults{
		ListenAddress:    "0.0.0.0",
		Port:             protocol.DefaultPort,
		BroadcastAddress: "255.255.255.255",
		Replies:          2,
		TimeoutSeconds:   0,
		Format:           FormatRaw,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:    CurrentVersion,
		Defaults:   NewDefaults(),
		Responders: make(map[string]*Responder),
	}
}

// GetResponder retrieves a responder by source IP.
// Returns nil if the device has never answered.
func (r *Registry) GetResponder(ip string) *Responder {
	return r.Responders[ip]
}

// RecordReply updates the history for the device at ip with one reply.
func (r *Registry) RecordReply(ip, addr string, h protocol.Header, at time.Time) *Responder {
	if r.Responders == nil {
		r.Responders = make(map[string]*Responder)
	}

	resp, exists := r.Responders[ip]
	if !exists {
		resp = &Responder{FirstSeen: at}
		r.Responders[ip] = resp
	}

	resp.Addr = addr
	resp.LastSeen = at
	resp.Replies++
	resp.Service = h.Service
	resp.Operation = h.Operation
	resp.LastID = h.ID
	return resp
}

// SetNickname sets a user-friendly label for a known responder.
// Returns false if the responder is unknown.
func (r *Registry) SetNickname(ip, nickname string) bool {
	resp := r.GetResponder(ip)
	if resp == nil {
		return false
	}
	resp.Nickname = nickname
	return true
}

// Validate checks the defaults for values discovery cannot use.
func (d *Defaults) Validate() error {
	switch {
	case d.Port <= 0 || d.Port > 65535:
		return fmt.Errorf("port %d out of range", d.Port)
	case d.Replies < 1:
		return fmt.Errorf("replies must be at least 1, got %d", d.Replies)
	case d.TimeoutSeconds < 0:
		return fmt.Errorf("timeout must not be negative, got %d", d.TimeoutSeconds)
	}

	switch d.Format {
	case FormatRaw, FormatHex, FormatSummary:
	default:
		return fmt.Errorf("unknown format %q (want raw, hex or summary)", d.Format)
	}
	return nil
}
