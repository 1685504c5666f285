// Package config provides user configuration management for infoclient.
//
// This package manages a YAML settings file holding discovery defaults
// (bind address, port, broadcast address, reply count, timeout, output
// format) and a history of devices that answered discovery rounds.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/infoclient/config.yaml or $HOME/.config/infoclient/config.yaml
//   - macOS: $HOME/.config/infoclient/config.yaml
//   - Windows: %LOCALAPPDATA%\infoclient\config.yaml
//
// A different file can be used with LoadRegistryFrom (the --config flag).
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, reply := range replies {
//	    registry.RecordReply(reply.IP(), reply.From.String(), reply.Header(), reply.ReceivedAt)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
