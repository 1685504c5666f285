// Package logging provides structured logging for infoclient.
//
// This package wraps a zap logger behind package-level helpers so the
// transport and discovery code can log without threading a logger through
// every call.
//
// # Log Levels
//
//   - Debug: hex dumps, partial transfers, retried system calls
//   - Info: packets sent and received
//   - Warn: socket setup failures
//   - Error: discovery failures reported by the CLI
//
// # Configuration
//
// Logging is silent unless a level is given, either with the --log-level
// flag or the INFOCLIENT_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Output
//
// Log lines go to stderr in zap's console format. stdout is reserved for the
// raw reply packets so the tool can be piped into other programs.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
