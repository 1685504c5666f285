// Package ui provides terminal output components for the infoclient CLI.
//
// These components follow a "run once and exit" pattern: they render a
// discovery round for a human reader and never prompt.
//
// # Components
//
//   - Header: banner showing the command and the settings a round runs with
//   - Summary: table of replies (source, service, direction, operation, id)
//     followed by a short payload preview per reply
//   - Result: success or failure box, with troubleshooting tips on failure
//
// Summaries are only used for --format summary. Raw output bypasses this
// package entirely so reply bytes reach stdout unmodified.
//
// # Logging Integration
//
// Logging is controlled via the INFOCLIENT_LOG_LEVEL environment variable.
// When unset, zap logging is silent so the rendered output stays clean.
package ui
