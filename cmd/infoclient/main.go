// Infoclient queries ASUS infosvr devices on the local network.
//
// It broadcasts a single get-info query to UDP port 9999 and writes the
// complete 512-byte replies to stdout, back to back, exactly as received.
// Each failure stage exits with its own status so scripts can tell a busy
// port from a silent network.
//
// Usage:
//
//	infoclient [flags]
//	infoclient [command]
//
// See 'infoclient --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/infoclient/internal/logging"
	"github.com/muurk/infoclient/internal/ui"
	"github.com/muurk/infoclient/internal/version"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logging.Error("Command failed", zap.Error(err), zap.Int("exit_code", exitCode(err)))
		reportError(err)
	}
	logging.Sync()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "infoclient",
	Short: "ASUS infosvr discovery client",
	Long: `Broadcasts an infosvr get-info query and prints the replies.

Replies are written to stdout as raw 512-byte packets by default. Use
--format hex or --format summary for human-readable output.

Settings not given as flags come from the config file (see 'infoclient
config path').`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(logLevel)
	},
	RunE: runDiscover,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get())
	},
}

// initLogging applies --log-level, falling back to INFOCLIENT_LOG_LEVEL
// when the flag is empty.
func initLogging(level string) error {
	var err error
	if level == "" {
		err = logging.InitializeFromEnv()
	} else {
		err = logging.Initialize(level)
	}
	if err != nil {
		return usageError{err}
	}
	return nil
}

// reportError prints err to stderr, as a failure box when stderr is a
// terminal.
func reportError(err error) {
	if !ui.IsTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, ui.RenderFailure(failureTitle(err), err, troubleshooting(err)))
}
