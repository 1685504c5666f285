package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/infoclient/internal/config"
	"github.com/muurk/infoclient/internal/discovery"
	"github.com/muurk/infoclient/internal/logging"
	"github.com/muurk/infoclient/internal/metrics"
	"github.com/muurk/infoclient/internal/transport"
	"github.com/muurk/infoclient/internal/ui"
)

// Discovery command flags
var (
	listenAddress    string
	port             int
	broadcastAddress string
	replies          int
	timeoutSeconds   int
	outputFormat     string
	record           bool
	configPath       string
	logLevel         string
	metricsFile      string
)

// newOpener provides the socket for a round; tests replace it.
var newOpener = func(cfg transport.Config) discovery.Opener {
	return &transport.Listener{Config: cfg}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the OS config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); logs go to stderr")

	rootCmd.Flags().StringVar(&listenAddress, "listen", "0.0.0.0", "Local IPv4 address to bind")
	rootCmd.Flags().IntVar(&port, "port", 9999, "UDP port to bind and query")
	rootCmd.Flags().StringVar(&broadcastAddress, "broadcast", "255.255.255.255", "Destination address for the query")
	rootCmd.Flags().IntVar(&replies, "replies", 2, "Number of replies to collect")
	rootCmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Give up after this many seconds (0 waits forever)")
	rootCmd.Flags().StringVar(&outputFormat, "format", config.FormatRaw, "Output format (raw, hex, summary)")
	rootCmd.Flags().BoolVar(&record, "record", false, "Save responders to the config file")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write round metrics to this Prometheus textfile")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(respondersCmd)
}

// loadRegistry loads the config file named by --config, or the default one.
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadRegistryFrom(configPath)
	}
	return config.LoadRegistry()
}

// options is the effective configuration of one discovery run
type options struct {
	Listen    string
	Port      int
	Broadcast string
	Replies   int
	Timeout   time.Duration
	Format    string
}

// resolveOptions starts from the file defaults and applies every flag the
// user set explicitly.
func resolveOptions(cmd *cobra.Command, d *config.Defaults) (options, error) {
	merged := *d
	flags := cmd.Flags()
	if flags.Changed("listen") {
		merged.ListenAddress = listenAddress
	}
	if flags.Changed("port") {
		merged.Port = port
	}
	if flags.Changed("broadcast") {
		merged.BroadcastAddress = broadcastAddress
	}
	if flags.Changed("replies") {
		merged.Replies = replies
	}
	if flags.Changed("timeout") {
		merged.TimeoutSeconds = timeoutSeconds
	}
	if flags.Changed("format") {
		merged.Format = outputFormat
	}

	if err := merged.Validate(); err != nil {
		return options{}, err
	}
	return options{
		Listen:    merged.ListenAddress,
		Port:      merged.Port,
		Broadcast: merged.BroadcastAddress,
		Replies:   merged.Replies,
		Timeout:   time.Duration(merged.TimeoutSeconds) * time.Second,
		Format:    merged.Format,
	}, nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{fmt.Errorf("unexpected argument %q", args[0])}
	}

	registry, err := loadRegistry()
	if err != nil {
		return usageError{fmt.Errorf("failed to load config: %w", err)}
	}

	opts, err := resolveOptions(cmd, registry.Defaults)
	if err != nil {
		return usageError{err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if opts.Format == config.FormatSummary {
		fmt.Fprintln(out, ui.NewHeader("infosvr discovery", "infoclient "+strings.Join(os.Args[1:], " "),
			ui.Param{Key: "Listen", Value: fmt.Sprintf("%s:%d", opts.Listen, opts.Port)},
			ui.Param{Key: "Broadcast", Value: fmt.Sprintf("%s:%d", opts.Broadcast, opts.Port)},
			ui.Param{Key: "Replies", Value: strconv.Itoa(opts.Replies)},
			ui.Param{Key: "Timeout", Value: timeoutLabel(opts.Timeout)},
		).Render())
	}

	start := time.Now()
	responses, err := discover(ctx, opts)
	if metricsFile != "" {
		writeMetrics(metricsFile, start, responses, err)
	}
	if err != nil {
		return err
	}

	if err := writeReplies(out, opts.Format, responses); err != nil {
		return fmt.Errorf("failed to write replies: %w", err)
	}

	if record {
		recordResponders(registry, responses)
	}
	return nil
}

// discover runs one round with opts
func discover(ctx context.Context, opts options) ([]*discovery.Response, error) {
	scanner := discovery.NewScanner()
	scanner.Opener = newOpener(transport.Config{
		ListenAddress: opts.Listen,
		Port:          opts.Port,
		Broadcast:     true,
	})
	scanner.BroadcastAddress = opts.Broadcast
	scanner.Port = opts.Port
	scanner.ExpectedReplies = opts.Replies
	scanner.Timeout = opts.Timeout

	return scanner.DiscoverWithContext(ctx)
}

// writeReplies writes the round's replies to w in the given format. Raw
// output is the reply buffers back to back with nothing in between.
func writeReplies(w io.Writer, format string, responses []*discovery.Response) error {
	switch format {
	case config.FormatRaw:
		for _, r := range responses {
			if _, err := w.Write(r.Bytes()); err != nil {
				return err
			}
		}
	case config.FormatHex:
		for _, r := range responses {
			if _, err := fmt.Fprintf(w, "# %s\n%s", r, hex.Dump(r.Bytes())); err != nil {
				return err
			}
		}
	case config.FormatSummary:
		if _, err := fmt.Fprintln(w, ui.NewSummary(responses).Render()); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, roundResult(responses).Render()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// roundResult builds the success box printed under a summary table
func roundResult(responses []*discovery.Response) *ui.Result {
	result := ui.NewSuccessResult(fmt.Sprintf("%d replies received", len(responses)))
	if len(responses) == 0 {
		return result
	}

	result.AddDetail("Round id", strconv.FormatUint(uint64(responses[0].Header().ID), 10))
	var sources []string
	seen := make(map[string]bool)
	for _, r := range responses {
		ip := r.IP()
		if ip == "" || seen[ip] {
			continue
		}
		seen[ip] = true
		sources = append(sources, ip)
	}
	if len(sources) > 0 {
		result.AddDetail("Sources", strings.Join(sources, ", "))
	}
	return result
}

// recordResponders adds the round to the responder history. Save failures
// are reported but do not fail a round whose output is already written.
func recordResponders(registry *config.Registry, responses []*discovery.Response) {
	for _, r := range responses {
		from := ""
		if r.From != nil {
			from = r.From.String()
		}
		registry.RecordReply(r.IP(), from, r.Header(), r.ReceivedAt)
	}
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to record responders", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Warning: failed to record responders: %v\n", err)
	}
}

// writeMetrics exports the round to path. Failures are reported only.
func writeMetrics(path string, start time.Time, responses []*discovery.Response, roundErr error) {
	m := metrics.New()
	m.ObserveRound(start, time.Now(), responses, roundErr)
	if err := m.WriteTextfile(path); err != nil {
		logging.Warn("Failed to write metrics", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func timeoutLabel(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}
