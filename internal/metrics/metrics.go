// Package metrics counts discovery rounds and writes them in the Prometheus
// text format, for the node_exporter textfile collector.
package metrics

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/muurk/infoclient/internal/discovery"
	"github.com/muurk/infoclient/internal/transport"
	"github.com/muurk/infoclient/internal/version"
)

// Result label values
const (
	ResultOK = "ok"
)

// Metrics holds the collectors for one process. Each Metrics has its own
// registry so several can coexist.
type Metrics struct {
	registry *prometheus.Registry

	buildInfo     *prometheus.GaugeVec
	roundsTotal   *prometheus.CounterVec
	repliesTotal  prometheus.Counter
	roundSeconds  prometheus.Histogram
	lastRoundTime prometheus.Gauge
}

// New creates and registers the discovery collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "infoclient",
				Name:      "build_info",
				Help:      "A metric with a constant '1' value labeled by version and goversion.",
			}, []string{"version", "goversion"}),
		roundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "infoclient",
				Subsystem: "discovery",
				Name:      "rounds_total",
				Help:      "Number of discovery rounds, by result.",
			}, []string{"result"}),
		repliesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "infoclient",
				Subsystem: "discovery",
				Name:      "replies_total",
				Help:      "Number of complete reply packets received.",
			}),
		roundSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "infoclient",
				Subsystem: "discovery",
				Name:      "round_seconds",
				Help:      "Duration of discovery rounds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			}),
		lastRoundTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "infoclient",
				Subsystem: "discovery",
				Name:      "last_round_timestamp_seconds",
				Help:      "Unix time the last discovery round ended.",
			}),
	}

	m.registry.MustRegister(m.buildInfo, m.roundsTotal, m.repliesTotal, m.roundSeconds, m.lastRoundTime)
	m.buildInfo.WithLabelValues(version.Version, runtime.Version()).Set(1)
	return m
}

// ObserveRound records one discovery round that started at start and ended
// at end with the given replies and error.
func (m *Metrics) ObserveRound(start, end time.Time, replies []*discovery.Response, err error) {
	m.roundsTotal.WithLabelValues(Result(err)).Inc()
	m.repliesTotal.Add(float64(len(replies)))
	m.roundSeconds.Observe(end.Sub(start).Seconds())
	m.lastRoundTime.Set(float64(end.Unix()))
}

// WriteTextfile writes all metrics to path, replacing it atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Result returns the result label for a round error: "ok", the transport
// error kind (e.g. "bind_error"), or the failed stage.
func Result(err error) string {
	if err == nil {
		return ResultOK
	}
	switch transport.KindOf(err) {
	case transport.KindSocketCreate:
		return "socket_create_error"
	case transport.KindBind:
		return "bind_error"
	case transport.KindSocketOption:
		return "socket_option_error"
	case transport.KindAddress:
		return "address_error"
	case transport.KindSend:
		return "send_error"
	case transport.KindRecv:
		return "receive_error"
	case transport.KindCancelled:
		return "cancelled"
	}

	var de *discovery.Error
	if errors.As(err, &de) {
		return de.Stage.String() + "_error"
	}
	return "error"
}
