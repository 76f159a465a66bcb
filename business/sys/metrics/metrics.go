// Package metrics maintains the prometheus collectors for the node.
package metrics

import (
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blockledger"

// Metrics holds the set of collectors updated by the node.
type Metrics struct {
	blocks       prometheus.Counter
	operations   prometheus.Counter
	height       prometheus.Gauge
	pending      prometheus.Gauge
	commands     *prometheus.CounterVec
	confirmWait  *prometheus.HistogramVec
	httpRequests prometheus.Counter
	httpErrors   prometheus.Counter
	httpPanics   prometheus.Counter
}

// New constructs the collectors and registers them with the registerer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		blocks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_committed_total",
			Help:      "Number of blocks appended to the chain.",
		}),
		operations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_confirmed_total",
			Help:      "Number of operations confirmed in a block.",
		}),
		height: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_height",
			Help:      "Number of blocks in the chain.",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mempool_pending",
			Help:      "Operations waiting for the next block after the last cut.",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by outcome.",
		}, []string{"command", "outcome"}),
		confirmWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time from receiving a command to replying.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"command"}),
		httpRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests received.",
		}),
		httpErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP requests that failed.",
		}),
		httpPanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "HTTP handlers that panicked.",
		}),
	}
}

// BlockCommitted records a block appended by the producer.
func (m *Metrics) BlockCommitted(block database.Block, pending int) {
	m.blocks.Inc()
	m.operations.Add(float64(len(block.Operations)))
	m.height.Set(float64(block.ID + 1))
	m.pending.Set(float64(pending))
}

// Command records the outcome of a handled command.
func (m *Metrics) Command(command string, outcome string, took time.Duration) {
	m.commands.WithLabelValues(command, outcome).Inc()
	m.confirmWait.WithLabelValues(command).Observe(took.Seconds())
}

// Request records an HTTP request.
func (m *Metrics) Request() {
	m.httpRequests.Inc()
}

// Error records a failed HTTP request.
func (m *Metrics) Error() {
	m.httpErrors.Inc()
}

// Panic records a panicking HTTP handler.
func (m *Metrics) Panic() {
	m.httpPanics.Inc()
}
