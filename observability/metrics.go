package observability

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlerMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type consensusMetrics struct {
	blockInterval prometheus.Gauge
	blockHeight   prometheus.Gauge
}

var (
	handlerMetricsOnce sync.Once
	handlerRegistry    *handlerMetrics

	consensusMetricsOnce sync.Once
	consensusRegistry    *consensusMetrics
)

// Handler returns the lazily-initialised metrics registry recording
// consensus request handling at the wire boundary.
func Handler() *handlerMetrics {
	handlerMetricsOnce.Do(func() {
		handlerRegistry = &handlerMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "abci",
				Name:      "requests_total",
				Help:      "Total consensus requests segmented by handler and outcome.",
			}, []string{"handler", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "abci",
				Name:      "errors_total",
				Help:      "Total consensus request failures segmented by handler.",
			}, []string{"handler"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "platform",
				Subsystem: "abci",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for consensus request handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"handler"}),
		}
		prometheus.MustRegister(
			handlerRegistry.requests,
			handlerRegistry.errors,
			handlerRegistry.latency,
		)
	})
	return handlerRegistry
}

// Observe records the outcome and latency of a consensus request.
func (m *handlerMetrics) Observe(handler string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	name := strings.TrimSpace(handler)
	if name == "" {
		name = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.errors.WithLabelValues(name).Inc()
	}
	m.requests.WithLabelValues(name, outcome).Inc()
	m.latency.WithLabelValues(name).Observe(duration.Seconds())
}

// Consensus exposes the metrics registry for block-level instrumentation.
func Consensus() *consensusMetrics {
	consensusMetricsOnce.Do(func() {
		consensusRegistry = &consensusMetrics{
			blockInterval: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "platform",
				Subsystem: "consensus",
				Name:      "block_interval_seconds",
				Help:      "Interval in seconds between the timestamps of consecutive blocks.",
			}),
			blockHeight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "platform",
				Subsystem: "consensus",
				Name:      "block_height",
				Help:      "Height of the block currently being executed.",
			}),
		}
		prometheus.MustRegister(consensusRegistry.blockInterval, consensusRegistry.blockHeight)
	})
	return consensusRegistry
}

// RecordBlock updates the block gauges from the incoming block header.
func (m *consensusMetrics) RecordBlock(height uint64, interval time.Duration) {
	if m == nil {
		return
	}
	m.blockHeight.Set(float64(height))
	seconds := interval.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.blockInterval.Set(seconds)
}

// MetricsHandler exposes the process metrics over HTTP for the host to
// mount on its listener.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
