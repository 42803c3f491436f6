package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type eventMetrics struct {
	credits *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking credit movements through
// the fee pools.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			credits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "events",
				Name:      "credits_total",
				Help:      "Credits moved through the fee pools segmented by flow.",
			}, []string{"flow"}),
		}
		prometheus.MustRegister(eventRegistry.credits)
	})
	return eventRegistry
}

// RecordCredits adds the supplied credit amount to the counter for a flow
// such as "processing_deposit" or "proposer_payout".
func (m *eventMetrics) RecordCredits(flow string, credits uint64) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToLower(flow))
	if normalized == "" {
		normalized = "unknown"
	}
	m.credits.WithLabelValues(normalized).Add(float64(credits))
}
