package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks the block fee engine: processed blocks, epoch
// turnover and proposer payouts.
type EngineMetrics struct {
	blocksProcessed prometheus.Counter
	blockDuration   prometheus.Histogram
	epochChanges    prometheus.Counter
	currentEpoch    prometheus.Gauge
	proposersPaid   prometheus.Counter
	creditsPaid     prometheus.Counter
	payoutLeftover  *prometheus.GaugeVec
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the lazily-initialised fee engine metrics registry.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			blocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "platform_blocks_processed_total",
				Help: "Count of blocks whose fees were processed and committed.",
			}),
			blockDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "platform_block_fee_duration_seconds",
				Help:    "Latency distribution for per-block fee processing.",
				Buckets: prometheus.DefBuckets,
			}),
			epochChanges: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "platform_epoch_changes_total",
				Help: "Count of processed blocks that opened a new epoch.",
			}),
			currentEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "platform_current_epoch",
				Help: "Epoch index of the last committed block.",
			}),
			proposersPaid: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "platform_proposers_paid_total",
				Help: "Count of proposers credited across completed epoch payouts.",
			}),
			creditsPaid: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "platform_payout_credits_total",
				Help: "Total credits transferred to proposer identities.",
			}),
			payoutLeftover: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "platform_payout_leftover",
				Help: "Rounding remainder returned to processing credits per paid epoch.",
			}, []string{"epoch"}),
		}
		prometheus.MustRegister(
			engineRegistry.blocksProcessed,
			engineRegistry.blockDuration,
			engineRegistry.epochChanges,
			engineRegistry.currentEpoch,
			engineRegistry.proposersPaid,
			engineRegistry.creditsPaid,
			engineRegistry.payoutLeftover,
		)
	})
	return engineRegistry
}

// ObserveBlock records a committed block and its processing latency.
func (m *EngineMetrics) ObserveBlock(epoch uint16, duration time.Duration) {
	if m == nil {
		return
	}
	m.blocksProcessed.Inc()
	m.blockDuration.Observe(duration.Seconds())
	m.currentEpoch.Set(float64(epoch))
}

// ObserveEpochChange records a block that opened a new epoch.
func (m *EngineMetrics) ObserveEpochChange() {
	if m == nil {
		return
	}
	m.epochChanges.Inc()
}

// ObservePayout records a completed epoch payout.
func (m *EngineMetrics) ObservePayout(epoch uint16, proposers int, credits, leftover uint64) {
	if m == nil {
		return
	}
	m.proposersPaid.Add(float64(proposers))
	m.creditsPaid.Add(float64(credits))
	label := fmt.Sprintf("%d", epoch)
	m.payoutLeftover.WithLabelValues(label).Set(float64(leftover))
}
