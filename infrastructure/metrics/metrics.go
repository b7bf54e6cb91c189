package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "txtracker"

// Metrics holds the collectors describing the tracker's activity
type Metrics struct {
	registry *prometheus.Registry

	SettledNotifications *prometheus.CounterVec
	DoneNotifications    *prometheus.CounterVec
	ProviderCalls        *prometheus.CounterVec
	UnpinnedBlocks       prometheus.Counter
	EvictedTransactions  prometheus.Counter
	TrackedTransactions  prometheus.Gauge
	FinalizedBlocks      prometheus.Gauge
	ReplayDepth          prometheus.Gauge

	lastFinalizedCount uint64
	lastEvictedCount   uint64
}

// New creates the tracker's collectors and registers them on a new registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		SettledNotifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_notifications_total",
			Help:      "Total number of transaction settled notifications, by settlement type",
		}, []string{"type"}),

		DoneNotifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "done_notifications_total",
			Help:      "Total number of transaction done notifications, by execution success",
		}, []string{"successful"}),

		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of chain data provider calls, by method",
		}, []string{"method"}),

		UnpinnedBlocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpinned_blocks_total",
			Help:      "Total number of blocks released after being pruned",
		}),

		EvictedTransactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_transactions_total",
			Help:      "Total number of transactions evicted for not settling in time",
		}),

		TrackedTransactions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_transactions",
			Help:      "The number of transactions that are tracked and not done",
		}),

		FinalizedBlocks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "finalized_blocks",
			Help:      "The number of blocks finalized so far, replayed ones included",
		}),

		ReplayDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replay_depth",
			Help:      "The number of unannounced finalized blocks replayed by the latest finalization",
		}),
	}
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackerState is the part of the tracker's state exported as metrics
type TrackerState interface {
	TrackedTransactionsCount() int
	FinalizedCount() uint64
	EvictedTransactionsCount() uint64
}

// Observe updates the gauges and counters derived from state. It should be
// called after every handled event.
func (m *Metrics) Observe(state TrackerState) {
	m.TrackedTransactions.Set(float64(state.TrackedTransactionsCount()))

	finalizedCount := state.FinalizedCount()
	if finalizedCount > m.lastFinalizedCount {
		m.ReplayDepth.Set(float64(finalizedCount - m.lastFinalizedCount - 1))
		m.FinalizedBlocks.Set(float64(finalizedCount))
		m.lastFinalizedCount = finalizedCount
	}

	evictedCount := state.EvictedTransactionsCount()
	if evictedCount > m.lastEvictedCount {
		m.EvictedTransactions.Add(float64(evictedCount - m.lastEvictedCount))
		m.lastEvictedCount = evictedCount
	}
}
