// Package metrics exposes a small Prometheus surface over the watcher's
// runtime behavior: events normalized by type, tree mutations applied by
// type, MOVED merges vs. timeouts, and buffer-overflow warnings. The
// collectors are nil-safe and registered once at construction.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is nil-safe: every method on a nil *Metrics is a no-op, so
// callers that run without --metrics-addr don't need to branch.
type Metrics struct {
	eventsNormalizedTotal  *prometheus.CounterVec
	treeMutationsTotal     *prometheus.CounterVec
	movedMergesTotal       prometheus.Counter
	movedTimeoutsTotal     prometheus.Counter
	bufferOverflowsTotal   prometheus.Counter
	malformedBatchesTotal  prometheus.Counter
}

// New creates and registers the collectors with reg. Pass
// prometheus.NewRegistry() for an isolated registry, or nil to create the
// collectors unregistered (useful for tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsNormalizedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "events_normalized_total",
			Help:      "Total number of normalized filesystem events, labeled by type.",
		}, []string{"type"}),
		treeMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "tree_mutations_total",
			Help:      "Total number of tree mutations applied, labeled by operation.",
		}, []string{"operation"}),
		movedMergesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "moved_merges_total",
			Help:      "Total number of REMOVED+ADDED pairs merged into a single MOVED.",
		}),
		movedTimeoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "moved_timeouts_total",
			Help:      "Total number of stashed REMOVED events flushed after the MOVED window expired.",
		}),
		bufferOverflowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "buffer_overflows_total",
			Help:      "Total number of OS event-buffer-overflow warnings observed.",
		}),
		malformedBatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filewatcher",
			Name:      "malformed_batches_total",
			Help:      "Total number of malformed rename-record batches rejected.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.eventsNormalizedTotal,
			m.treeMutationsTotal,
			m.movedMergesTotal,
			m.movedTimeoutsTotal,
			m.bufferOverflowsTotal,
			m.malformedBatchesTotal,
		)
	}
	return m
}

func (m *Metrics) EventNormalized(eventType string) {
	if m == nil {
		return
	}
	m.eventsNormalizedTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) TreeMutation(operation string) {
	if m == nil {
		return
	}
	m.treeMutationsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) MovedMerge() {
	if m == nil {
		return
	}
	m.movedMergesTotal.Inc()
}

func (m *Metrics) MovedTimeout() {
	if m == nil {
		return
	}
	m.movedTimeoutsTotal.Inc()
}

func (m *Metrics) BufferOverflow() {
	if m == nil {
		return
	}
	m.bufferOverflowsTotal.Inc()
}

func (m *Metrics) MalformedBatch() {
	if m == nil {
		return
	}
	m.malformedBatchesTotal.Inc()
}
