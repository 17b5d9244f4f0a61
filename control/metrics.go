// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus instrumentation for streams.

package control

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/stream"
)

// StreamMetrics implements stream.Observer on Prometheus collectors,
// labelled by stream name.
type StreamMetrics struct {
	bytes         *prometheus.CounterVec
	backpressure  *prometheus.CounterVec
	events        *prometheus.CounterVec
	allocFailures *prometheus.CounterVec
	buffered      *prometheus.GaugeVec
}

// NewStreamMetrics registers the stream collectors with reg
// (prometheus.DefaultRegisterer when nil). Registering the same namespace
// twice on one registry panics.
func NewStreamMetrics(namespace string, reg prometheus.Registerer) *StreamMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &StreamMetrics{
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Bytes moved through stream buffers, by operation.",
		}, []string{"stream", "op"}),
		backpressure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "backpressure_total",
			Help:      "Transitions into the blocked state, by direction.",
		}, []string{"stream", "dir"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Stream events emitted.",
		}, []string{"stream", "event"}),
		allocFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "alloc_failures_total",
			Help:      "Buffer allocations refused by the allocator.",
		}, []string{"stream", "dir"}),
		buffered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "buffered_bytes",
			Help:      "Bytes currently held in stream buffers.",
		}, []string{"stream", "dir"}),
	}
}

func (m *StreamMetrics) OnTransfer(s *stream.Stream, op stream.Op, n int) {
	m.bytes.WithLabelValues(s.Name(), op.String()).Add(float64(n))
	snap := s.Snapshot()
	m.buffered.WithLabelValues(s.Name(), "rx").Set(float64(snap.RxBuffered))
	m.buffered.WithLabelValues(s.Name(), "tx").Set(float64(snap.TxBuffered))
}

func (m *StreamMetrics) OnBackpressure(s *stream.Stream, dir stream.Capability, blocked bool) {
	if blocked {
		m.backpressure.WithLabelValues(s.Name(), dir.String()).Inc()
	}
}

func (m *StreamMetrics) OnEvent(s *stream.Stream, ev api.EventCode) {
	m.events.WithLabelValues(s.Name(), ev.String()).Inc()
}

func (m *StreamMetrics) OnAllocFailure(s *stream.Stream, dir stream.Capability) {
	m.allocFailures.WithLabelValues(s.Name(), dir.String()).Inc()
}

// ArenaCollector exports allocator statistics.
type ArenaCollector struct {
	alloc api.Allocator
	descs map[string]*prometheus.Desc
}

// NewArenaCollector describes alloc's statistics under namespace.
func NewArenaCollector(namespace string, alloc api.Allocator) *ArenaCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "arena", name), help, nil, nil)
	}
	return &ArenaCollector{
		alloc: alloc,
		descs: map[string]*prometheus.Desc{
			"allocs":   desc("allocs_total", "Successful buffer allocations."),
			"frees":    desc("frees_total", "Buffers returned."),
			"failures": desc("failures_total", "Allocations refused over budget."),
			"in_use":   desc("in_use_bytes", "Bytes currently allocated."),
			"budget":   desc("budget_bytes", "Configured budget, 0 when unbounded."),
		},
	}
}

func (c *ArenaCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *ArenaCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.alloc.Stats()
	ch <- prometheus.MustNewConstMetric(c.descs["allocs"], prometheus.CounterValue, float64(st.TotalAlloc))
	ch <- prometheus.MustNewConstMetric(c.descs["frees"], prometheus.CounterValue, float64(st.TotalFree))
	ch <- prometheus.MustNewConstMetric(c.descs["failures"], prometheus.CounterValue, float64(st.Failures))
	ch <- prometheus.MustNewConstMetric(c.descs["in_use"], prometheus.GaugeValue, float64(st.InUse))
	ch <- prometheus.MustNewConstMetric(c.descs["budget"], prometheus.GaugeValue, float64(st.Budget))
}

// streamLabel renders a stream for log fields when it has no name.
func streamLabel(s *stream.Stream) string {
	if s.Name() != "" {
		return s.Name()
	}
	return "stream@" + strconv.Itoa(int(s.EventBase()))
}

var _ stream.Observer = (*StreamMetrics)(nil)
