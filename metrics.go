// metrics.go: Prometheus instrumentation for the engine.
//
// Grounded on the teacher's Logger.Stats()/Stats struct: the same
// counters (bytes written, rotation count, dropped buffers) re-expressed
// as prometheus/client_golang collectors instead of plain atomics, plus a
// histogram for Record.Finish latency. client_golang appears nowhere in
// the teacher's own go.mod, but it is the standard metrics dependency
// across the rest of the retrieved pack, so it is adopted here rather
// than hand-rolling counters.
package halog

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	registry       *prometheus.Registry
	bytesWritten   prometheus.Counter
	rotations      prometheus.Counter
	buffersDropped prometheus.Counter
	recordsEmitted *prometheus.CounterVec
	finishLatency  prometheus.Histogram
}

func newMetrics(prefix string) *metrics {
	reg := prometheus.NewRegistry()

	m := &metrics{
		registry: reg,
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halog",
			Name:      "bytes_written_total",
			Help:      "Bytes written to the active log file.",
			ConstLabels: prometheus.Labels{"prefix": prefix},
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halog",
			Name:      "rotations_total",
			Help:      "Number of log file rotations performed.",
			ConstLabels: prometheus.Labels{"prefix": prefix},
		}),
		buffersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "halog",
			Name:      "buffers_dropped_total",
			Help:      "Pipeline buffers discarded under sustained backlog.",
			ConstLabels: prometheus.Labels{"prefix": prefix},
		}),
		recordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "halog",
			Name:      "records_emitted_total",
			Help:      "Records dispatched to the pipeline, by level.",
			ConstLabels: prometheus.Labels{"prefix": prefix},
		}, []string{"level"}),
		finishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "halog",
			Name:      "record_finish_seconds",
			Help:      "Time spent in Record.Finish, including pipeline submission.",
			ConstLabels: prometheus.Labels{"prefix": prefix},
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.bytesWritten, m.rotations, m.buffersDropped, m.recordsEmitted, m.finishLatency)
	return m
}

// Registry exposes the engine's private Prometheus registry, for callers
// that want to serve /metrics themselves rather than register into the
// global default registry.
func (m *metrics) Registry() *prometheus.Registry {
	return m.registry
}
