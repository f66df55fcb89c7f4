package store

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "mapdao"
	metricsSubsystem = "store"

	outcomeEOF   = "eof"
	outcomeError = "error"
	resultHit    = "hit"
	resultMiss   = "miss"
)

// Metrics holds Prometheus instrumentation for a store.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	puts      prometheus.Counter
	removes   prometheus.Counter
	clears    prometheus.Counter
	evictions prometheus.Counter
	scanned   prometheus.Counter

	finds   *prometheus.CounterVec
	selects *prometheus.CounterVec

	selectDuration prometheus.Histogram
}

// NewMetrics creates store metrics labelled with name and registers them with reg.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	labels := prometheus.Labels{"store": name}

	m := &Metrics{
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "puts_total",
			ConstLabels: labels,
			Help:        "Total number of records put into the store",
		}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "removes_total",
			ConstLabels: labels,
			Help:        "Total number of remove operations",
		}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "clears_total",
			ConstLabels: labels,
			Help:        "Total number of RemoveAll operations",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "evictions_total",
			ConstLabels: labels,
			Help:        "Total number of records evicted by a size bound",
		}),
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "scanned_records_total",
			ConstLabels: labels,
			Help:        "Total number of records pushed into query pipelines",
		}),
		finds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "finds_total",
			ConstLabels: labels,
			Help:        "Total number of point lookups by result",
		}, []string{"result"}),
		selects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "selects_total",
			ConstLabels: labels,
			Help:        "Total number of queries by outcome",
		}, []string{"outcome"}),
		selectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "select_duration_seconds",
			ConstLabels: labels,
			Help:        "Time spent driving a query from first record to EOF or Error",
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	collectors := []prometheus.Collector{
		m.puts, m.removes, m.clears, m.evictions, m.scanned,
		m.finds, m.selects, m.selectDuration,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register store metrics for %q: %w", name, err)
		}
	}

	return m, nil
}

func (m *Metrics) recordPut() {
	if m != nil {
		m.puts.Inc()
	}
}

func (m *Metrics) recordRemove() {
	if m != nil {
		m.removes.Inc()
	}
}

func (m *Metrics) recordClear() {
	if m != nil {
		m.clears.Inc()
	}
}

func (m *Metrics) recordEvictions(n int) {
	if m != nil && n > 0 {
		m.evictions.Add(float64(n))
	}
}

func (m *Metrics) recordFind(found bool) {
	if m == nil {
		return
	}

	if found {
		m.finds.WithLabelValues(resultHit).Inc()
	} else {
		m.finds.WithLabelValues(resultMiss).Inc()
	}
}

// recordSelect records a finished query.
func (m *Metrics) recordSelect(scanned int64, failed bool, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := outcomeEOF
	if failed {
		outcome = outcomeError
	}

	m.selects.WithLabelValues(outcome).Inc()
	m.scanned.Add(float64(scanned))
	m.selectDuration.Observe(elapsed.Seconds())
}
