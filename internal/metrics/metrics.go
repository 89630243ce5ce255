package metrics

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jward/lineage"
)

const namespace = "lineage"

// =============================================================================
// Collector
// =============================================================================

// Collector records engine events as Prometheus metrics. It implements
// lineage.Observer; OnCreate is a lineage.CreationListener.
type Collector struct {
	// LinearizationSize observes the length of every materialized
	// linearization. Labels: strategy, redundancy.
	LinearizationSize *prometheus.HistogramVec

	// Dispatches counts finished dispatch calls.
	// Labels: key, outcome (handled, exhausted, error).
	Dispatches *prometheus.CounterVec

	// DispatchAttempts observes how many candidates each dispatch tried.
	DispatchAttempts prometheus.Histogram

	// Categories counts created categories. Labels: categorization.
	Categories *prometheus.CounterVec
}

var _ lineage.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg. A
// nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		LinearizationSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "linearization",
			Name:      "size",
			Help:      "Number of categories in a linearization",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"strategy", "redundancy"}),

		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Dispatch calls by key and outcome",
		}, []string{"key", "outcome"}),

		DispatchAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "attempts",
			Help:      "Candidates tried per dispatch call",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),

		Categories: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "categories",
			Name:      "created_total",
			Help:      "Categories created by categorization",
		}, []string{"categorization"}),
	}
}

// ObserveLinearization implements lineage.Observer.
func (c *Collector) ObserveLinearization(p lineage.Policy, size int) {
	c.LinearizationSize.WithLabelValues(p.Strategy.String(), p.Redundancy.String()).Observe(float64(size))
}

// ObserveDispatch implements lineage.Observer.
func (c *Collector) ObserveDispatch(key string, attempts int, err error) {
	c.Dispatches.WithLabelValues(key, Outcome(err)).Inc()
	c.DispatchAttempts.Observe(float64(attempts))
}

// OnCreate counts c under its categorization name.
func (c *Collector) OnCreate(cat *lineage.Category) {
	c.Categories.WithLabelValues(cat.Categorization().Name()).Inc()
}

// Options returns the categorization options that attach c.
func (c *Collector) Options() []lineage.Option {
	return []lineage.Option{
		lineage.WithObserver(c),
		lineage.WithCreationListener(c.OnCreate),
	}
}

// Outcome classifies a dispatch result. ErrChainExhausted is matched by
// identity, the same way Dispatch matches its delegation signal.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "handled"
	case stderrors.Is(err, lineage.ErrChainExhausted):
		return "exhausted"
	default:
		return "error"
	}
}
