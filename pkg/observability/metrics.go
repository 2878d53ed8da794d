package observability

import (
	"time"

	"github.com/aretw0/quire/pkg/stories"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quire"

// Metrics holds the library collectors.
type Metrics struct {
	actions     *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	corrections *prometheus.CounterVec
	formatLoads *prometheus.CounterVec
	publish     *prometheus.HistogramVec
}

var _ stories.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them on reg.
// A nil registerer leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of actions dispatched to the library",
			},
			[]string{"type"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_rejected_total",
				Help:      "Actions the reducers refused to apply",
			},
			[]string{"type"},
		),
		corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "repair_corrections_total",
				Help:      "Fields healed by story repair",
			},
			[]string{"field"},
		),
		formatLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "format_loads_total",
				Help:      "Story format loads by result",
			},
			[]string{"result"},
		),
		publish: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "publish_duration_seconds",
				Help:      "Duration of publish operations",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"mode"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.actions, m.rejections, m.corrections, m.formatLoads, m.publish)
	}
	return m
}

// Dispatched counts one dispatched action.
func (m *Metrics) Dispatched(actionType string) {
	m.actions.WithLabelValues(actionType).Inc()
}

// Rejected counts one rejected action. The reason is logged by the reducer, not labelled,
// to keep cardinality bounded.
func (m *Metrics) Rejected(actionType, _ string) {
	m.rejections.WithLabelValues(actionType).Inc()
}

// Corrected counts one repaired field.
func (m *Metrics) Corrected(c stories.Correction) {
	m.corrections.WithLabelValues(c.Field).Inc()
}

// FormatLoaded counts a format load attempt.
func (m *Metrics) FormatLoaded(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.formatLoads.WithLabelValues(result).Inc()
}

// ObservePublish records how long a publish of the given mode took.
func (m *Metrics) ObservePublish(mode string, started time.Time) {
	m.publish.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}
