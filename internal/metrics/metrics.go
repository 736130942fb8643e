package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the dashboard collectors. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Imports             *prometheus.CounterVec
	Aggregations        *prometheus.CounterVec
	AggregationDuration prometheus.Histogram
	DrillDowns          *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealerdash",
			Name:      "imports_total",
			Help:      "Workbook imports by result.",
		}, []string{"result"}),
		Aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealerdash",
			Name:      "aggregations_total",
			Help:      "Dashboard aggregations by cache outcome.",
		}, []string{"cache"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dealerdash",
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent computing uncached dashboards.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		DrillDowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealerdash",
			Name:      "drilldowns_total",
			Help:      "Drill-down requests by dimension.",
		}, []string{"dimension"}),
	}
	m.Registry.MustRegister(m.Imports, m.Aggregations, m.AggregationDuration, m.DrillDowns)
	return m
}
