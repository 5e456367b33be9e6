package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"campcore/pkg/domain"
)

// PrometheusMetricsRecorder exports per-operation outcome counters and
// duration histograms through a prometheus registerer.
type PrometheusMetricsRecorder struct {
	results   *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers and returns a prometheus-backed recorder.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campcore",
			Name:      "operations_total",
			Help:      "Service operation outcomes by operation and status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campcore",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{rec.results, rec.durations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// OccupancyCollector recomputes per-hall occupancy gauges from bed state on
// every scrape. Gauges are derived reads, never stored counters, so the
// exported values cannot drift from the inventory.
type OccupancyCollector struct {
	store domain.PersistentStore

	totalDesc     *prometheus.Desc
	occupiedDesc  *prometheus.Desc
	verifiedDesc  *prometheus.Desc
	remainingDesc *prometheus.Desc
}

// NewOccupancyCollector constructs a collector reading from the given store.
func NewOccupancyCollector(store domain.PersistentStore) *OccupancyCollector {
	labels := []string{"hall"}
	return &OccupancyCollector{
		store:         store,
		totalDesc:     prometheus.NewDesc("campcore_hall_beds_total", "Total beds configured in the hall.", labels, nil),
		occupiedDesc:  prometheus.NewDesc("campcore_hall_beds_occupied", "Beds with an active occupant claim.", labels, nil),
		verifiedDesc:  prometheus.NewDesc("campcore_hall_beds_verified", "Occupied beds whose camper is verified.", labels, nil),
		remainingDesc: prometheus.NewDesc("campcore_hall_beds_remaining", "Free beds remaining in the hall.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalDesc
	ch <- c.occupiedDesc
	ch <- c.verifiedDesc
	ch <- c.remainingDesc
}

// Collect implements prometheus.Collector.
func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	for _, hall := range c.store.ListHalls() {
		summary, err := c.store.OccupancySummary(hall.Name)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(summary.TotalBeds), hall.Name)
		ch <- prometheus.MustNewConstMetric(c.occupiedDesc, prometheus.GaugeValue, float64(summary.Occupied), hall.Name)
		ch <- prometheus.MustNewConstMetric(c.verifiedDesc, prometheus.GaugeValue, float64(summary.Verified), hall.Name)
		ch <- prometheus.MustNewConstMetric(c.remainingDesc, prometheus.GaugeValue, float64(summary.Remaining), hall.Name)
	}
}
