package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricTrackerCycles         = "tourguide_tracker_cycles_total"
	MetricTrackerCycleDuration  = "tourguide_tracker_cycle_duration_seconds"
	MetricTrackerUserErrors     = "tourguide_tracker_user_errors_total"
	MetricTrackerLastCycleUsers = "tourguide_tracker_last_cycle_users"
)

// TrackerMetrics contains Prometheus metrics for the tracker loop.
// A nil *TrackerMetrics is valid and records nothing.
type TrackerMetrics struct {
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	userErrors     prometheus.Counter
	lastCycleUsers prometheus.Gauge
}

// NewTrackerMetrics creates the collectors. Call Register to expose them.
func NewTrackerMetrics() *TrackerMetrics {
	return &TrackerMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricTrackerCycles,
			Help: "Total number of tracker cycles by final status",
		}, []string{"status"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricTrackerCycleDuration,
			Help:    "Histogram of tracker cycle duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),
		userErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricTrackerUserErrors,
			Help: "Total number of users whose location refresh or reward computation failed",
		}),
		lastCycleUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricTrackerLastCycleUsers,
			Help: "Number of users enumerated by the most recent tracker cycle",
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *TrackerMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *TrackerMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.cycles,
		m.cycleDuration,
		m.userErrors,
		m.lastCycleUsers,
	}
}

func (m *TrackerMetrics) observeCycle(status string, users int, seconds float64) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(status).Inc()
	m.cycleDuration.Observe(seconds)
	m.lastCycleUsers.Set(float64(users))
}

func (m *TrackerMetrics) incUserErrors() {
	if m == nil {
		return
	}
	m.userErrors.Inc()
}
