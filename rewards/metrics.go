package rewards

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricRewardsGranted      = "tourguide_rewards_granted_total"
	MetricPointsFetchErrors   = "tourguide_reward_points_fetch_errors_total"
	MetricComputationDuration = "tourguide_reward_computation_duration_seconds"
)

// Metrics contains Prometheus metrics for reward computation.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rewardsGranted      prometheus.Counter
	pointsFetchErrors   prometheus.Counter
	computationDuration prometheus.Histogram
}

// NewMetrics creates the collectors. Call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		rewardsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRewardsGranted,
			Help: "Total number of rewards granted to users",
		}),
		pointsFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPointsFetchErrors,
			Help: "Total number of reward candidates skipped because points were unavailable",
		}),
		computationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricComputationDuration,
			Help:    "Histogram of per-user reward computation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rewardsGranted,
		m.pointsFetchErrors,
		m.computationDuration,
	}
}

func (m *Metrics) IncRewardsGranted() {
	if m == nil {
		return
	}
	m.rewardsGranted.Inc()
}

func (m *Metrics) IncPointsFetchErrors() {
	if m == nil {
		return
	}
	m.pointsFetchErrors.Inc()
}

func (m *Metrics) ObserveComputationDuration(seconds float64) {
	if m == nil {
		return
	}
	m.computationDuration.Observe(seconds)
}
