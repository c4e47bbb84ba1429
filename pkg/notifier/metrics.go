package notifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes delivery counters and latency histograms. All methods
// are nil-safe so the orchestrator can run unmetered.
type Metrics struct {
	deliveries *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	sweeps     *prometheus.CounterVec
}

// NewMetrics registers the notifier's collectors with the given
// registerer, typically prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_deliveries_total",
			Help: "Delivery attempts by channel and terminal result.",
		}, []string{"channel", "result"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notifier_delivery_duration_seconds",
			Help:    "Wall time of one dispatch, including provider retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
		sweeps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_sweep_items_total",
			Help: "Items handled by the scheduled and expiry sweeps.",
		}, []string{"sweep", "result"}),
	}
}

func (m *Metrics) recordDelivery(channel, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, result).Inc()
	m.latency.WithLabelValues(channel).Observe(elapsed.Seconds())
}

func (m *Metrics) recordSweep(sweep, result string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(sweep, result).Inc()
}
