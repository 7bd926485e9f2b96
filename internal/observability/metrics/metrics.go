package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogMetrics exposes counters/histograms for the dialog pipeline.
type DialogMetrics struct {
	turnsTotal          *prometheus.CounterVec
	turnLatency         *prometheus.HistogramVec
	onboardingCompleted prometheus.Counter
	emergenciesTotal    prometheus.Counter
}

func NewDialogMetrics(reg prometheus.Registerer) *DialogMetrics {
	m := &DialogMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebot",
			Subsystem: "dialog",
			Name:      "turns_total",
			Help:      "Total processed dialog turns",
		}, []string{"intent"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carebot",
			Subsystem: "dialog",
			Name:      "turn_latency_seconds",
			Help:      "Latency of dialog turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		onboardingCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carebot",
			Subsystem: "dialog",
			Name:      "onboarding_completed_total",
			Help:      "Total completed onboarding flows",
		}),
		emergenciesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carebot",
			Subsystem: "dialog",
			Name:      "emergencies_total",
			Help:      "Total emergency intents detected",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.onboardingCompleted, m.emergenciesTotal)
	return m
}

func (m *DialogMetrics) ObserveTurn(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

func (m *DialogMetrics) ObserveOnboardingCompleted() {
	if m == nil {
		return
	}
	m.onboardingCompleted.Inc()
}

func (m *DialogMetrics) ObserveEmergency() {
	if m == nil {
		return
	}
	m.emergenciesTotal.Inc()
}
