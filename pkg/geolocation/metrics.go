package geolocation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for negotiations. A nil *Metrics
// records nothing.
type Metrics struct {
	Negotiations        *prometheus.CounterVec   // labels: flow={position,change,authorized}, outcome
	NegotiationDuration *prometheus.HistogramVec // labels: flow
	PromptAnswers       *prometheus.CounterVec   // labels: prompt={enable,unauthorize}, answer={confirm,cancel,dismissed}
	SettingsRoundTrips  *prometheus.CounterVec   // labels: target={location,app}
	DroppedRequests     prometheus.Counter
}

// NewMetrics creates the negotiation metrics and registers them with reg.
// A nil reg uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geolocation",
			Name:      "negotiations_total",
			Help:      "Completed negotiations by flow and outcome.",
		}, []string{"flow", "outcome"}),
		NegotiationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geolocation",
			Name:      "negotiation_duration_seconds",
			Help:      "Wall time of a negotiation, prompts and settings visits included.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"flow"}),
		PromptAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geolocation",
			Name:      "prompt_answers_total",
			Help:      "Confirmation prompt answers by prompt and answer.",
		}, []string{"prompt", "answer"}),
		SettingsRoundTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geolocation",
			Name:      "settings_round_trips_total",
			Help:      "Settings screens launched by target.",
		}, []string{"target"}),
		DroppedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geolocation",
			Name:      "dropped_requests_total",
			Help:      "Position requests dropped because one was already in flight.",
		}),
	}

	reg.MustRegister(
		m.Negotiations,
		m.NegotiationDuration,
		m.PromptAnswers,
		m.SettingsRoundTrips,
		m.DroppedRequests,
	)
	return m
}

func (m *Metrics) observeNegotiation(flow, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Negotiations.WithLabelValues(flow, outcome).Inc()
	m.NegotiationDuration.WithLabelValues(flow).Observe(d.Seconds())
}

func (m *Metrics) observePrompt(kind PromptKind, answer string) {
	if m == nil {
		return
	}
	m.PromptAnswers.WithLabelValues(kind.String(), answer).Inc()
}

func (m *Metrics) observeSettings(target string) {
	if m == nil {
		return
	}
	m.SettingsRoundTrips.WithLabelValues(target).Inc()
}

// ObserveDropped counts a request dropped by a Guard.
func (m *Metrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.DroppedRequests.Inc()
}
