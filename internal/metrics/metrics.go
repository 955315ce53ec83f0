package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы запроса POST /chat.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeError      = "error"
)

// Metrics хранит счётчики релея в отдельном реестре.
type Metrics struct {
	Registry *prometheus.Registry

	chatRequests     *prometheus.CounterVec
	upstreamAttempts *prometheus.CounterVec
	chatDuration     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmrelay_chat_requests_total",
				Help: "Chat requests by outcome",
			},
			[]string{"outcome"},
		),
		upstreamAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmrelay_upstream_attempts_total",
				Help: "Calls to the model provider by result",
			},
			[]string{"result"},
		),
		chatDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "llmrelay_chat_duration_seconds",
				Help:    "Time spent serving POST /chat",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
	}
	m.Registry.MustRegister(m.chatRequests, m.upstreamAttempts, m.chatDuration)
	return m
}

// ObserveChat учитывает завершённый запрос /chat. Допускает nil-получатель.
func (m *Metrics) ObserveChat(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
	m.chatDuration.Observe(d.Seconds())
}

// UpstreamAttempt учитывает один вызов провайдера: "ok", "retry" или "fail".
func (m *Metrics) UpstreamAttempt(result string) {
	if m == nil {
		return
	}
	m.upstreamAttempts.WithLabelValues(result).Inc()
}
