package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds per-route HTTP instruments. Routes are labelled by pattern.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matricula_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matricula_http_responses_total",
			Help: "HTTP responses by endpoint and status class",
		}, []string{"endpoint", "class"}),
	}
}

func (m *Metrics) observe(endpoint, method string, status int, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint, method).Observe(durationSeconds)
	m.Responses.WithLabelValues(endpoint, statusClass(status)).Inc()
}

// statusClass buckets a status code as 2xx, 4xx and so on.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
