package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds Prometheus collectors for enrollment submissions.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	RecordsStored  prometheus.Gauge
	ValidationFail *prometheus.CounterVec
}

// New registers enrollment collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matricula_enrollments_total",
			Help: "Enrollment submissions, labeled by outcome",
		}, []string{"outcome"}),
		RecordsStored: f.NewGauge(prometheus.GaugeOpts{
			Name: "matricula_records_stored",
			Help: "Number of enrollment records currently held by the store",
		}),
		ValidationFail: f.NewCounterVec(prometheus.CounterOpts{
			Name: "matricula_validation_failures_total",
			Help: "Validation failures, labeled by message",
		}, []string{"message"}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncValidationFailures(messages []string) {
	if m == nil {
		return
	}
	for _, msg := range messages {
		m.ValidationFail.WithLabelValues(msg).Inc()
	}
}

func (m *Metrics) SetRecordsStored(n int) {
	if m == nil {
		return
	}
	m.RecordsStored.Set(float64(n))
}
