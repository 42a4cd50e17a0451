package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncSubmission(OutcomeAccepted)
	m.IncSubmission(OutcomeAccepted)
	m.IncSubmission(OutcomeRejected)
	m.IncValidationFailures([]string{"Email no válido", "Email no válido"})
	m.SetRecordsStored(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationFail.WithLabelValues("Email no válido")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsStored))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSubmission(OutcomeFailed)
		m.IncValidationFailures([]string{"x"})
		m.SetRecordsStored(1)
	})
}
