// Package metrics exposes the prometheus collectors of the attendance engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeRetried = "retried"
)

type Metrics struct {
	operations *prometheus.CounterVec
	records    *prometheus.CounterVec
	holidays   prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// serve them from promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Workflow operations by outcome; failures are labelled with the error kind.",
		}, []string{"operation", "outcome"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "ledger",
			Name:      "records_written_total",
			Help:      "Attendance records written by subject type and status.",
		}, []string{"subject_type", "status"}),
		holidays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "workflow",
			Name:      "holiday_submissions_total",
			Help:      "Attendance submitted for a day resolved as a holiday.",
		}),
	}
}

func (m *Metrics) Operation(name, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) RecordWritten(subjectType, status string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(subjectType, status).Inc()
}

func (m *Metrics) HolidaySubmission() {
	if m == nil {
		return
	}
	m.holidays.Inc()
}
