// Package metrics holds the Prometheus collectors for vote registration and the audit log.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for vote registration and auditing.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	VotesRegistered        prometheus.Counter
	ValidationFailures     prometheus.Counter
	AuditRecordsCommitted  *prometheus.CounterVec
	ReportGenerateDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "votetrail_votes_registered_total",
			Help: "Total number of votes committed",
		}),
		ValidationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "votetrail_vote_validation_failures_total",
			Help: "Total number of votes rejected by validation",
		}),
		AuditRecordsCommitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "votetrail_audit_records_committed_total",
			Help: "Total number of audit records committed, by action",
		}, []string{"action"}),
		ReportGenerateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "votetrail_audit_report_duration_seconds",
			Help:    "Duration of audit XML report generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementVotesRegistered records a committed vote.
func (m *Metrics) IncrementVotesRegistered() {
	if m == nil {
		return
	}
	m.VotesRegistered.Inc()
}

// IncrementValidationFailures records a rejected vote.
func (m *Metrics) IncrementValidationFailures() {
	if m == nil {
		return
	}
	m.ValidationFailures.Inc()
}

// AuditCommitted records a committed audit record for action.
func (m *Metrics) AuditCommitted(action string) {
	if m == nil {
		return
	}
	m.AuditRecordsCommitted.WithLabelValues(action).Inc()
}

// ObserveReportGenerate records the duration of a report generation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReportGenerate(start time.Time) {
	if m == nil {
		return
	}
	m.ReportGenerateDuration.Observe(time.Since(start).Seconds())
}
