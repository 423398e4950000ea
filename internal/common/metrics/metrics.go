// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	// Audit emission is best-effort: drops are invisible to the decision
	// pipeline and only surface here.
	AuditEventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_emitted_total",
			Help: "Total number of audit events recorded",
		},
		[]string{"action"},
	)

	AuditEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events that failed to record",
		},
		[]string{"action"},
	)

	BureauInquiries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_bureau_inquiries_total",
			Help: "Total number of credit bureau inquiries by outcome",
		},
		[]string{"provider", "outcome"},
	)

	DecisionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_decisions_total",
			Help: "Total number of terminal application decisions committed",
		},
		[]string{"status"},
	)
)
