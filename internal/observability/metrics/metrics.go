// Package metrics exposes prometheus instruments for the background jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memberdesk_scheduler_job_runs_total",
		Help: "Scheduler job executions.",
	}, []string{"job"})

	jobErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memberdesk_scheduler_job_errors_total",
		Help: "Scheduler job executions that returned an error.",
	}, []string{"job"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "memberdesk_scheduler_job_duration_seconds",
		Help:    "Scheduler job wall time.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	recordsFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memberdesk_contact_records_flagged_total",
		Help: "Contact records flagged for re-verification.",
	})

	notifyTasksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memberdesk_notify_tasks_enqueued_total",
		Help: "Verification email tasks enqueued by the notify sweep.",
	})
)

func IncJobRun(job string) {
	jobRuns.WithLabelValues(job).Inc()
}

func IncJobError(job string) {
	jobErrors.WithLabelValues(job).Inc()
}

func ObserveJobDuration(job string, d time.Duration) {
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func AddRecordsFlagged(count int64) {
	if count > 0 {
		recordsFlagged.Add(float64(count))
	}
}

func AddNotifyTasksEnqueued(count int) {
	if count > 0 {
		notifyTasksEnqueued.Add(float64(count))
	}
}
