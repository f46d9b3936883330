package metrics

import "time"

// JobCompleted records a successful run and its duration.
func JobCompleted(jobType string, duration time.Duration) {
	JobsProcessedTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobRetried records a failed run that will be attempted again.
func JobRetried(jobType string, duration time.Duration) {
	JobsProcessedTotal.WithLabelValues(jobType, "retried").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a run after which the job is given up.
func JobFailed(jobType string, duration time.Duration) {
	JobsProcessedTotal.WithLabelValues(jobType, "failed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}
