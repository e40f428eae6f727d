package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	jobDurationSeconds *prometheus.HistogramVec
	jobStatusCounter   *prometheus.CounterVec

	recordsRead     *prometheus.CounterVec
	recordsFiltered *prometheus.CounterVec
	recordsWritten  *prometheus.CounterVec

	batchCommits  *prometheus.CounterVec
	batchFailures *prometheus.CounterVec
	batchRetries  *prometheus.CounterVec

	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder with its own registry, which also
// carries the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphload_job_duration_seconds",
			Help:    "Duration of ingestion job executions.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"job_name", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_job_status_total",
			Help: "Job status transitions by status.",
		}, []string{"job_name", "status"}),
		recordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_records_read_total",
			Help: "Lines decoded from the input stream.",
		}, []string{"job_name"}),
		recordsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_records_filtered_total",
			Help: "Records rejected by the classifier.",
		}, []string{"job_name"}),
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_records_written_total",
			Help: "Records in committed batches.",
		}, []string{"job_name"}),
		batchCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_batch_commit_total",
			Help: "Committed batches.",
		}, []string{"job_name"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_batch_failure_total",
			Help: "Batches whose write failed, by reason.",
		}, []string{"job_name", "reason"}),
		batchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphload_batch_retry_total",
			Help: "Batch write retries, by reason.",
		}, []string{"job_name", "reason"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphload_operation_duration_seconds",
			Help:    "Latency of database operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds,
		r.jobStatusCounter,
		r.recordsRead,
		r.recordsFiltered,
		r.recordsWritten,
		r.batchCommits,
		r.batchFailures,
		r.batchRetries,
		r.operationDurationSeconds,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Job '%s' started.", execution.JobName)
}

func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	if execution.EndTime == nil {
		return
	}
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()
	r.jobDurationSeconds.WithLabelValues(execution.JobName, execution.Status.String()).Observe(duration)
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", execution.JobName, duration)
}

func (r *PrometheusRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	r.recordsRead.WithLabelValues(jobName).Inc()
}

func (r *PrometheusRecorder) RecordRecordFiltered(ctx context.Context, jobName string) {
	r.recordsFiltered.WithLabelValues(jobName).Inc()
}

func (r *PrometheusRecorder) RecordBatchCommit(ctx context.Context, jobName string, count int) {
	r.batchCommits.WithLabelValues(jobName).Inc()
	r.recordsWritten.WithLabelValues(jobName).Add(float64(count))
}

func (r *PrometheusRecorder) RecordBatchFailure(ctx context.Context, jobName string, reason string) {
	r.batchFailures.WithLabelValues(jobName, reason).Inc()
}

func (r *PrometheusRecorder) RecordBatchRetry(ctx context.Context, jobName string, reason string) {
	r.batchRetries.WithLabelValues(jobName, reason).Inc()
}

// RecordDuration observes duration under the "status" tag ("ok" when absent).
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	status := tags["status"]
	if status == "" {
		status = "ok"
	}
	r.operationDurationSeconds.WithLabelValues(name, status).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
