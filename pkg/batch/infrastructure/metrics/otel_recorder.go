package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

const instrumentationName = "github.com/tigerroll/graphload"

// OpenTelemetryRecorder records ingestion metrics through an OpenTelemetry meter.
// It is used when metrics are pushed over OTLP instead of scraped.
type OpenTelemetryRecorder struct {
	jobs            otelmetric.Int64Counter
	jobDuration     otelmetric.Float64Histogram
	recordsRead     otelmetric.Int64Counter
	recordsFiltered otelmetric.Int64Counter
	recordsWritten  otelmetric.Int64Counter
	batchCommits    otelmetric.Int64Counter
	batchFailures   otelmetric.Int64Counter
	batchRetries    otelmetric.Int64Counter
	opDuration      otelmetric.Float64Histogram
}

// NewOpenTelemetryRecorder creates the instruments on a meter from provider.
func NewOpenTelemetryRecorder(provider otelmetric.MeterProvider) (*OpenTelemetryRecorder, error) {
	meter := provider.Meter(instrumentationName)
	r := &OpenTelemetryRecorder{}
	var err error

	counters := []struct {
		dst  *otelmetric.Int64Counter
		name string
		desc string
	}{
		{&r.jobs, "graphload.jobs", "Job status transitions by status."},
		{&r.recordsRead, "graphload.records.read", "Lines decoded from the input stream."},
		{&r.recordsFiltered, "graphload.records.filtered", "Records rejected by the classifier."},
		{&r.recordsWritten, "graphload.records.written", "Records in committed batches."},
		{&r.batchCommits, "graphload.batch.commits", "Committed batches."},
		{&r.batchFailures, "graphload.batch.failures", "Batches whose write failed."},
		{&r.batchRetries, "graphload.batch.retries", "Batch write retries."},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, otelmetric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	if r.jobDuration, err = meter.Float64Histogram("graphload.job.duration",
		otelmetric.WithDescription("Duration of ingestion job executions."), otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.opDuration, err = meter.Float64Histogram("graphload.operation.duration",
		otelmetric.WithDescription("Latency of database operations."), otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	return r, nil
}

func jobAttr(jobName string) otelmetric.MeasurementOption {
	return otelmetric.WithAttributes(attribute.String("job_name", jobName))
}

func (r *OpenTelemetryRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	r.jobs.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("job_name", execution.JobName),
		attribute.String("status", execution.Status.String()),
	))
}

func (r *OpenTelemetryRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	attrs := otelmetric.WithAttributes(
		attribute.String("job_name", execution.JobName),
		attribute.String("status", execution.Status.String()),
	)
	r.jobs.Add(ctx, 1, attrs)
	if execution.EndTime != nil {
		r.jobDuration.Record(ctx, execution.EndTime.Sub(execution.StartTime).Seconds(), attrs)
	}
}

func (r *OpenTelemetryRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	r.recordsRead.Add(ctx, 1, jobAttr(jobName))
}

func (r *OpenTelemetryRecorder) RecordRecordFiltered(ctx context.Context, jobName string) {
	r.recordsFiltered.Add(ctx, 1, jobAttr(jobName))
}

func (r *OpenTelemetryRecorder) RecordBatchCommit(ctx context.Context, jobName string, count int) {
	r.batchCommits.Add(ctx, 1, jobAttr(jobName))
	r.recordsWritten.Add(ctx, int64(count), jobAttr(jobName))
}

func (r *OpenTelemetryRecorder) RecordBatchFailure(ctx context.Context, jobName string, reason string) {
	r.batchFailures.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("job_name", jobName),
		attribute.String("reason", reason),
	))
}

func (r *OpenTelemetryRecorder) RecordBatchRetry(ctx context.Context, jobName string, reason string) {
	r.batchRetries.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("job_name", jobName),
		attribute.String("reason", reason),
	))
}

func (r *OpenTelemetryRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+1)
	attrs = append(attrs, attribute.String("operation", name))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.opDuration.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(attrs...))
}

var _ metrics.MetricRecorder = (*OpenTelemetryRecorder)(nil)
