package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a tracer from provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: provider.Tracer(instrumentationName)}
}

// StartJobSpan starts a root span for a JobExecution. The span status is set
// from the execution status when the returned function runs.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job "+execution.JobName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("job.id", execution.ID),
			attribute.String("job.path", execution.Path),
			attribute.Int("job.batch_size", execution.BatchSize),
			attribute.Int("job.limit", execution.Limit),
		))
	return ctx, func() {
		span.SetAttributes(
			attribute.Int("job.records_seen", execution.ProcessedCount),
			attribute.Int("job.batches", execution.BatchCount),
			attribute.Int("job.failed_batches", execution.FailedBatchCount),
		)
		if execution.Status == model.BatchStatusFailed {
			span.SetStatus(codes.Error, execution.ExitMessage)
		}
		span.End()
	}
}

// StartBatchSpan starts a child span for one batch write.
func (t *OpenTelemetryTracer) StartBatchSpan(ctx context.Context, execution *model.JobExecution, batch model.Batch) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("batch %d", batch.Sequence),
		trace.WithAttributes(
			attribute.String("job.id", execution.ID),
			attribute.Int("batch.sequence", batch.Sequence),
			attribute.Int("batch.size", batch.Len()),
		))
	return ctx, func() { span.End() }
}

// RecordError records an error on the span in ctx.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent adds an event to the span in ctx. Attribute values are
// stringified unless they are strings, ints, bools or float64s.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
