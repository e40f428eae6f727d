package metrics

import (
	"context"
	"time"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

func (r *NoOpMetricRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {}
func (r *NoOpMetricRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution)   {}
func (r *NoOpMetricRecorder) RecordRecordRead(ctx context.Context, jobName string)              {}
func (r *NoOpMetricRecorder) RecordRecordFiltered(ctx context.Context, jobName string)          {}
func (r *NoOpMetricRecorder) RecordBatchCommit(ctx context.Context, jobName string, count int)  {}
func (r *NoOpMetricRecorder) RecordBatchFailure(ctx context.Context, jobName string, reason string) {
}
func (r *NoOpMetricRecorder) RecordBatchRetry(ctx context.Context, jobName string, reason string) {
}
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

func (t *NoOpTracer) StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) StartBatchSpan(ctx context.Context, execution *model.JobExecution, batch model.Batch) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
