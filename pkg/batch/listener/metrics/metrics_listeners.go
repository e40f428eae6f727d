// Package metrics provides listeners that feed the metric recorder.
// Per-record and per-batch counters are recorded by the step itself.
package metrics

import (
	"context"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

// --- Job Execution Listener ---

type MetricsJobListener struct {
	recorder metrics.MetricRecorder
}

func NewMetricsJobListener(recorder metrics.MetricRecorder) port.JobExecutionListener {
	return &MetricsJobListener{recorder: recorder}
}

func (l *MetricsJobListener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobStart(ctx, jobExecution)
}

func (l *MetricsJobListener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobEnd(ctx, jobExecution)
}

var _ port.JobExecutionListener = (*MetricsJobListener)(nil)

// --- Item Read Listener ---

// MetricsItemReadListener counts fatal read errors as a failed batch with reason "read".
type MetricsItemReadListener struct {
	recorder metrics.MetricRecorder
}

func NewMetricsItemReadListener(recorder metrics.MetricRecorder) port.ItemReadListener {
	return &MetricsItemReadListener{recorder: recorder}
}

func (l *MetricsItemReadListener) AfterRead(ctx context.Context, item model.Record) {}

func (l *MetricsItemReadListener) OnReadError(ctx context.Context, err error) {
	jobName := "unknown"
	if je, ok := port.JobExecutionFromContext(ctx); ok {
		jobName = je.JobName
	}
	l.recorder.RecordBatchFailure(ctx, jobName, "read")
}

var _ port.ItemReadListener = (*MetricsItemReadListener)(nil)
