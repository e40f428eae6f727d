// Package tracing provides listeners that annotate the active span.
// Job and batch spans themselves are started by the launcher and the step.
package tracing

import (
	"context"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

// TracingChunkListener adds the batch outcome to the batch span.
type TracingChunkListener struct {
	tracer metrics.Tracer
}

func NewTracingChunkListener(tracer metrics.Tracer) port.ChunkListener {
	return &TracingChunkListener{tracer: tracer}
}

func (l *TracingChunkListener) BeforeChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch) {
	l.tracer.RecordEvent(ctx, "batch.dispatch", map[string]interface{}{
		"batch.sequence": batch.Sequence,
		"batch.size":     batch.Len(),
		"records.seen":   jobExecution.ProcessedCount,
		"records.limit":  jobExecution.Limit,
	})
}

func (l *TracingChunkListener) AfterChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch, result port.WriteResult, err error) {
	if err != nil {
		return
	}
	l.tracer.RecordEvent(ctx, "batch.committed", map[string]interface{}{
		"batch.written": result.Written,
		"batch.uids":    len(result.UIDs),
	})
}

var _ port.ChunkListener = (*TracingChunkListener)(nil)
