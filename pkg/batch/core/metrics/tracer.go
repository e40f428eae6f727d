package metrics

import (
	"context"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing of ingestion runs.
type Tracer interface {
	// StartJobSpan starts a span covering a whole JobExecution.
	// The returned function ends the span.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())

	// StartBatchSpan starts a child span for one batch write.
	StartBatchSpan(ctx context.Context, execution *model.JobExecution, batch model.Batch) (context.Context, func())

	// RecordError records an error on the current span.
	// module names the failing component (e.g. "reader", "writer").
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event on the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
