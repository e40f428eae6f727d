package metrics

import (
	"context"
	"time"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// MetricRecorder is an abstract interface for recording ingestion metrics.
//
// Implementations must be safe for concurrent use; the metrics HTTP server
// scrapes them while the job runs.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)

	// RecordJobEnd records the end of a JobExecution, including its final status.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)

	// RecordRecordRead records one decoded line.
	RecordRecordRead(ctx context.Context, jobName string)

	// RecordRecordFiltered records one record rejected by the classifier.
	RecordRecordFiltered(ctx context.Context, jobName string)

	// RecordBatchCommit records a committed batch of count records.
	RecordBatchCommit(ctx context.Context, jobName string, count int)

	// RecordBatchFailure records a batch whose write failed and was absorbed.
	//
	// reason is a short classification of the error (e.g. "temporary", "fatal").
	RecordBatchFailure(ctx context.Context, jobName string, reason string)

	// RecordBatchRetry records one retry of a batch write.
	RecordBatchRetry(ctx context.Context, jobName string, reason string)

	// RecordDuration records the execution time of a specific operation.
	//
	// name identifies the operation (e.g. "batch_write"); tags are extra labels.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
