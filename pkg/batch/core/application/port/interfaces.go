// Package port defines the interfaces between the batch engine and its components.
package port

import (
	"context"
	"errors"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// ErrSourcePaused is returned by ItemReader.Read while the reader is paused.
// Reading from a paused source is a programming error in the caller.
var ErrSourcePaused = errors.New("item reader is paused")

// ItemReader yields items one at a time from a sequential source.
type ItemReader[O any] interface {
	// Open prepares the reader. It must be called once before Read.
	Open(ctx context.Context) error

	// Read returns the next item, or io.EOF once the source is exhausted.
	// Any other error is fatal for the job.
	Read(ctx context.Context) (O, error)

	// Close releases the underlying source. Calling it more than once is harmless.
	Close(ctx context.Context) error

	// Pause stops the reader from yielding items until Resume is called.
	Pause()

	// Resume lets a paused reader yield items again.
	Resume()
}

// ItemProcessor decides whether an item continues down the pipeline.
type ItemProcessor[I, O any] interface {
	// Process returns the item to pass on and true, or the zero value and
	// false when the item is filtered out.
	Process(ctx context.Context, item I) (O, bool)
}

// WriteResult describes a successful batch write.
type WriteResult struct {
	// Written is the number of items sent in the batch.
	Written int
	// UIDs are the identifiers the database assigned, if any.
	UIDs []string
}

// ItemWriter writes one batch of items per call.
type ItemWriter[I any] interface {
	Open(ctx context.Context) error

	// Write sends items as one unit of work. A returned error means the batch
	// was not persisted; the caller decides whether that is fatal.
	Write(ctx context.Context, items []I) (WriteResult, error)

	Close(ctx context.Context) error
}

// ProgressReporter displays ingestion progress. It never influences control flow.
type ProgressReporter interface {
	// Start begins reporting against total.
	Start(total int)
	// Update sets the current count. It is a no-op before Start or after Stop.
	Update(current int)
	// Stop ends reporting. It is idempotent.
	Stop()
}

// JobExecutionListener is notified before and after a job runs.
type JobExecutionListener interface {
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// ChunkListener is notified around every batch write.
type ChunkListener interface {
	BeforeChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch)
	// AfterChunk receives the write error, nil on success.
	AfterChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch, result WriteResult, err error)
}

// ItemReadListener is notified of read outcomes.
type ItemReadListener interface {
	AfterRead(ctx context.Context, item model.Record)
	OnReadError(ctx context.Context, err error)
}

// ItemProcessListener is notified when the processor filters an item out.
type ItemProcessListener interface {
	OnFilter(ctx context.Context, item model.Record)
}

type contextKey string

const jobExecutionKey contextKey = "jobExecution"

// WithJobExecution returns a context carrying the running job execution.
func WithJobExecution(ctx context.Context, je *model.JobExecution) context.Context {
	return context.WithValue(ctx, jobExecutionKey, je)
}

// JobExecutionFromContext returns the job execution stored by WithJobExecution.
func JobExecutionFromContext(ctx context.Context) (*model.JobExecution, bool) {
	je, ok := ctx.Value(jobExecutionKey).(*model.JobExecution)
	return je, ok
}

// Fx value groups listeners are collected into.
const (
	JobListenerGroup         = "job_listeners"
	ChunkListenerGroup       = "chunk_listeners"
	ItemReadListenerGroup    = "item_read_listeners"
	ItemProcessListenerGroup = "item_process_listeners"
)
