// Package item implements the chunk-oriented ingestion step: records are read
// one at a time, classified, buffered and written in batches while the source
// is paused.
package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// ErrInvalidOptions is returned by Execute when batch size or limit is not positive.
var ErrInvalidOptions = errors.New("invalid ingestion options")

func init() {
	exception.RegisterErrorType("item.ErrInvalidOptions", ErrInvalidOptions)
}

// ChunkStep drives one ingestion run. It is single-use and not safe for concurrent use.
type ChunkStep struct {
	id        string
	reader    port.ItemReader[model.Record]
	processor port.ItemProcessor[model.Record, model.Record]
	writer    port.ItemWriter[model.Record]
	batchSize int
	limit     int

	progress             port.ProgressReporter
	chunkListeners       []port.ChunkListener
	itemReadListeners    []port.ItemReadListener
	itemProcessListeners []port.ItemProcessListener

	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer

	buffer       []model.Record
	state        model.FlowState
	sourceClosed bool
}

// StepOption configures optional collaborators of a ChunkStep.
type StepOption func(*ChunkStep)

// WithProgressReporter sets the reporter updated after every batch.
func WithProgressReporter(p port.ProgressReporter) StepOption {
	return func(s *ChunkStep) {
		if p != nil {
			s.progress = p
		}
	}
}

// WithChunkListeners adds listeners notified around every batch write.
func WithChunkListeners(l ...port.ChunkListener) StepOption {
	return func(s *ChunkStep) { s.chunkListeners = append(s.chunkListeners, l...) }
}

// WithItemReadListeners adds listeners notified of read outcomes.
func WithItemReadListeners(l ...port.ItemReadListener) StepOption {
	return func(s *ChunkStep) { s.itemReadListeners = append(s.itemReadListeners, l...) }
}

// WithItemProcessListeners adds listeners notified of filtered records.
func WithItemProcessListeners(l ...port.ItemProcessListener) StepOption {
	return func(s *ChunkStep) { s.itemProcessListeners = append(s.itemProcessListeners, l...) }
}

// WithMetricRecorder sets the metric recorder.
func WithMetricRecorder(r metrics.MetricRecorder) StepOption {
	return func(s *ChunkStep) {
		if r != nil {
			s.metricRecorder = r
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t metrics.Tracer) StepOption {
	return func(s *ChunkStep) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewChunkStep creates a step that admits at most limit records and writes
// them in batches of batchSize.
func NewChunkStep(
	id string,
	reader port.ItemReader[model.Record],
	processor port.ItemProcessor[model.Record, model.Record],
	writer port.ItemWriter[model.Record],
	batchSize int,
	limit int,
	opts ...StepOption,
) *ChunkStep {
	s := &ChunkStep{
		id:             id,
		reader:         reader,
		processor:      processor,
		writer:         writer,
		batchSize:      batchSize,
		limit:          limit,
		progress:       noopProgress{},
		metricRecorder: metrics.NewNoOpMetricRecorder(),
		tracer:         metrics.NewNoOpTracer(),
		state:          model.FlowConsuming,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the step ID.
func (s *ChunkStep) ID() string {
	return s.id
}

// State returns the current flow state.
func (s *ChunkStep) State() model.FlowState {
	return s.state
}

// Execute runs the flow until the source is exhausted or the limit is reached
// and returns the summary line. Failed batch writes are recorded on
// jobExecution and do not stop the run; read and decode errors do.
func (s *ChunkStep) Execute(ctx context.Context, jobExecution *model.JobExecution) (string, error) {
	if s.batchSize <= 0 || s.limit <= 0 {
		return "", exception.NewBatchError(s.id,
			fmt.Sprintf("batch size and limit must be positive (batch_size=%d, limit=%d)", s.batchSize, s.limit),
			ErrInvalidOptions, false, false)
	}

	ctx = port.WithJobExecution(ctx, jobExecution)
	logger.Infof("ChunkStep '%s' executing: batch_size=%d, limit=%d.", s.id, s.batchSize, s.limit)

	if err := s.reader.Open(ctx); err != nil {
		return "", exception.NewBatchError("reader", "Failed to open ItemReader", err, false, false)
	}
	if err := s.writer.Open(ctx); err != nil {
		_ = s.reader.Close(ctx)
		return "", exception.NewBatchError("writer", "Failed to open ItemWriter", err, false, false)
	}

	s.buffer = make([]model.Record, 0, s.batchSize)
	s.progress.Start(s.limit)
	s.transition(jobExecution, model.FlowConsuming)

	for s.state != model.FlowDone {
		switch s.state {
		case model.FlowConsuming:
			if err := s.consume(ctx, jobExecution); err != nil {
				return "", s.abort(ctx, jobExecution, err)
			}
		case model.FlowFlushing:
			s.reader.Pause()
			s.flush(ctx, jobExecution)
			s.reader.Resume()
			s.transition(jobExecution, model.FlowConsuming)
		case model.FlowDraining:
			s.flush(ctx, jobExecution)
			s.transition(jobExecution, model.FlowDone)
		}
	}

	s.progress.Update(jobExecution.ProcessedCount)
	s.progress.Stop()
	if err := s.closeAll(ctx); err != nil {
		logger.Warnf("ChunkStep '%s': error while releasing resources: %v", s.id, err)
	}

	summary := jobExecution.Summary()
	logger.Infof("%s", summary)
	return summary, nil
}

// consume reads and classifies one record and decides the next state.
func (s *ChunkStep) consume(ctx context.Context, je *model.JobExecution) error {
	if err := ctx.Err(); err != nil {
		return exception.NewBatchError("reader", "Ingestion cancelled", err, false, false)
	}

	rec, err := s.reader.Read(ctx)
	if err == io.EOF {
		logger.Debugf("ChunkStep '%s': source exhausted after %d lines.", s.id, je.ReadCount)
		s.endOfInput(je)
		return nil
	}
	if err != nil {
		for _, l := range s.itemReadListeners {
			l.OnReadError(ctx, err)
		}
		return exception.NewBatchError("reader", "Failed to read record", err, false, false)
	}

	je.ReadCount++
	s.metricRecorder.RecordRecordRead(ctx, je.JobName)
	for _, l := range s.itemReadListeners {
		l.AfterRead(ctx, rec)
	}

	admitted, ok := s.processor.Process(ctx, rec)
	if !ok {
		je.FilterCount++
		s.metricRecorder.RecordRecordFiltered(ctx, je.JobName)
		for _, l := range s.itemProcessListeners {
			l.OnFilter(ctx, rec)
		}
		return nil
	}

	s.buffer = append(s.buffer, admitted)
	je.ProcessedCount++

	switch {
	case je.ProcessedCount >= s.limit:
		logger.Infof("ChunkStep '%s': limit of %d records reached, closing source.", s.id, s.limit)
		s.closeSource(ctx)
		s.endOfInput(je)
	case len(s.buffer) >= s.batchSize:
		s.transition(je, model.FlowFlushing)
	}
	return nil
}

func (s *ChunkStep) endOfInput(je *model.JobExecution) {
	if len(s.buffer) > 0 {
		s.transition(je, model.FlowDraining)
		return
	}
	s.transition(je, model.FlowDone)
}

// flush writes the buffer as one batch. Write failures are recorded and absorbed.
func (s *ChunkStep) flush(ctx context.Context, je *model.JobExecution) {
	je.BatchCount++
	batch := model.Batch{Sequence: je.BatchCount, Records: s.buffer}

	batchCtx, end := s.tracer.StartBatchSpan(ctx, je, batch)
	defer end()

	for _, l := range s.chunkListeners {
		l.BeforeChunk(batchCtx, je, batch)
	}

	start := time.Now()
	result, err := s.writer.Write(batchCtx, batch.Records)
	status := "success"
	if err != nil {
		status = "failure"
		je.FailedBatchCount++
		je.AddFailureException(err)
		s.metricRecorder.RecordBatchFailure(batchCtx, je.JobName, failureReason(err))
		s.tracer.RecordError(batchCtx, "writer", err)
		logger.Errorf("ChunkStep '%s': batch %d (%d records) failed and was dropped: %v", s.id, batch.Sequence, batch.Len(), err)
	} else {
		je.UIDCount += len(result.UIDs)
		s.metricRecorder.RecordBatchCommit(batchCtx, je.JobName, batch.Len())
		logger.Debugf("ChunkStep '%s': batch %d committed (%d records).", s.id, batch.Sequence, batch.Len())
	}
	s.metricRecorder.RecordDuration(batchCtx, "batch_write", time.Since(start), map[string]string{"job": je.JobName, "status": status})

	for _, l := range s.chunkListeners {
		l.AfterChunk(batchCtx, je, batch, result, err)
	}

	s.buffer = make([]model.Record, 0, s.batchSize)
	s.progress.Update(je.ProcessedCount)
}

// abort stops progress, releases resources and wraps err.
func (s *ChunkStep) abort(ctx context.Context, je *model.JobExecution, err error) error {
	logger.Errorf("ChunkStep '%s' failed after %d records: %v", s.id, je.ProcessedCount, err)
	s.progress.Stop()
	s.tracer.RecordError(ctx, "reader", err)
	s.transition(je, model.FlowDone)

	if closeErr := s.closeAll(context.WithoutCancel(ctx)); closeErr != nil {
		return multierror.Append(err, closeErr)
	}
	return err
}

func (s *ChunkStep) closeSource(ctx context.Context) {
	if s.sourceClosed {
		return
	}
	s.sourceClosed = true
	if err := s.reader.Close(ctx); err != nil {
		logger.Warnf("ChunkStep '%s': failed to close source: %v", s.id, err)
	}
}

func (s *ChunkStep) closeAll(ctx context.Context) error {
	var result *multierror.Error
	if !s.sourceClosed {
		s.sourceClosed = true
		if err := s.reader.Close(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := s.writer.Close(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (s *ChunkStep) transition(je *model.JobExecution, next model.FlowState) {
	if s.state != next {
		logger.Debugf("ChunkStep '%s': %s -> %s", s.id, s.state, next)
	}
	s.state = next
	je.FlowState = next
}

func failureReason(err error) string {
	var be *exception.BatchError
	if errors.As(err, &be) && be.OriginalErr != nil {
		err = be.OriginalErr
	}
	if exception.IsTemporary(err) {
		return "temporary"
	}
	return "fatal"
}

type noopProgress struct{}

func (noopProgress) Start(int)  {}
func (noopProgress) Update(int) {}
func (noopProgress) Stop()      {}
