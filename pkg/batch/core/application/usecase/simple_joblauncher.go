package usecase

import (
	"context"
	"fmt"

	"github.com/tigerroll/graphload/pkg/batch/component/item/processor"
	"github.com/tigerroll/graphload/pkg/batch/component/item/reader"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/item"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// LaunchRequest describes one ingestion run.
type LaunchRequest struct {
	Options config.IngestOptions
	// Classifier decides which records are admitted. Nil, or
	// Options.DisableClassifier, admits every record.
	Classifier processor.Classifier
	// Progress is updated after every batch. Nil disables progress output.
	Progress port.ProgressReporter
}

// JobLauncher runs an ingestion job to completion.
type JobLauncher interface {
	// Launch returns the finished JobExecution. A non-nil error means the
	// run could not be started or ended FAILED; the execution is returned
	// whenever it was created.
	Launch(ctx context.Context, req LaunchRequest) (*model.JobExecution, error)
}

// SimpleJobLauncher runs the chunk step in the caller's goroutine and records
// the execution in the job repository.
type SimpleJobLauncher struct {
	jobName  string
	repo     repository.JobRepository
	opener   reader.SourceOpener
	writer   port.ItemWriter[model.Record]
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer

	jobListeners         []port.JobExecutionListener
	chunkListeners       []port.ChunkListener
	itemReadListeners    []port.ItemReadListener
	itemProcessListeners []port.ItemProcessListener
}

// LauncherOption configures optional collaborators of a SimpleJobLauncher.
type LauncherOption func(*SimpleJobLauncher)

// WithJobListeners adds listeners notified before and after the job.
func WithJobListeners(l ...port.JobExecutionListener) LauncherOption {
	return func(s *SimpleJobLauncher) { s.jobListeners = append(s.jobListeners, l...) }
}

// WithStepListeners adds the listeners handed to every chunk step.
func WithStepListeners(chunk []port.ChunkListener, read []port.ItemReadListener, process []port.ItemProcessListener) LauncherOption {
	return func(s *SimpleJobLauncher) {
		s.chunkListeners = append(s.chunkListeners, chunk...)
		s.itemReadListeners = append(s.itemReadListeners, read...)
		s.itemProcessListeners = append(s.itemProcessListeners, process...)
	}
}

// WithObservability sets the metric recorder and tracer. Nil values keep the no-op defaults.
func WithObservability(recorder metrics.MetricRecorder, tracer metrics.Tracer) LauncherOption {
	return func(s *SimpleJobLauncher) {
		if recorder != nil {
			s.recorder = recorder
		}
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewSimpleJobLauncher creates a launcher for jobName.
func NewSimpleJobLauncher(
	jobName string,
	repo repository.JobRepository,
	opener reader.SourceOpener,
	writer port.ItemWriter[model.Record],
	opts ...LauncherOption,
) *SimpleJobLauncher {
	l := &SimpleJobLauncher{
		jobName:  jobName,
		repo:     repo,
		opener:   opener,
		writer:   writer,
		recorder: metrics.NewNoOpMetricRecorder(),
		tracer:   metrics.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch validates the options, records a new JobExecution and runs the step.
func (l *SimpleJobLauncher) Launch(ctx context.Context, req LaunchRequest) (*model.JobExecution, error) {
	const op = "SimpleJobLauncher.Launch"
	opts := req.Options
	if err := opts.Validate(); err != nil {
		return nil, exception.NewBatchError(op, "invalid ingestion options", fmt.Errorf("%w: %v", item.ErrInvalidOptions, err), false, false)
	}
	if opts.Offset > 0 {
		logger.Warnf("Offset %d is reserved and not applied; reading from the start of %s.", opts.Offset, opts.Path)
	}

	je := model.NewJobExecution(l.jobName, opts.BatchSize, opts.Limit, opts.Offset, opts.Path)
	if err := l.repo.SaveJobExecution(ctx, je); err != nil {
		return nil, exception.NewBatchError(op, "failed to record job execution", err, false, false)
	}

	ctx, endSpan := l.tracer.StartJobSpan(ctx, je)
	defer endSpan()

	je.MarkAsStarted()
	l.update(ctx, je)
	for _, jl := range l.jobListeners {
		jl.BeforeJob(ctx, je)
	}

	classify := req.Classifier
	if opts.DisableClassifier {
		classify = processor.AdmitAll
	}
	step := item.NewChunkStep(
		l.jobName+".ingest",
		reader.NewJSONLinesReader(l.opener, opts.Path, opts.RecordsPerSecond),
		processor.NewClassifierProcessor(classify),
		l.writer,
		opts.BatchSize,
		opts.Limit,
		item.WithProgressReporter(req.Progress),
		item.WithChunkListeners(l.chunkListeners...),
		item.WithItemReadListeners(l.itemReadListeners...),
		item.WithItemProcessListeners(l.itemProcessListeners...),
		item.WithMetricRecorder(l.recorder),
		item.WithTracer(l.tracer),
	)

	_, runErr := step.Execute(ctx, je)

	// The run context may be cancelled; bookkeeping still has to land.
	finishCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		je.MarkAsFailed(runErr)
	} else {
		je.MarkAsCompleted()
	}
	l.update(finishCtx, je)
	for _, jl := range l.jobListeners {
		jl.AfterJob(finishCtx, je)
	}

	return je, runErr
}

func (l *SimpleJobLauncher) update(ctx context.Context, je *model.JobExecution) {
	if err := l.repo.UpdateJobExecution(ctx, je); err != nil {
		logger.Warnf("Failed to update JobExecution (ID: %s): %v", je.ID, err)
	}
}

var _ JobLauncher = (*SimpleJobLauncher)(nil)
