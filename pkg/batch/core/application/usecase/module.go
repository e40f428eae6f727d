package usecase

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

// LauncherParams collects the launcher's dependencies and the listener groups.
type LauncherParams struct {
	fx.In

	BatchConfig *config.BatchConfig
	Repository  repository.JobRepository
	Resolver    *storage.Resolver
	Writer      port.ItemWriter[model.Record]
	Recorder    metrics.MetricRecorder
	Tracer      metrics.Tracer

	JobListeners         []port.JobExecutionListener `group:"job_listeners"`
	ChunkListeners       []port.ChunkListener        `group:"chunk_listeners"`
	ItemReadListeners    []port.ItemReadListener     `group:"item_read_listeners"`
	ItemProcessListeners []port.ItemProcessListener  `group:"item_process_listeners"`
}

// NewSimpleJobLauncherFromParams builds the launcher from Fx parameters.
func NewSimpleJobLauncherFromParams(p LauncherParams) *SimpleJobLauncher {
	return NewSimpleJobLauncher(
		p.BatchConfig.JobName,
		p.Repository,
		p.Resolver,
		p.Writer,
		WithJobListeners(p.JobListeners...),
		WithStepListeners(p.ChunkListeners, p.ItemReadListeners, p.ItemProcessListeners),
		WithObservability(p.Recorder, p.Tracer),
	)
}

// Module provides JobLauncher and JobExplorer.
var Module = fx.Options(
	fx.Provide(
		NewSimpleJobLauncherFromParams,
		fx.Annotate(
			func(l *SimpleJobLauncher) *SimpleJobLauncher { return l },
			fx.As(new(JobLauncher)),
		),
		fx.Annotate(
			NewSimpleJobExplorer,
			fx.As(new(JobExplorer)),
		),
	),
)
