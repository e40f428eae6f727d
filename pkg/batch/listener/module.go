package listener

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/listener/logging"
	"github.com/tigerroll/graphload/pkg/batch/listener/metrics"
	"github.com/tigerroll/graphload/pkg/batch/listener/tracing"
)

// Module aggregates all listener modules and registers the completion signaler.
var Module = fx.Options(
	logging.Module,
	metrics.Module,
	tracing.Module,
	fx.Provide(
		NewJobCompletionSignaler,
		fx.Annotate(
			func(s *JobCompletionSignaler) port.JobExecutionListener { return s },
			fx.ResultTags(`group:"`+port.JobListenerGroup+`"`),
		),
	),
)
