package metrics

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
)

// Module registers the metrics listeners. It requires a metrics.MetricRecorder.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewMetricsJobListener, fx.ResultTags(`group:"`+port.JobListenerGroup+`"`))),
	fx.Provide(fx.Annotate(NewMetricsItemReadListener, fx.ResultTags(`group:"`+port.ItemReadListenerGroup+`"`))),
)
