package metrics

import (
	"go.uber.org/fx"
)

// Module provides the no-op recorder and tracer. The infrastructure metrics
// module decorates them with real implementations when enabled.
var Module = fx.Options(
	fx.Provide(NewNoOpMetricRecorder),
	fx.Provide(NewNoOpTracer),
)
