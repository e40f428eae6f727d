package tracing

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
)

// Module registers the tracing listeners. It requires a metrics.Tracer.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewTracingChunkListener, fx.ResultTags(`group:"`+port.ChunkListenerGroup+`"`))),
)
