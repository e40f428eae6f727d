package logging

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
)

// Module registers the logging listeners in their listener groups.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewLoggingJobListener, fx.ResultTags(`group:"`+port.JobListenerGroup+`"`))),
	fx.Provide(fx.Annotate(NewLoggingChunkListener, fx.ResultTags(`group:"`+port.ChunkListenerGroup+`"`))),
	fx.Provide(fx.Annotate(NewLoggingItemReadListener, fx.ResultTags(`group:"`+port.ItemReadListenerGroup+`"`))),
	fx.Provide(fx.Annotate(NewLoggingItemProcessListener, fx.ResultTags(`group:"`+port.ItemProcessListenerGroup+`"`))),
)
