package writer

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/retry"
)

// Module provides DgraphItemWriter as the step's item writer.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		func(adapter *dgraph.Adapter, cfg *config.BatchConfig, recorder metrics.MetricRecorder) *DgraphItemWriter {
			return NewDgraphItemWriter(adapter, retry.NewRetryPolicy(cfg.Retry), recorder)
		},
		fx.As(new(port.ItemWriter[model.Record])),
	)),
)
