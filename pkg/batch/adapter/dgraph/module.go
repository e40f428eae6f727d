package dgraph

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
)

func newConnectionProvider(lc fx.Lifecycle, cfg *config.DgraphConfig) (*Connection, error) {
	conn, err := NewConnection(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conn.Close()
		},
	})
	return conn, nil
}

// Module provides the Dgraph connection, its transaction manager and the Adapter.
var Module = fx.Options(
	fx.Provide(
		newConnectionProvider,
		NewTransactionManager,
		func(tm *TransactionManager, cfg *config.DgraphConfig, recorder metrics.MetricRecorder) *Adapter {
			return NewAdapter(tm, tm, cfg, recorder)
		},
	),
)
