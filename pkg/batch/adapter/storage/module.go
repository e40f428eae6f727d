package storage

import (
	"context"

	"go.uber.org/fx"
)

// ResolverParams collects every adapter registered in the connection group.
type ResolverParams struct {
	fx.In
	Lifecycle   fx.Lifecycle
	Connections []StorageConnection `group:"storage_connections"`
}

// NewResolverProvider builds the resolver and closes its adapters on shutdown.
func NewResolverProvider(p ResolverParams) *Resolver {
	r := NewResolver(p.Connections...)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})
	return r
}

// Module provides *Resolver. Adapter modules (local, gcs) must be included alongside it.
var Module = fx.Options(
	fx.Provide(NewResolverProvider),
)
