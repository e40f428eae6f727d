package local

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
)

// Module contributes the local adapter (no base directory) to the storage connection group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		func() *Adapter { return NewAdapter("") },
		fx.As(new(storage.StorageConnection)),
		fx.ResultTags(storage.ConnectionGroup),
	)),
)
