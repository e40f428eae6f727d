package gcs

import (
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

// Module contributes the GCS adapter to the storage connection group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		func(cfg *config.StorageConfig) *Adapter { return NewAdapter(&cfg.GCS) },
		fx.As(new(storage.StorageConnection)),
		fx.ResultTags(storage.ConnectionGroup),
	)),
)
