package config

import "go.uber.org/fx"

// Module provides *Config and its sub-configurations to Fx.
// Callers supply EmbeddedConfig (and optionally a named "envFilePath").
var Module = fx.Options(
	fx.Provide(
		NewConfigProvider,
		func() EnvironmentExpander { return NewOsEnvironmentExpander() },
		func(cfg *Config) *LoggingConfig { return &cfg.Graphload.System.Logging },
		func(cfg *Config) *BatchConfig { return &cfg.Graphload.Batch },
		func(cfg *Config) *DgraphConfig { return &cfg.Graphload.Dgraph },
		func(cfg *Config) *MetricsConfig { return &cfg.Graphload.Metrics },
		func(cfg *Config) *TracingConfig { return &cfg.Graphload.Tracing },
		func(cfg *Config) *StorageConfig { return &cfg.Graphload.Storage },
		func(cfg *Config) *JobRepositoryConfig { return &cfg.Graphload.JobRepository },
		func(cfg *Config) *SecurityConfig { return &cfg.Graphload.Security },
	),
)
