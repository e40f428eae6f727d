package config

import "time"

// Package config provides structures and utilities for managing application configuration.

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// Repository types accepted by JobRepositoryConfig.Type.
const (
	RepositoryInMemory = "inmemory"
	RepositorySQLite   = "sqlite"
	RepositoryPostgres = "postgres"
	RepositoryMySQL    = "mysql"
)

// RetryConfig controls how a failed batch write is retried.
// Intervals are in milliseconds.
type RetryConfig struct {
	MaxAttempts         int      `yaml:"max_attempts"`         // MaxAttempts counts the first attempt; 1 disables retry.
	InitialInterval     int      `yaml:"initial_interval"`     // InitialInterval is the first backoff interval.
	MaxInterval         int      `yaml:"max_interval"`         // MaxInterval caps a single backoff interval.
	Factor              float64  `yaml:"factor"`               // Factor is the backoff multiplier.
	RetryableExceptions []string `yaml:"retryable_exceptions"` // RetryableExceptions are registered error names that may be retried.
}

// BatchConfig holds the ingestion defaults.
type BatchConfig struct {
	// JobName is recorded on every job execution.
	JobName string `yaml:"job_name"`
	// BatchSize is the number of admitted records per transaction.
	BatchSize int `yaml:"batch_size"`
	// Limit is the maximum number of admitted records per run.
	Limit int `yaml:"limit"`
	// Offset is reserved. It is recorded but never applied.
	Offset int `yaml:"offset"`
	// Path is the input file, a local path or gs://bucket/object.
	Path string `yaml:"path"`
	// RecordsPerSecond throttles the reader when greater than zero.
	RecordsPerSecond float64 `yaml:"records_per_second"`
	// DisableClassifier admits every record instead of linkable content only.
	DisableClassifier bool `yaml:"disable_classifier"`
	// Retry is the batch write retry configuration.
	Retry RetryConfig `yaml:"retry"`
}

// DgraphConfig describes how to reach the Dgraph alpha.
type DgraphConfig struct {
	// Endpoint is the gRPC address of an alpha (host:port).
	Endpoint string `yaml:"endpoint"`
	// Username and Password log in to an ACL enabled cluster when set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// RequestTimeout bounds every database call, in milliseconds. Zero means no timeout.
	RequestTimeout int `yaml:"request_timeout"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c DgraphConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Tokyo").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// Metric exporters accepted by MetricsConfig.Exporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
)

// OTLP transports accepted by the Protocol settings.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// MetricsConfig controls how ingestion metrics are exported.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is "prometheus" (scrape endpoint) or "otlp" (push).
	Exporter string `yaml:"exporter"`
	// ListenAddress is the Prometheus scrape address.
	ListenAddress string `yaml:"listen_address"`
	// OTLPEndpoint and Protocol configure the otlp exporter.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Protocol     string `yaml:"protocol"`
	// ExportInterval is the otlp push interval in milliseconds.
	ExportInterval int `yaml:"export_interval"`
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Protocol     string `yaml:"protocol"`
	ServiceName  string `yaml:"service_name"`
	TLS          bool   `yaml:"tls"`
}

// GCSConfig configures the Google Cloud Storage source adapter.
type GCSConfig struct {
	// CredentialsFile is a service account key. Application default credentials are used when empty.
	CredentialsFile string `yaml:"credentials_file"`
}

// StorageConfig groups storage adapter settings.
type StorageConfig struct {
	GCS GCSConfig `yaml:"gcs"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// JobRepositoryConfig selects where job executions are recorded.
type JobRepositoryConfig struct {
	// Type is one of inmemory, sqlite, postgres, mysql.
	Type string `yaml:"type"`
	// DSN is the driver specific data source name.
	DSN string `yaml:"dsn"`
	// HistoryLimit is the number of executions listed by the history command.
	HistoryLimit int `yaml:"history_limit"`
	// SQLLogLevel is the GORM log level: silent, error, warn or info.
	SQLLogLevel string     `yaml:"sql_log_level"`
	Pool        PoolConfig `yaml:"pool"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// MaskedParameterKeys lists option keys whose values are masked in logs.
	MaskedParameterKeys []string `yaml:"masked_parameter_keys"`
}

// GraphloadConfig holds all configuration under the "graphload" top-level key.
type GraphloadConfig struct {
	Batch         BatchConfig         `yaml:"batch"`
	Dgraph        DgraphConfig        `yaml:"dgraph"`
	System        SystemConfig        `yaml:"system"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Storage       StorageConfig       `yaml:"storage"`
	JobRepository JobRepositoryConfig `yaml:"job_repository"`
	Security      SecurityConfig      `yaml:"security"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Graphload GraphloadConfig `yaml:"graphload"`
	// EmbeddedConfig holds the raw document the config was loaded from.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Graphload: GraphloadConfig{
			Batch: BatchConfig{
				JobName:   "graphload",
				BatchSize: 250,
				Limit:     1000,
				Offset:    0,
				Path:      "./data/RS_2018-02-01",
				Retry: RetryConfig{
					MaxAttempts:     1, // Best effort: a failed batch is logged and skipped.
					InitialInterval: 500,
					MaxInterval:     5000,
					Factor:          2.0,
					RetryableExceptions: []string{
						"net.OpError",
						"context.DeadlineExceeded",
					},
				},
			},
			Dgraph: DgraphConfig{
				Endpoint: "localhost:9080",
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Metrics: MetricsConfig{
				Exporter:       ExporterPrometheus,
				ListenAddress:  ":9464",
				OTLPEndpoint:   "localhost:4317",
				Protocol:       ProtocolGRPC,
				ExportInterval: 10000,
			},
			Tracing: TracingConfig{
				OTLPEndpoint: "localhost:4317",
				Protocol:     ProtocolGRPC,
				ServiceName:  "graphload",
			},
			JobRepository: JobRepositoryConfig{
				Type:         RepositoryInMemory,
				HistoryLimit: 20,
				SQLLogLevel:  "silent",
				Pool: PoolConfig{
					MaxOpenConns: 4,
					MaxIdleConns: 2,
				},
			},
			Security: SecurityConfig{
				MaskedParameterKeys: []string{"password", "secret", "dsn"},
			},
		},
	}
}
