package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string              `name:"envFilePath" optional:"true"`
	Expander    EnvironmentExpander `optional:"true"`
}

// loadConfig builds the configuration in three layers: defaults from NewConfig,
// the YAML document, then GRAPHLOAD_* environment
// variables. A .env file is loaded first so it can feed both of the later layers.
func loadConfig(envFilePath string, data EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}

	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal config", err, false, false)
	}
	if err := expandScalars(&doc, expander); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to expand environment placeholders", err, false, false)
	}

	cfg := NewConfig()

	var yamlConfig Config
	if doc.Kind != 0 {
		if err := doc.Decode(&yamlConfig); err != nil {
			return nil, exception.NewBatchError(moduleName, "failed to unmarshal config", err, false, false)
		}
	}
	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false, false)
	}
	cfg.EmbeddedConfig = data
	return cfg, nil
}

// expandScalars replaces placeholders inside scalar values of an already parsed
// document, so an expanded value is never read as YAML syntax. A plain scalar
// whose value changed loses its resolved tag and is resolved again on decode,
// which lets "${LIMIT}" feed an int field.
func expandScalars(n *yaml.Node, expander EnvironmentExpander) error {
	if n.Kind == yaml.ScalarNode {
		if !strings.Contains(n.Value, "$") {
			return nil
		}
		expanded, err := expander.Expand([]byte(n.Value))
		if err != nil {
			return err
		}
		if v := string(expanded); v != n.Value {
			n.Value = v
			if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle|yaml.TaggedStyle) == 0 {
				n.Tag = ""
			}
		}
		return nil
	}
	for _, c := range n.Content {
		if err := expandScalars(c, expander); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads configuration from a YAML document and the environment.
func LoadConfig(envFilePath string, data EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, data, nil)
}

// ReadConfigFile reads a YAML configuration file from disk.
func ReadConfigFile(path string) (EmbeddedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to read config file %s", path), err, false, false)
	}
	return data, nil
}

// NewConfigProvider is an Fx provider that loads, validates and provides *Config.
// It also applies the configured log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Graphload.System.Logging.Level)
	logger.Debugf("Log level set to: %s", cfg.Graphload.System.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, exception.NewBatchError(moduleName, "invalid configuration", err, false, false)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	g := c.Graphload
	if err := g.Batch.IngestOptions().Validate(); err != nil {
		return err
	}
	if g.Batch.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", g.Batch.Retry.MaxAttempts)
	}
	if err := checkExceptionClasses(g.Batch.Retry.RetryableExceptions, "Retry"); err != nil {
		return err
	}
	if strings.TrimSpace(g.Dgraph.Endpoint) == "" {
		return fmt.Errorf("dgraph.endpoint must not be empty")
	}
	switch g.JobRepository.Type {
	case RepositoryInMemory:
	case RepositorySQLite, RepositoryPostgres, RepositoryMySQL:
		if g.JobRepository.DSN == "" {
			return fmt.Errorf("job_repository.dsn is required for type %q", g.JobRepository.Type)
		}
	default:
		return fmt.Errorf("unknown job_repository.type %q", g.JobRepository.Type)
	}
	if g.Metrics.Enabled {
		switch g.Metrics.Exporter {
		case ExporterPrometheus:
			if g.Metrics.ListenAddress == "" {
				return fmt.Errorf("metrics.listen_address is required for the prometheus exporter")
			}
		case ExporterOTLP:
			if err := checkProtocol("metrics", g.Metrics.Protocol); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown metrics.exporter %q", g.Metrics.Exporter)
		}
	}
	if g.Tracing.Enabled {
		if err := checkProtocol("tracing", g.Tracing.Protocol); err != nil {
			return err
		}
	}
	return nil
}

// mergeConfig copies every non-zero value of source over dest.
func mergeConfig(dest, source *Config) {
	mergeBatchConfig(&dest.Graphload.Batch, &source.Graphload.Batch)

	d, s := &dest.Graphload, &source.Graphload
	if s.Dgraph.Endpoint != "" {
		d.Dgraph.Endpoint = s.Dgraph.Endpoint
	}
	if s.Dgraph.Username != "" {
		d.Dgraph.Username = s.Dgraph.Username
	}
	if s.Dgraph.Password != "" {
		d.Dgraph.Password = s.Dgraph.Password
	}
	if s.Dgraph.RequestTimeout != 0 {
		d.Dgraph.RequestTimeout = s.Dgraph.RequestTimeout
	}

	if s.System.Timezone != "" {
		d.System.Timezone = s.System.Timezone
	}
	if s.System.Logging.Level != "" {
		d.System.Logging.Level = s.System.Logging.Level
	}

	if s.Metrics.Enabled {
		d.Metrics.Enabled = true
	}
	if s.Metrics.Exporter != "" {
		d.Metrics.Exporter = s.Metrics.Exporter
	}
	if s.Metrics.ListenAddress != "" {
		d.Metrics.ListenAddress = s.Metrics.ListenAddress
	}
	if s.Metrics.OTLPEndpoint != "" {
		d.Metrics.OTLPEndpoint = s.Metrics.OTLPEndpoint
	}
	if s.Metrics.Protocol != "" {
		d.Metrics.Protocol = s.Metrics.Protocol
	}
	if s.Metrics.ExportInterval != 0 {
		d.Metrics.ExportInterval = s.Metrics.ExportInterval
	}

	if s.Tracing.Enabled {
		d.Tracing.Enabled = true
	}
	if s.Tracing.TLS {
		d.Tracing.TLS = true
	}
	if s.Tracing.OTLPEndpoint != "" {
		d.Tracing.OTLPEndpoint = s.Tracing.OTLPEndpoint
	}
	if s.Tracing.Protocol != "" {
		d.Tracing.Protocol = s.Tracing.Protocol
	}
	if s.Tracing.ServiceName != "" {
		d.Tracing.ServiceName = s.Tracing.ServiceName
	}

	if s.Storage.GCS.CredentialsFile != "" {
		d.Storage.GCS.CredentialsFile = s.Storage.GCS.CredentialsFile
	}

	if s.JobRepository.Type != "" {
		d.JobRepository.Type = s.JobRepository.Type
	}
	if s.JobRepository.DSN != "" {
		d.JobRepository.DSN = s.JobRepository.DSN
	}
	if s.JobRepository.HistoryLimit != 0 {
		d.JobRepository.HistoryLimit = s.JobRepository.HistoryLimit
	}
	if s.JobRepository.SQLLogLevel != "" {
		d.JobRepository.SQLLogLevel = s.JobRepository.SQLLogLevel
	}
	if s.JobRepository.Pool.MaxOpenConns != 0 {
		d.JobRepository.Pool.MaxOpenConns = s.JobRepository.Pool.MaxOpenConns
	}
	if s.JobRepository.Pool.MaxIdleConns != 0 {
		d.JobRepository.Pool.MaxIdleConns = s.JobRepository.Pool.MaxIdleConns
	}
	if s.JobRepository.Pool.ConnMaxLifetimeMinutes != 0 {
		d.JobRepository.Pool.ConnMaxLifetimeMinutes = s.JobRepository.Pool.ConnMaxLifetimeMinutes
	}

	if s.Security.MaskedParameterKeys != nil {
		d.Security.MaskedParameterKeys = s.Security.MaskedParameterKeys
	}
}

func mergeBatchConfig(dest, source *BatchConfig) {
	if source.JobName != "" {
		dest.JobName = source.JobName
	}
	if source.BatchSize != 0 {
		dest.BatchSize = source.BatchSize
	}
	if source.Limit != 0 {
		dest.Limit = source.Limit
	}
	if source.Offset != 0 {
		dest.Offset = source.Offset
	}
	if source.Path != "" {
		dest.Path = source.Path
	}
	if source.RecordsPerSecond != 0 {
		dest.RecordsPerSecond = source.RecordsPerSecond
	}
	if source.DisableClassifier {
		dest.DisableClassifier = true
	}

	if source.Retry.MaxAttempts != 0 {
		dest.Retry.MaxAttempts = source.Retry.MaxAttempts
	}
	if source.Retry.InitialInterval != 0 {
		dest.Retry.InitialInterval = source.Retry.InitialInterval
	}
	if source.Retry.MaxInterval != 0 {
		dest.Retry.MaxInterval = source.Retry.MaxInterval
	}
	if source.Retry.Factor != 0 {
		dest.Retry.Factor = source.Retry.Factor
	}
	if source.Retry.RetryableExceptions != nil {
		dest.Retry.RetryableExceptions = source.Retry.RetryableExceptions
	}
}

func checkProtocol(section, protocol string) error {
	if protocol != ProtocolGRPC && protocol != ProtocolHTTP {
		return fmt.Errorf("unknown %s.protocol %q", section, protocol)
	}
	return nil
}

// checkExceptionClasses verifies every name is present in the exception registry.
func checkExceptionClasses(classNames []string, configType string) error {
	for _, name := range classNames {
		if !exception.IsErrorTypeRegistered(name) {
			return fmt.Errorf("%s configuration references unknown exception class: '%s'", configType, name)
		}
	}
	return nil
}

// loadStructFromEnv walks val and overrides fields from environment variables
// named after the upper-cased yaml tag path, e.g. GRAPHLOAD_BATCH_BATCH_SIZE.
// Slice fields take a comma separated list.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField converts value to the field's kind and stores it.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	}
	return nil
}
