package config

import (
	"fmt"

	"github.com/tigerroll/graphload/pkg/batch/support/util/configbinder"
)

// IngestOptions are the per-run parameters of a load job.
// They start from BatchConfig and may be overridden by job parameters.
type IngestOptions struct {
	BatchSize         int     `yaml:"batch_size"`
	Limit             int     `yaml:"limit"`
	Offset            int     `yaml:"offset"`
	Path              string  `yaml:"path"`
	RecordsPerSecond  float64 `yaml:"records_per_second"`
	DisableClassifier bool    `yaml:"disable_classifier"`
}

// IngestOptions returns the run parameters configured for the batch.
func (c BatchConfig) IngestOptions() IngestOptions {
	return IngestOptions{
		BatchSize:         c.BatchSize,
		Limit:             c.Limit,
		Offset:            c.Offset,
		Path:              c.Path,
		RecordsPerSecond:  c.RecordsPerSecond,
		DisableClassifier: c.DisableClassifier,
	}
}

// ApplyParams overrides options from "key=value" job parameters such as
// "batch_size=50". Unknown keys are rejected.
func (o *IngestOptions) ApplyParams(params []string) error {
	props, err := configbinder.ParseAssignments(params)
	if err != nil {
		return err
	}
	return configbinder.BindProperties(props, o)
}

// Validate checks the options before any source is opened.
func (o IngestOptions) Validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", o.BatchSize)
	}
	if o.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", o.Limit)
	}
	if o.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", o.Offset)
	}
	if o.Path == "" {
		return fmt.Errorf("path must not be empty")
	}
	if o.RecordsPerSecond < 0 {
		return fmt.Errorf("records_per_second must not be negative, got %g", o.RecordsPerSecond)
	}
	return nil
}
