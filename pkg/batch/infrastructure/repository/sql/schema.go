// Package sql persists job executions in a relational database through GORM.
package sql

import (
	"time"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// JobExecutionEntity is the persistence schema of a JobExecution.
type JobExecutionEntity struct {
	ID               string    `gorm:"primaryKey;size:36"`
	JobName          string    `gorm:"size:255;index"`
	Status           string    `gorm:"size:20"`
	StartTime        time.Time `gorm:"index"`
	EndTime          *time.Time
	BatchSize        int
	RecordLimit      int    `gorm:"column:record_limit"`
	RecordOffset     int    `gorm:"column:record_offset"`
	Path             string `gorm:"size:1024"`
	ReadCount        int
	ProcessedCount   int
	FilterCount      int
	BatchCount       int
	FailedBatchCount int
	UIDCount         int               `gorm:"column:uid_count"`
	FlowState        string            `gorm:"size:20"`
	ExitMessage      string            `gorm:"type:text"`
	Failures         model.FailureList `gorm:"type:text"`
	LastUpdated      time.Time
}

// TableName returns the table job executions are stored in.
func (JobExecutionEntity) TableName() string {
	return "graphload_job_execution"
}
