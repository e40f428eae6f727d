package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// JobStatus represents the state of a job execution.
type JobStatus string

const (
	BatchStatusStarting  JobStatus = "STARTING"
	BatchStatusStarted   JobStatus = "STARTED"
	BatchStatusCompleted JobStatus = "COMPLETED"
	BatchStatusFailed    JobStatus = "FAILED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsFinished checks if the JobStatus represents a finished state.
func (s JobStatus) IsFinished() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// FailureList holds a list of error messages.
type FailureList []string

// Value implements driver.Valuer, storing the list as a JSON array.
func (fl FailureList) Value() (driver.Value, error) {
	if fl == nil {
		return "[]", nil
	}
	data, err := json.Marshal(fl)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (fl *FailureList) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*fl = FailureList{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for FailureList: %T", value)
	}
	if len(b) == 0 {
		*fl = FailureList{}
		return nil
	}
	if err := json.Unmarshal(b, fl); err != nil {
		return fmt.Errorf("failed to unmarshal FailureList JSON: %w", err)
	}
	return nil
}

// JobExecution is the record of one ingestion run.
type JobExecution struct {
	ID        string
	JobName   string
	Status    JobStatus
	StartTime time.Time
	EndTime   *time.Time

	// Run parameters.
	BatchSize int
	Limit     int
	Offset    int
	Path      string

	// ReadCount is the number of decoded lines.
	ReadCount int
	// ProcessedCount is the number of admitted records (records-seen).
	// It never exceeds Limit.
	ProcessedCount int
	// FilterCount is the number of records rejected by the classifier.
	FilterCount      int
	BatchCount       int
	FailedBatchCount int
	UIDCount         int

	FlowState   FlowState
	ExitMessage string
	Failures    FailureList
	LastUpdated time.Time
}

// NewID generates a new unique ID.
func NewID() string {
	return uuid.New().String()
}

// NewJobExecution creates a job execution in the STARTING state.
func NewJobExecution(jobName string, batchSize, limit, offset int, path string) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:          NewID(),
		JobName:     jobName,
		Status:      BatchStatusStarting,
		StartTime:   now,
		BatchSize:   batchSize,
		Limit:       limit,
		Offset:      offset,
		Path:        path,
		FlowState:   FlowConsuming,
		Failures:    FailureList{},
		LastUpdated: now,
	}
}

// Summary is the completion message reported for the job.
func (je *JobExecution) Summary() string {
	return fmt.Sprintf("Stream closed, processed %d out of %d records.", je.ProcessedCount, je.Limit)
}

// Duration returns the elapsed run time, up to now for unfinished jobs.
func (je *JobExecution) Duration() time.Duration {
	if je.EndTime == nil {
		return time.Since(je.StartTime)
	}
	return je.EndTime.Sub(je.StartTime)
}

func isValidJobTransition(current, next JobStatus) bool {
	switch current {
	case BatchStatusStarting:
		return next == BatchStatusStarted || next == BatchStatusFailed
	case BatchStatusStarted:
		return next == BatchStatusCompleted || next == BatchStatusFailed
	default:
		return false
	}
}

// TransitionTo changes Status if the transition is allowed.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidJobTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): Invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	je.LastUpdated = time.Now()
	return nil
}

// MarkAsStarted updates the JobExecution status to STARTED.
func (je *JobExecution) MarkAsStarted() {
	if err := je.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update JobExecution status to STARTED: %v", err)
		je.Status = BatchStatusStarted
	}
}

// MarkAsCompleted updates the status to COMPLETED and records the summary.
func (je *JobExecution) MarkAsCompleted() {
	if err := je.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update JobExecution status to COMPLETED: %v", err)
		je.Status = BatchStatusCompleted
	}
	je.finish()
	je.ExitMessage = je.Summary()
}

// MarkAsFailed updates the status to FAILED and records err.
func (je *JobExecution) MarkAsFailed(err error) {
	if tErr := je.TransitionTo(BatchStatusFailed); tErr != nil {
		logger.Warnf("Could not update JobExecution status to FAILED: %v", tErr)
		je.Status = BatchStatusFailed
	}
	je.finish()
	if err != nil {
		je.AddFailureException(err)
		je.ExitMessage = err.Error()
	}
}

func (je *JobExecution) finish() {
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
	je.FlowState = FlowDone
}

// AddFailureException adds error information, ignoring duplicates.
func (je *JobExecution) AddFailureException(err error) {
	if err == nil {
		return
	}
	errMsg := exception.ExtractErrorMessage(err)
	for _, existing := range je.Failures {
		if existing == errMsg {
			return
		}
	}
	je.Failures = append(je.Failures, errMsg)
	je.LastUpdated = time.Now()
}
