package repository

import (
	"context"
	"errors"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
)

// ErrJobExecutionNotFound is the error returned when a JobExecution is not found.
var ErrJobExecutionNotFound = errors.New("job execution not found")

func init() {
	exception.RegisterErrorType("ErrJobExecutionNotFound", ErrJobExecutionNotFound)
}

// JobExecution persists the history of ingestion runs.
type JobExecution interface {
	// SaveJobExecution persists a new JobExecution.
	SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// UpdateJobExecution updates the state of an existing JobExecution.
	UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// FindJobExecutionByID finds a JobExecution by its ID.
	FindJobExecutionByID(ctx context.Context, executionID string) (*model.JobExecution, error)

	// FindRecentJobExecutions returns up to limit executions, newest first.
	FindRecentJobExecutions(ctx context.Context, limit int) ([]*model.JobExecution, error)
}
