package usecase

import (
	"context"
	"fmt"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// JobExplorer reads job execution history.
type JobExplorer interface {
	// GetJobExecution retrieves a JobExecution by its ID.
	GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error)

	// GetRecentJobExecutions returns up to limit executions, newest first.
	GetRecentJobExecutions(ctx context.Context, limit int) ([]*model.JobExecution, error)
}

// SimpleJobExplorer queries the JobRepository.
type SimpleJobExplorer struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobExplorer creates a new instance of SimpleJobExplorer.
func NewSimpleJobExplorer(jobRepository repository.JobRepository) *SimpleJobExplorer {
	return &SimpleJobExplorer{jobRepository: jobRepository}
}

// GetJobExecution retrieves a JobExecution by its ID.
func (e *SimpleJobExplorer) GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error) {
	jobExecution, err := e.jobRepository.FindJobExecutionByID(ctx, executionID)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", fmt.Sprintf("Failed to retrieve JobExecution (ID: %s)", executionID), err, false, false)
	}
	logger.Debugf("Retrieved JobExecution (ID: %s) from JobRepository.", executionID)
	return jobExecution, nil
}

// GetRecentJobExecutions returns up to limit executions, newest first.
func (e *SimpleJobExplorer) GetRecentJobExecutions(ctx context.Context, limit int) ([]*model.JobExecution, error) {
	executions, err := e.jobRepository.FindRecentJobExecutions(ctx, limit)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", "Failed to list job executions", err, false, false)
	}
	logger.Debugf("Retrieved %d JobExecutions.", len(executions))
	return executions, nil
}

var _ JobExplorer = (*SimpleJobExplorer)(nil)
