package inmemory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
)

// SaveJobExecution stores a copy of a new JobExecution.
// It returns an error if a JobExecution with the same ID already exists.
func (r *InMemoryJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; exists {
		return fmt.Errorf("JobExecution with ID %s already exists", jobExecution.ID)
	}
	r.jobExecutions[jobExecution.ID] = clone(jobExecution)
	return nil
}

// UpdateJobExecution replaces the stored copy and stamps LastUpdated.
func (r *InMemoryJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; !exists {
		return fmt.Errorf("JobExecution with ID %s not found for update: %w", jobExecution.ID, repository.ErrJobExecutionNotFound)
	}
	jobExecution.LastUpdated = time.Now()
	r.jobExecutions[jobExecution.ID] = clone(jobExecution)
	return nil
}

// FindJobExecutionByID returns a copy of the stored JobExecution.
func (r *InMemoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	je, ok := r.jobExecutions[id]
	if !ok {
		return nil, repository.ErrJobExecutionNotFound
	}
	return clone(je), nil
}

// FindRecentJobExecutions returns up to limit executions ordered by StartTime, newest first.
// A non-positive limit returns all of them.
func (r *InMemoryJobRepository) FindRecentJobExecutions(ctx context.Context, limit int) ([]*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executions := make([]*model.JobExecution, 0, len(r.jobExecutions))
	for _, je := range r.jobExecutions {
		executions = append(executions, clone(je))
	}
	sort.Slice(executions, func(i, j int) bool {
		return executions[j].StartTime.Before(executions[i].StartTime)
	})
	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}
	return executions, nil
}

// clone copies je so callers cannot modify stored state.
func clone(je *model.JobExecution) *model.JobExecution {
	c := *je
	c.Failures = append(model.FailureList{}, je.Failures...)
	if je.EndTime != nil {
		end := *je.EndTime
		c.EndTime = &end
	}
	return &c
}
