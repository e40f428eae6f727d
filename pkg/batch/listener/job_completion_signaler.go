// Package listener holds job-level listeners and aggregates the listener modules.
package listener

import (
	"context"
	"sync"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// JobCompletionSignaler closes Done when a job finishes, successfully or not.
type JobCompletionSignaler struct {
	done chan struct{}
	once sync.Once
}

// NewJobCompletionSignaler creates a signaler with an open Done channel.
func NewJobCompletionSignaler() *JobCompletionSignaler {
	return &JobCompletionSignaler{done: make(chan struct{})}
}

// Done is closed after the first AfterJob.
func (l *JobCompletionSignaler) Done() <-chan struct{} {
	return l.done
}

// BeforeJob does nothing.
func (l *JobCompletionSignaler) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {}

// AfterJob closes the Done channel once.
func (l *JobCompletionSignaler) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.once.Do(func() {
		logger.Debugf("JobCompletionSignaler: job '%s' (ID: %s) finished with status %s.", jobExecution.JobName, jobExecution.ID, jobExecution.Status)
		close(l.done)
	})
}

var _ port.JobExecutionListener = (*JobCompletionSignaler)(nil)
