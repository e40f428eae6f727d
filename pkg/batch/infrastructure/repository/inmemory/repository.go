// Package inmemory provides an in-memory implementation of the JobRepository interface.
// History lives only as long as the process, which is enough for single runs and tests.
package inmemory

import (
	"sync"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
)

// InMemoryJobRepository holds job executions in a map guarded by a mutex.
type InMemoryJobRepository struct {
	jobExecutions map[string]*model.JobExecution
	mu            sync.RWMutex
}

// NewInMemoryJobRepository creates an empty repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobExecutions: make(map[string]*model.JobExecution),
	}
}

// Close always returns nil.
func (r *InMemoryJobRepository) Close() error {
	return nil
}

var _ repository.JobRepository = (*InMemoryJobRepository)(nil)
