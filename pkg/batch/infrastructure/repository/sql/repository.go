package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// SQLJobRepository implements repository.JobRepository on top of GORM.
type SQLJobRepository struct {
	db *gorm.DB
}

// NewSQLJobRepository creates the repository and migrates its table.
func NewSQLJobRepository(db *gorm.DB) (*SQLJobRepository, error) {
	if err := db.AutoMigrate(&JobExecutionEntity{}); err != nil {
		return nil, exception.NewBatchError("SQLJobRepository", "failed to migrate job execution table", err, false, false)
	}
	return &SQLJobRepository{db: db}, nil
}

// NewSQLJobRepositoryWithoutMigration wraps db without touching its schema.
func NewSQLJobRepositoryWithoutMigration(db *gorm.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db}
}

// SaveJobExecution inserts a new JobExecution.
func (r *SQLJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	const op = "SQLJobRepository.SaveJobExecution"
	entity := fromDomainJobExecution(jobExecution)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return exception.NewBatchError(op, fmt.Sprintf("failed to save JobExecution (ID: %s)", jobExecution.ID), err, false, true)
	}
	logger.Debugf("%s: saved JobExecution (ID: %s).", op, jobExecution.ID)
	return nil
}

// UpdateJobExecution overwrites every column of an existing JobExecution.
func (r *SQLJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	const op = "SQLJobRepository.UpdateJobExecution"
	jobExecution.LastUpdated = time.Now()
	entity := fromDomainJobExecution(jobExecution)

	res := r.db.WithContext(ctx).
		Model(&JobExecutionEntity{}).
		Where("id = ?", entity.ID).
		Select("*").
		Updates(entity)
	if res.Error != nil {
		return exception.NewBatchError(op, fmt.Sprintf("failed to update JobExecution (ID: %s)", jobExecution.ID), res.Error, false, true)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: JobExecution (ID: %s): %w", op, jobExecution.ID, repository.ErrJobExecutionNotFound)
	}
	return nil
}

// FindJobExecutionByID loads one JobExecution.
func (r *SQLJobRepository) FindJobExecutionByID(ctx context.Context, executionID string) (*model.JobExecution, error) {
	const op = "SQLJobRepository.FindJobExecutionByID"
	var entity JobExecutionEntity
	err := r.db.WithContext(ctx).Where("id = ?", executionID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobExecutionNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("failed to find JobExecution by ID: %s", executionID), err, false, true)
	}
	return toDomainJobExecution(&entity), nil
}

// FindRecentJobExecutions returns up to limit executions, newest first.
func (r *SQLJobRepository) FindRecentJobExecutions(ctx context.Context, limit int) ([]*model.JobExecution, error) {
	const op = "SQLJobRepository.FindRecentJobExecutions"
	var entities []JobExecutionEntity
	q := r.db.WithContext(ctx).Order("start_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, exception.NewBatchError(op, "failed to list job executions", err, false, true)
	}
	executions := make([]*model.JobExecution, 0, len(entities))
	for i := range entities {
		executions = append(executions, toDomainJobExecution(&entities[i]))
	}
	return executions, nil
}

// Close closes the underlying connection pool.
func (r *SQLJobRepository) Close() error {
	return gormadapter.Close(r.db)
}

var _ repository.JobRepository = (*SQLJobRepository)(nil)
