package sql_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
)

func newSQLiteRepository(t *testing.T) *sql.SQLJobRepository {
	t.Helper()
	cfg := &config.JobRepositoryConfig{
		Type: config.RepositorySQLite,
		DSN:  fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Pool: config.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	}
	db, err := gormadapter.Open(cfg)
	require.NoError(t, err)
	repo, err := sql.NewSQLJobRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	je := model.NewJobExecution("ingest", 250, 1000, 5, "gs://dumps/RS_2018-02-01")
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	je.MarkAsStarted()
	je.ReadCount = 1200
	je.ProcessedCount = 1000
	je.FilterCount = 200
	je.BatchCount = 4
	je.FailedBatchCount = 1
	je.UIDCount = 750
	je.AddFailureException(errors.New("batch 2 failed"))
	je.MarkAsCompleted()
	require.NoError(t, repo.UpdateJobExecution(ctx, je))

	found, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, found.Status)
	assert.Equal(t, 1000, found.Limit)
	assert.Equal(t, 5, found.Offset)
	assert.Equal(t, 1000, found.ProcessedCount)
	assert.Equal(t, 200, found.FilterCount)
	assert.Equal(t, 750, found.UIDCount)
	assert.Equal(t, model.FlowDone, found.FlowState)
	assert.Equal(t, "Stream closed, processed 1000 out of 1000 records.", found.ExitMessage)
	assert.Equal(t, model.FailureList{"batch 2 failed"}, found.Failures)
	require.NotNil(t, found.EndTime)
}

func TestSQLiteFindRecentAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	base := time.Now().Add(-time.Hour)
	var last string
	for i := 0; i < 3; i++ {
		je := model.NewJobExecution("ingest", 10, 10, 0, "x")
		je.StartTime = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.SaveJobExecution(ctx, je))
		last = je.ID
	}

	recent, err := repo.FindRecentJobExecutions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, last, recent[0].ID)

	_, err = repo.FindJobExecutionByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrJobExecutionNotFound)

	err = repo.UpdateJobExecution(ctx, model.NewJobExecution("ingest", 1, 1, 0, "x"))
	assert.ErrorIs(t, err, repository.ErrJobExecutionNotFound)
}

func TestFindFailureIsWrapped(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gormadapter.OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}), &config.JobRepositoryConfig{Type: config.RepositoryPostgres})
	require.NoError(t, err)
	// constructed directly: AutoMigrate would issue catalog queries
	repo := sql.NewSQLJobRepositoryWithoutMigration(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "graphload_job_execution"`)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err = repo.FindJobExecutionByID(context.Background(), "abc")
	require.Error(t, err)
	var be *exception.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "SQLJobRepository.FindJobExecutionByID", be.Module)
	assert.True(t, be.IsRetryable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRecentFailureIsWrapped(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gormadapter.OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}), &config.JobRepositoryConfig{Type: config.RepositoryPostgres})
	require.NoError(t, err)
	repo := sql.NewSQLJobRepositoryWithoutMigration(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "graphload_job_execution" ORDER BY start_time DESC LIMIT`)).
		WillReturnError(errors.New("timeout"))

	_, err = repo.FindRecentJobExecutions(context.Background(), 5)
	assert.ErrorContains(t, err, "failed to list job executions")
	assert.NoError(t, mock.ExpectationsWereMet())
}
