// Package repository selects the job repository implementation from configuration.
package repository

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	domain "github.com/tigerroll/graphload/pkg/batch/core/domain/repository"
	"github.com/tigerroll/graphload/pkg/batch/infrastructure/repository/inmemory"
	"github.com/tigerroll/graphload/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// NewJobRepository opens the repository named by cfg.Type.
func NewJobRepository(cfg *config.JobRepositoryConfig) (domain.JobRepository, error) {
	switch cfg.Type {
	case "", config.RepositoryInMemory:
		logger.Debugf("Using in-memory job repository.")
		return inmemory.NewInMemoryJobRepository(), nil
	case config.RepositorySQLite, config.RepositoryPostgres, config.RepositoryMySQL:
		db, err := gormadapter.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening %s job repository: %w", cfg.Type, err)
		}
		repo, err := sql.NewSQLJobRepository(db)
		if err != nil {
			_ = gormadapter.Close(db)
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown job repository type %q", cfg.Type)
	}
}

// Module provides domain.JobRepository and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(func(lc fx.Lifecycle, cfg *config.JobRepositoryConfig) (domain.JobRepository, error) {
		repo, err := NewJobRepository(cfg)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return repo.Close()
			},
		})
		return repo, nil
	}),
)
