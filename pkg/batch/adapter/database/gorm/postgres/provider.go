// Package postgres registers the PostgreSQL dialector with the gorm adapter.
package postgres

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

func init() {
	gormadapter.RegisterDialector(config.RepositoryPostgres, func(dsn string) (gorm.Dialector, error) {
		if dsn == "" {
			return nil, errors.New("PostgreSQL DSN cannot be empty")
		}
		return postgres.Open(dsn), nil
	})
}
