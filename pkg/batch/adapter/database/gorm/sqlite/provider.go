// Package sqlite registers the SQLite dialector with the gorm adapter.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

func init() {
	gormadapter.RegisterDialector(config.RepositorySQLite, func(dsn string) (gorm.Dialector, error) {
		if dsn == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(dsn), nil
	})
}
