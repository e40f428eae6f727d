// Package mysql registers the MySQL dialector with the gorm adapter.
package mysql

import (
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

func init() {
	gormadapter.RegisterDialector(config.RepositoryMySQL, func(dsn string) (gorm.Dialector, error) {
		if dsn == "" {
			return nil, errors.New("MySQL DSN cannot be empty")
		}
		return mysql.Open(dsn), nil
	})
}
