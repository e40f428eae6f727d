package gorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormadapter "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/graphload/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
)

func TestDialectorsRegistered(t *testing.T) {
	for _, typ := range []string{config.RepositorySQLite, config.RepositoryPostgres, config.RepositoryMySQL} {
		factory, err := gormadapter.GetDialectorFactory(typ)
		require.NoError(t, err, typ)

		_, err = factory("")
		assert.Error(t, err, "empty DSN should be rejected for %s", typ)
	}

	_, err := gormadapter.GetDialectorFactory("redis")
	assert.ErrorContains(t, err, "no dialector registered")
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	cfg := &config.JobRepositoryConfig{
		Type: config.RepositorySQLite,
		DSN:  "file::memory:?cache=shared",
		Pool: config.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	}
	db, err := gormadapter.Open(cfg)
	require.NoError(t, err)
	defer gormadapter.Close(db)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
