package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	localCache "github.com/warblr-net/warbler/pkg/internal/cache"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// useTestDatabase points database.C at a fresh in-memory sqlite database and
// resets the cache so state cannot leak between tests.
func useTestDatabase(t *testing.T) {
	t.Helper()

	require.NoError(t, localCache.NewStore())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	source, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	inner, err := source.DB()
	require.NoError(t, err)
	inner.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(source))
	database.C = source
}
