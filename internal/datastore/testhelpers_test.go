package datastore

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/logger"
)

func discardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

// newTestDB opens a migrated file-backed SQLite database. A file is used rather
// than :memory: so concurrent transactions contend for one real database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(&conf.DatabaseSettings{
		Driver:       conf.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "zoneheat_test.db"),
		MaxOpenConns: 4,
	}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func exhibitNames(exhibits []Exhibit) []string {
	names := make([]string, len(exhibits))
	for i, e := range exhibits {
		names[i] = e.Name
	}
	return names
}
