// Package testutil provides shared fixtures for zoneheat tests: a silent
// logger, a migrated SQLite database and channel wait helpers.
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zoneheat/zoneheat/internal/conf"
	"github.com/zoneheat/zoneheat/internal/datastore"
	"github.com/zoneheat/zoneheat/internal/logger"
)

// Common test timeout constants.
const (
	// DefaultTestTimeout is the standard timeout for most async test operations.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is for operations expected to complete quickly.
	ShortTestTimeout = 1 * time.Second
)

// DiscardLogger returns a logger that drops everything below error and
// writes nothing.
func DiscardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

// SQLiteSettings returns settings for a SQLite file inside t.TempDir().
// A file database lets concurrent transactions see one schema.
func SQLiteSettings(t *testing.T) *conf.DatabaseSettings {
	t.Helper()
	return &conf.DatabaseSettings{
		Driver:       conf.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "zoneheat_test.db"),
		MaxOpenConns: 4,
	}
}

// OpenSQLite opens and migrates a fresh SQLite database closed at test end.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := datastore.Open(SQLiteSettings(t), DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = datastore.Close(db) })
	require.NoError(t, datastore.Migrate(context.Background(), db))
	return db
}

// WaitForChannel waits for a signal on the channel or fails after timeout.
func WaitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(t, msg)
	}
}

// WaitForError receives one error from ch or fails after timeout.
func WaitForError(t *testing.T, ch <-chan error, timeout time.Duration) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		require.Fail(t, "timed out waiting for error channel")
		return nil
	}
}
