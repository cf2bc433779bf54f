package datastore

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/zoneheat/zoneheat/internal/errors"
)

const componentDatastore = "datastore"

// ErrExhibitNotFound is returned when a delete matched no exhibit in the given zone.
var ErrExhibitNotFound = errors.NewStd("exhibit not found for this zone")

// categorized wraps err for the datastore component. kv holds alternating
// context keys and values; a trailing key without a value is dropped.
func categorized(err error, category errors.ErrorCategory, kv ...any) *errors.ErrorBuilder {
	b := errors.New(err).Component(componentDatastore).Category(category)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			b = b.Context(key, kv[i+1])
		}
	}
	return b
}

// dbError reports a storage failure of operation. Callers treat these as
// transient: the HTTP layer answers 503.
func dbError(err error, operation, priority string, kv ...any) error {
	b := categorized(err, errors.CategoryDatabase, append([]any{"operation", operation}, kv...)...)
	if IsLockConflict(err) {
		b = b.Context("lock_conflict", true)
	}
	if priority != "" {
		b = b.Priority(priority)
	}
	return b.Build()
}

// validationError rejects caller input before any statement runs.
func validationError(message, field string, value any) error {
	return categorized(errors.NewStd(message), errors.CategoryValidation,
		"field", field, "value", fmt.Sprint(value)).Build()
}

// notFoundError keeps sentinel matchable with errors.Is alongside the category.
func notFoundError(sentinel error, resource string, kv ...any) error {
	return categorized(sentinel, errors.CategoryNotFound, append([]any{"resource", resource}, kv...)...).Build()
}

// MySQL server error numbers for lock conflicts.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// IsLockConflict reports whether err is a transaction that lost a lock race:
// SQLite busy or locked, a MySQL deadlock or lock wait timeout. Such a write
// changed nothing and may be retried.
func IsLockConflict(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	return false
}
