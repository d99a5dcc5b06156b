// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"errors"
	"strings"

	sqlite "modernc.org/sqlite"
)

// SQLite primary result codes (https://sqlite.org/rescode.html). Extended
// codes carry the primary code in the low byte.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() & 0xff, true
	}
	return 0, false
}

// IsSQLiteBusyError reports whether err is SQLITE_BUSY: the database is
// held by another connection. Falls back to message matching for errors
// that lost their type through intermediate layers.
func IsSQLiteBusyError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqliteBusy
	}
	return err != nil && strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLockedError reports whether err is SQLITE_LOCKED.
func IsSQLiteLockedError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqliteLocked
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflictError reports whether err is either SQLITE_BUSY or
// SQLITE_LOCKED. Both typically warrant a retry.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	return IsSQLiteBusyError(err) || IsSQLiteLockedError(err)
}
