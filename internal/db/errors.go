package db

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsConstraintViolation reports whether err was caused by a UNIQUE or
// PRIMARY KEY constraint rejecting a write.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
		return false
	}
	// remote libsql connections only surface the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
