package store

import "errors"

var (
	// ErrNotFound is returned when no snapshot matches the request.
	ErrNotFound = errors.New("snapshot not found")

	// ErrDatabaseNotFound is returned by Open when the database file is
	// missing and creation was not requested.
	ErrDatabaseNotFound = errors.New("history database not found")
)
