package database

import "errors"

// Domain errors translated to HTTP status codes at the web boundary.
var (
	// ErrUserNotFound is returned when a user id or email resolves to nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when creating a user with an email that
	// is already registered, either by the eager lookup or by the UNIQUE
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")
)
