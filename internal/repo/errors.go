package repo

import "errors"

var (
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrStoreLocked is returned when the user file cannot be written, usually because
	// another program holds it open.
	ErrStoreLocked = errors.New("user store is locked by another process")
	// ErrInvalidName is returned for artifact names that are empty after sanitizing or
	// do not name a plain file of the manager's kind.
	ErrInvalidName = errors.New("invalid name: use letters, digits, '_' or '-'")
	// ErrNotFound is returned when a named artifact does not exist.
	ErrNotFound = errors.New("not found")
)
