package repository

import "errors"

var (
	// ErrNotFound means no record matches the identifier or key.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID means the identifier is not a valid key for the store.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrDuplicate means a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)
