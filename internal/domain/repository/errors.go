package repository

import "errors"

var (
	// ErrNotFound is returned by single-record lookups and keyed updates
	// when no record matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a unique field.
	ErrDuplicate = errors.New("duplicate")
)
