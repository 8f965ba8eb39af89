package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrMetaMissing is returned when a topic directory exists but holds no
	// metadata record. It matches ErrNotFound.
	ErrMetaMissing = fmt.Errorf("metadata %w", ErrNotFound)

	// ErrCorrupt is returned when a record exists but cannot be decoded
	ErrCorrupt = errors.New("corrupt record")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
