package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrObjectNotFound is returned by ObjectStore implementations when the stored object is already gone.
	ErrObjectNotFound = errors.New("object not found")
)
