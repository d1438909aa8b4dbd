package core

import "errors"

var (
	// ErrInvalidConfig is returned before any data is touched.
	ErrInvalidConfig = errors.New("invalid pipeline configuration")

	// ErrColumnNotFound means a rule's column is absent from the dataset.
	ErrColumnNotFound = errors.New("column not found")

	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrPassPanicked wraps a panic recovered from inside a pass.
	ErrPassPanicked = errors.New("pass panicked")
)
