package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task storage and validation.
var (
	// ErrStorageUnavailable is returned when the task table cannot be opened or read.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageWrite is returned when a create, update or delete fails to persist.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrNotFound is returned when the target task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrValidation is returned when task input is rejected before storage.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFilter is returned for an unknown status filter.
	ErrInvalidFilter = errors.New("invalid status filter")
)

// Validation failures, all matching ErrValidation.
var (
	ErrNameRequired       = fmt.Errorf("%w: Task name is required", ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: task name must be at most %d characters", ErrValidation, MaxNameLength)
	ErrDescriptionTooLong = fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
)
