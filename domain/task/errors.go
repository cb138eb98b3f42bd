package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("task not found")

	// ErrInvalid is matched by every *ValidationError.
	ErrInvalid = errors.New("invalid task")

	// ErrStoreUnavailable is returned when the database could not be initialized.
	ErrStoreUnavailable = errors.New("task store unavailable")
)

// ValidationError reports a field that failed its constraints.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// NotFoundError names the id that does not exist.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Task with ID %d not found.", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnavailableError reports why the task store could not be used.
type UnavailableError struct {
	Cause string
}

func (e *UnavailableError) Error() string {
	if e.Cause == "" {
		return ErrStoreUnavailable.Error()
	}
	return ErrStoreUnavailable.Error() + ": " + e.Cause
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
