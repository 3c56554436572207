package service

import (
	"errors"
	"fmt"

	"github.com/templui/postline/internal/validation"
)

// ErrNotFound is returned when a post does not exist or its id is malformed.
var ErrNotFound = errors.New("post not found")

// ValidationError is malformed client input, rejected before any side effect.
type ValidationError = validation.FieldError

// NotFoundError names the id that missed.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("post not found: %s", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StagingError is a failure to write the upload to temporary storage.
type StagingError struct {
	Err error
}

func (e *StagingError) Error() string { return fmt.Sprintf("staging failed: %v", e.Err) }
func (e *StagingError) Unwrap() error { return e.Err }

// UploadError is a failed or non-success transfer to the media store.
// Status is the remote HTTP status, 0 when none was received.
type UploadError struct {
	Status int
	Err    error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload failed: %v", e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError is a failed database write or read.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence failed: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStaging(err error) bool {
	var target *StagingError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target *UploadError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
