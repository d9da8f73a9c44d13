package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict: resource already exists")
	ErrInternal       = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Domain rule violations. These are returned by the services as structured
// results and translated into user-facing messages by the handlers.
var (
	// ErrInvalidTransition is returned when an agent status change is
	// attempted from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyOwned is returned when a buyer already holds a purchase for
	// the same agent version, regardless of the purchase status.
	ErrAlreadyOwned = errors.New("agent version already purchased")

	// ErrInvalidRating is returned when a review rating falls outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
