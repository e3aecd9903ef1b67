// Package portalerr defines the error taxonomy shared by every domain
// service. Handlers translate these sentinels to HTTP statuses; nothing in
// the core is fatal to the process.
package portalerr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrSlotConflict marks the expected booking race outcome: the requested
	// slot is no longer free. Callers re-fetch slots and may retry.
	ErrSlotConflict = errors.New("slot conflict")

	// ErrForbidden marks an authorization failure, distinct from validation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an absent referenced entity.
	ErrNotFound = errors.New("not found")

	// State guards. Terminal for the call, distinguishable from generic
	// validation so callers can show a specific message.
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	ErrAlreadyDispensed = errors.New("prescription already dispensed")
	ErrAlreadyCompleted = errors.New("lab order already completed")
	ErrNotReferred      = errors.New("prescription not referred to pharmacy")
)

// HTTPStatus maps a taxonomy error to its response status. Unrecognized
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrAlreadyDispensed),
		errors.Is(err, ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrNotReferred):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
