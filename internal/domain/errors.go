package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Controllers map these to HTTP statuses:
// not found -> 404, conflict -> 409, validation -> 400.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid input")
)

// NotFoundf returns an error wrapping ErrNotFound with a formatted message
// identifying the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Conflictf returns an error wrapping ErrConflict with a formatted message
// identifying the violated invariant.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Validationf returns an error wrapping ErrValidation with a formatted message
// identifying the offending input.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
