package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown agent or service identifiers.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a request is rejected as malformed.
	ErrValidation = errors.New("validation error")
	// ErrImmutable is returned when a default agent or its bound service
	// would be edited or removed.
	ErrImmutable = errors.New("immutable record")
)

// NotFoundf wraps ErrNotFound with a reason.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validationf wraps ErrValidation with a reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Immutablef wraps ErrImmutable with a reason.
func Immutablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrImmutable, fmt.Sprintf(format, args...))
}
