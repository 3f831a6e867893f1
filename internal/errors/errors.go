package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session subsystem
var (
	// Token errors
	ErrDecodeFailure = errors.New("token decode failure")

	// Authentication errors
	ErrServiceRejected = errors.New("rejected by authentication service")
	ErrRoleMismatch    = errors.New("token does not carry the expected role")
	ErrNetwork         = errors.New("network error")
	ErrUnknownRole     = errors.New("unknown role")

	// Session errors
	ErrSessionExpired    = errors.New("session expired")
	ErrIncompleteSession = errors.New("incomplete session")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
