package auth

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-campus-session/internal/errors"
)

// Reason classifies why a login or registration failed.
type Reason string

const (
	ServiceRejected Reason = "service_rejected"
	RoleMismatch    Reason = "role_mismatch"
	NetworkError    Reason = "network_error"
)

var (
	ErrServiceRejected = apperrors.ErrServiceRejected
	ErrRoleMismatch    = apperrors.ErrRoleMismatch
	ErrNetwork         = apperrors.ErrNetwork
)

// AuthFailure is surfaced to the user; the session is left untouched.
type AuthFailure struct {
	Reason  Reason
	Message string // User facing text
	Err     error  // Underlying cause, if any
}

func (f *AuthFailure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Reason, f.Message)
	}
	return string(f.Reason)
}

func (f *AuthFailure) Unwrap() []error {
	errs := []error{f.sentinel()}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

func (f *AuthFailure) sentinel() error {
	switch f.Reason {
	case RoleMismatch:
		return ErrRoleMismatch
	case NetworkError:
		return ErrNetwork
	}
	return ErrServiceRejected
}
