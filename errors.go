package jwtbearer

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by Token before any successful exchange.
	ErrNotAuthenticated = errors.New("not authenticated: no token has been acquired")

	// ErrRevoked is returned once the managed token has been revoked.
	ErrRevoked = errors.New("token has been revoked")
)

// AcquisitionError is returned when an exchange cycle exhausts its backoff
// budget. A previously acquired token, if any, remains usable.
type AcquisitionError struct {
	Attempts int
	Cause    error
}

// Error implements error.
func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("token acquisition failed after %v attempt(s): %v", e.Attempts, e.Cause)
}

// Unwrap returns the last failure cause of the cycle.
func (e *AcquisitionError) Unwrap() error {
	return e.Cause
}

// RevocationError is returned when the revocation request could not be
// delivered. The local token is not marked revoked in that case.
type RevocationError struct {
	Cause error
}

// Error implements error.
func (e *RevocationError) Error() string {
	return fmt.Sprintf("token revocation failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RevocationError) Unwrap() error {
	return e.Cause
}
