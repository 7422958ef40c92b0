package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes callers branch on.
var (
	// ErrInvalidCredentials is returned when the portal rejects a
	// login email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRegistrationRejected is returned when the portal refuses a
	// registration (for example a duplicate email). The server's
	// message is preserved in the wrapping error.
	ErrRegistrationRejected = errors.New("registration rejected")

	// ErrUnauthorized is returned when a bearer token is missing,
	// expired or revoked.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is an HTTP-level failure from the portal API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portal API error: status %d", e.Status)
	}
	return fmt.Sprintf("portal API error: status %d: %s", e.Status, e.Message)
}

// IsTransient reports whether err looks like a transport or server
// failure rather than a definitive rejection of the request. Reads
// degrade to empty results on transient errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// Anything that never produced an HTTP status is a transport
	// failure: DNS, refused connection, timeout.
	return !errors.Is(err, ErrUnauthorized) &&
		!errors.Is(err, ErrInvalidCredentials) &&
		!errors.Is(err, ErrRegistrationRejected) &&
		!errors.Is(err, ErrNotFound)
}
