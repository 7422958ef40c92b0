// Package auth owns the client-side session lifecycle: the persisted
// credentials, the startup validation against the portal, the
// login/register/logout operations and the role gate.
package auth

import "github.com/portalhq/portal-cli/model"

// Status is the session lifecycle state.
type Status string

const (
	// StatusInitializing means startup validation has not finished.
	// Gated surfaces must grant nothing while in this state.
	StatusInitializing Status = "initializing"

	// StatusAnonymous means no credentials are held.
	StatusAnonymous Status = "anonymous"

	// StatusAuthenticated means a token and profile are present,
	// either freshly validated or provisionally trusted from cache.
	StatusAuthenticated Status = "authenticated"

	// StatusInvalid means a token was present but rejected and no
	// cached profile could back it up. Treated like anonymous by the
	// guard; it exists so callers can tell "never logged in" from
	// "session expired".
	StatusInvalid Status = "invalid"
)

// Session is the in-process authentication state. Only the Service and
// the Validator mutate it; everything else reads.
type Session struct {
	Token  string
	User   *model.User
	Status Status
}

// IsAuthenticated reports whether the session holds usable credentials.
func (s *Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.User != nil
}

// Anonymous returns an empty, logged-out session.
func Anonymous() *Session {
	return &Session{Status: StatusAnonymous}
}
