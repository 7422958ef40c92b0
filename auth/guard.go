package auth

import "github.com/portalhq/portal-cli/model"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow grants access.
	Allow Decision = iota
	// Loading means the session is still initializing; show a wait
	// state and grant nothing.
	Loading
	// RequireLogin means no usable session exists; the caller should
	// be sent to login.
	RequireLogin
	// Deny means the session is authenticated but lacks the required
	// role.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RequireLogin:
		return "require-login"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Check decides whether the session may access a surface requiring the
// given role. An empty required role means any authenticated session
// passes. Admin satisfies the editor requirement; nothing but admin
// satisfies the admin requirement.
//
// Check is pure: it reads the session it is handed and caches nothing,
// so a role change takes effect on the very next call.
func Check(sess *Session, required model.Role) Decision {
	if sess == nil {
		return RequireLogin
	}

	switch sess.Status {
	case StatusInitializing:
		return Loading
	case StatusAuthenticated:
		// fall through to the role check below
	default:
		// anonymous and invalid both mean "log in first"
		return RequireLogin
	}

	if !sess.IsAuthenticated() {
		return RequireLogin
	}

	switch required {
	case "", model.RoleUser:
		return Allow
	case model.RoleAdmin:
		if sess.User.IsAdmin() {
			return Allow
		}
		return Deny
	case model.RoleEditor:
		if sess.User.IsEditor() {
			return Allow
		}
		return Deny
	}
	return Deny
}
