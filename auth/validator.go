package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/portalhq/portal-cli/api"
)

// DefaultStaleProfileTTL bounds how long a cached profile may stand in
// for a live validation when the portal cannot be reached. Past this
// age the stored credentials are dropped instead of trusted.
const DefaultStaleProfileTTL = 24 * time.Hour

// Validator reconciles the persisted credentials against the portal's
// current-user endpoint. It runs once at startup, before anything
// role-gated executes.
type Validator struct {
	store    *TokenStore
	client   *api.Client
	staleTTL time.Duration
	log      *zap.Logger
}

// NewValidator creates a Validator. A staleTTL of zero selects
// DefaultStaleProfileTTL.
func NewValidator(store *TokenStore, client *api.Client, staleTTL time.Duration, log *zap.Logger) *Validator {
	if staleTTL <= 0 {
		staleTTL = DefaultStaleProfileTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{store: store, client: client, staleTTL: staleTTL, log: log}
}

// Restore produces the session for this run.
//
// No stored token: anonymous. A stored token is probed against the
// portal; on success the refreshed profile is persisted back and the
// session is authenticated. On any failure (network error, rejection,
// malformed payload) the cached profile is trusted instead, provided
// one exists and is younger than the stale bound, so a flaky
// connection does not log the user out. Only when there is nothing to
// fall back on are the credentials cleared.
func (v *Validator) Restore(ctx context.Context) *Session {
	creds := v.store.Load()
	if creds == nil {
		return Anonymous()
	}

	user, err := v.client.CurrentUser(ctx, creds.Token)
	if err == nil {
		// Keep the stored snapshot fresh for the next stale-fallback.
		if saveErr := v.store.Save(creds.Token, user); saveErr != nil {
			v.log.Warn("failed to refresh stored profile", zap.Error(saveErr))
		}
		return &Session{Token: creds.Token, User: user, Status: StatusAuthenticated}
	}

	age := time.Since(creds.SavedAt)
	if age <= v.staleTTL {
		v.log.Warn("validation failed, trusting cached profile",
			zap.Error(err),
			zap.Duration("profile_age", age))
		cached := creds.User
		return &Session{Token: creds.Token, User: &cached, Status: StatusAuthenticated}
	}

	v.log.Info("stored session unusable, clearing credentials", zap.Error(err))
	if clearErr := v.store.Clear(); clearErr != nil {
		v.log.Warn("failed to clear credentials", zap.Error(clearErr))
	}
	return &Session{Status: StatusInvalid}
}
