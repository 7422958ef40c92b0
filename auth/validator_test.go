package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/model"
)

// meHandler serves GET /auth/me for a fixed token.
func meHandler(t *testing.T, wantToken string, user *model.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+wantToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"invalid token"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user})
	}
}

func TestValidator_NoCredentials(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	client := api.New("http://127.0.0.1:1") // never reached

	v := NewValidator(store, client, 0, nil)
	sess := v.Restore(context.Background())

	assert.Equal(t, StatusAnonymous, sess.Status)
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
}

func TestValidator_ValidToken(t *testing.T) {
	fresh := &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleAdmin}
	srv := httptest.NewServer(meHandler(t, "tok-123", fresh))
	defer srv.Close()

	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	cached := &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleEditor}
	require.NoError(t, store.Save("tok-123", cached))

	v := NewValidator(store, api.New(srv.URL), 0, nil)
	sess := v.Restore(context.Background())

	assert.Equal(t, StatusAuthenticated, sess.Status)
	assert.Equal(t, "tok-123", sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, model.RoleAdmin, sess.User.Role, "Session should carry the server's profile, not the cached one")

	// The refreshed profile is persisted back for the next fallback
	creds := store.Load()
	require.NotNil(t, creds)
	assert.Equal(t, model.RoleAdmin, creds.User.Role)

	// A second restore against the same endpoint lands on the same session
	again := v.Restore(context.Background())
	assert.Equal(t, sess.Status, again.Status)
	assert.Equal(t, sess.Token, again.Token)
	require.NotNil(t, again.User)
	assert.Equal(t, sess.User.Email, again.User.Email)
	assert.Equal(t, sess.User.Role, again.User.Role)
}

func TestValidator_RejectedTokenFallsBackToCache(t *testing.T) {
	srv := httptest.NewServer(meHandler(t, "some-other-token", nil))
	defer srv.Close()

	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	cached := &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleEditor}
	require.NoError(t, store.Save("tok-123", cached))

	v := NewValidator(store, api.New(srv.URL), 0, nil)
	sess := v.Restore(context.Background())

	// The cached profile is young, so it is trusted despite the rejection
	assert.Equal(t, StatusAuthenticated, sess.Status)
	require.NotNil(t, sess.User)
	assert.Equal(t, "jane@example.com", sess.User.Email)
	assert.Equal(t, model.RoleEditor, sess.User.Role)
}

func TestValidator_NetworkErrorFallsBackToCache(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	cached := &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleEditor}
	require.NoError(t, store.Save("tok-123", cached))

	// Nothing listening: every request fails at the transport
	v := NewValidator(store, api.New("http://127.0.0.1:1"), 0, nil)
	sess := v.Restore(context.Background())

	assert.Equal(t, StatusAuthenticated, sess.Status)
	require.NotNil(t, sess.User)
	assert.Equal(t, "jane@example.com", sess.User.Email)

	// Credentials survive for the next run
	assert.NotNil(t, store.Load())
}

func TestValidator_StaleProfileIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	// Write credentials whose snapshot is far older than the stale bound
	creds := Credentials{
		Token:   "tok-123",
		User:    model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleEditor},
		SavedAt: time.Now().Add(-48 * time.Hour),
	}
	payload, err := json.Marshal(creds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	store := NewTokenStore(path)
	v := NewValidator(store, api.New("http://127.0.0.1:1"), 24*time.Hour, nil)
	sess := v.Restore(context.Background())

	assert.Equal(t, StatusInvalid, sess.Status)
	assert.Nil(t, sess.User)
	assert.Nil(t, store.Load(), "Expired credentials should have been cleared")
}

func TestValidator_RestartAfterFallbackIsStable(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "credentials.json"))
	cached := &model.User{Name: "Jane", Email: "jane@example.com", Role: model.RoleEditor}
	require.NoError(t, store.Save("tok-123", cached))

	v := NewValidator(store, api.New("http://127.0.0.1:1"), 0, nil)

	first := v.Restore(context.Background())
	second := v.Restore(context.Background())

	assert.Equal(t, first.Status, second.Status)
	require.NotNil(t, second.User)
	assert.Equal(t, first.User.Email, second.User.Email)
}
