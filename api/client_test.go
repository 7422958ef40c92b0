package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalhq/portal-cli/model"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]*model.Article{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "tok-123" }))
	_, err := c.ListArticles(context.Background(), ArticleQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_AnonymousSendsNoAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]*model.Article{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListArticles(context.Background(), ArticleQuery{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_QueryEncoding(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]*model.Article{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListArticles(context.Background(), ArticleQuery{
		Page:     2,
		Limit:    10,
		Category: "politics",
		Status:   model.ArticleStatusPublished,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "category=politics")
	assert.Contains(t, gotQuery, "status=published")
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		checkErr func(t *testing.T, err error)
	}{
		{
			name:   "401 maps to ErrUnauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"token expired"}`,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
				assert.Contains(t, err.Error(), "token expired")
			},
		},
		{
			name:   "404 maps to ErrNotFound",
			status: http.StatusNotFound,
			body:   "",
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:   "500 carries status and message",
			status: http.StatusInternalServerError,
			body:   `{"error":"database down"}`,
			checkErr: func(t *testing.T, err error) {
				var apiErr *Error
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
				assert.Contains(t, apiErr.Message, "database down")
			},
		},
		{
			name:   "plain-text error body",
			status: http.StatusBadRequest,
			body:   "title is required",
			checkErr: func(t *testing.T, err error) {
				var apiErr *Error
				require.True(t, errors.As(err, &apiErr))
				assert.Contains(t, apiErr.Message, "title is required")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.GetArticle(context.Background(), "a1")
			require.Error(t, err)
			tt.checkErr(t, err)
		})
	}
}

func TestClient_MalformedPayloadRejected(t *testing.T) {
	// Article without an ID fails response validation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"No ID","status":"published"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetArticle(context.Background(), "a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)

		if req["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"token":"tok-456","name":"Jane","email":"jane@example.com","role":"editor","total_favorites":3,"total_likes":7}`)
	}))
	defer srv.Close()

	c := New(srv.URL)

	result, err := c.Login(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-456", result.Token)
	assert.Equal(t, model.RoleEditor, result.User.Role)
	assert.Equal(t, 3, result.User.TotalFavorites)

	_, err = c.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestClient_RegisterRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"email already registered"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Register(context.Background(), "Jane", "jane@example.com", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	assert.Contains(t, err.Error(), "email already registered")
}

func TestClient_CurrentUserUsesExplicitToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer probe-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"user":{"name":"Jane","email":"jane@example.com","role":"editor"}}`)
	}))
	defer srv.Close()

	// The installed source has a different token; the explicit one wins
	c := New(srv.URL, WithTokenSource(func() string { return "installed-token" }))

	user, err := c.CurrentUser(context.Background(), "probe-token")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestClient_IsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(&Error{Status: 503}))
	assert.False(t, IsTransient(&Error{Status: 400}))
	assert.False(t, IsTransient(ErrUnauthorized))
	assert.False(t, IsTransient(ErrNotFound))
	assert.False(t, IsTransient(ErrInvalidCredentials))
	assert.False(t, IsTransient(nil))
}
