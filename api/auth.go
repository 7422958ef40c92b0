package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/portalhq/portal-cli/model"
)

// LoginResult is the outcome of a successful login: the bearer token
// plus the profile fields the portal returns alongside it.
type LoginResult struct {
	Token string
	User  model.User
}

// loginResponse matches the wire shape of POST /auth/login: the token
// and the user fields arrive flattened in one object.
type loginResponse struct {
	Token          string     `json:"token" validate:"required"`
	Name           string     `json:"name"`
	Email          string     `json:"email" validate:"required,email"`
	Avatar         string     `json:"avatar"`
	Role           model.Role `json:"role" validate:"required,oneof=admin editor user"`
	TotalFavorites int        `json:"total_favorites"`
	TotalLikes     int        `json:"total_likes"`
}

// Login exchanges an email/password pair for a bearer token. A 401
// from the server is reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, "")
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, fmt.Errorf("%w: server rejected email/password", ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := c.checkPayload("/auth/login", &resp); err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: resp.Token,
		User: model.User{
			Name:           resp.Name,
			Email:          resp.Email,
			Avatar:         resp.Avatar,
			Role:           resp.Role,
			TotalFavorites: resp.TotalFavorites,
			TotalLikes:     resp.TotalLikes,
		},
	}, nil
}

// Register creates a reader account. It does not authenticate; the
// caller logs in afterwards. Any rejection is reported as
// ErrRegistrationRejected with the server's message preserved.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}

	err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, nil, "")
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s", ErrRegistrationRejected, apiErr.Message)
		}
		return ErrRegistrationRejected
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrRegistrationRejected, err)
	}
	return err
}

// currentUserResponse matches GET /auth/me: the profile arrives under
// a "user" key.
type currentUserResponse struct {
	User model.User `json:"user"`
}

// CurrentUser fetches the profile behind a token. The token is passed
// explicitly so the session validator can probe a stored token without
// installing it first.
func (c *Client) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	var resp currentUserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &resp, token); err != nil {
		return nil, err
	}
	if err := c.checkPayload("/auth/me", &resp.User); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListEditors returns the portal's staff accounts. Admin only.
func (c *Client) ListEditors(ctx context.Context) ([]*model.Editor, error) {
	var editors []*model.Editor
	if err := c.do(ctx, http.MethodGet, "/auth/editors", nil, nil, &editors, ""); err != nil {
		return nil, err
	}
	for _, e := range editors {
		if err := c.checkPayload("/auth/editors", e); err != nil {
			return nil, err
		}
	}
	return editors, nil
}
