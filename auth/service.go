package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/portalhq/portal-cli/api"
)

// Service owns all session mutations. Login, logout and startup
// restoration are serialized by a mutex so two concurrent operations
// can never leave the token store in a mixed state.
type Service struct {
	client *api.Client
	store  *TokenStore
	log    *zap.Logger

	mu      sync.Mutex
	session *Session
}

// NewService creates a Service. The session starts in the
// initializing state until Restore runs.
func NewService(client *api.Client, store *TokenStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:  client,
		store:   store,
		log:     log,
		session: &Session{Status: StatusInitializing},
	}
}

// Session returns a copy of the current session state.
func (s *Service) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := *s.session
	if s.session.User != nil {
		user := *s.session.User
		sess.User = &user
	}
	return sess
}

// Token returns the current bearer token, or "" when anonymous.
// Suitable as an api.TokenSource.
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// Restore runs the startup reconciliation and installs the resulting
// session. staleTTL bounds how old a cached profile may be when the
// portal cannot confirm it; zero selects the default.
func (s *Service) Restore(ctx context.Context, staleTTL time.Duration) Session {
	validator := NewValidator(s.store, s.client, staleTTL, s.log)
	sess := validator.Restore(ctx)

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return s.Session()
}

// Login authenticates against the portal and persists the resulting
// credentials. On failure the session and token store are untouched
// and the error unwraps to api.ErrInvalidCredentials when the server
// rejected the pair.
func (s *Service) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.store.Save(result.Token, &result.User); err != nil {
		return fmt.Errorf("login succeeded but credentials could not be saved: %w", err)
	}

	user := result.User
	s.session = &Session{Token: result.Token, User: &user, Status: StatusAuthenticated}
	s.log.Info("logged in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return nil
}

// Register creates an account. It does not authenticate; callers log
// in afterwards, matching the portal's registration flow.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	return s.client.Register(ctx, name, email, password)
}

// Logout clears the persisted credentials and resets the session.
// Calling it while already logged out is a no-op.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.session = Anonymous()
	return nil
}
