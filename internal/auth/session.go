package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tiliavir/lma/internal/model"
)

// API is the subset of the API client used for account operations.
type API interface {
	Login(ctx context.Context, creds model.Credentials) (model.TokenPair, error)
	Register(ctx context.Context, reg model.Registration) (model.TokenPair, error)
	Me(ctx context.Context) (model.User, error)
}

// Service logs the user in and out.
type Service struct {
	api    API
	tokens *TokenStore
	// unauthorized reports whether err means the server rejected our credentials.
	unauthorized func(error) bool
}

// NewService creates a Service. unauthorized classifies errors returned by Me.
func NewService(api API, tokens *TokenStore, unauthorized func(error) bool) *Service {
	return &Service{api: api, tokens: tokens, unauthorized: unauthorized}
}

// Login authenticates, stores the issued tokens and returns the user.
func (s *Service) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	pair, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if _, err := s.tokens.SavePair(pair); err != nil {
		return nil, err
	}
	return s.Me(ctx)
}

// Register creates an account and logs in with it when the server issues tokens.
func (s *Service) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	if reg.Password != reg.PasswordConfirm {
		return nil, fmt.Errorf("passwords do not match")
	}
	pair, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if pair.Access == "" {
		return s.Login(ctx, model.Credentials{Username: reg.Username, Password: reg.Password})
	}
	if _, err := s.tokens.SavePair(pair); err != nil {
		return nil, err
	}
	return s.Me(ctx)
}

// Me returns the current user, or nil when not logged in.
func (s *Service) Me(ctx context.Context) (*model.User, error) {
	u, err := s.api.Me(ctx)
	if errors.Is(err, ErrNotLoggedIn) || (err != nil && s.unauthorized != nil && s.unauthorized(err)) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout forgets the stored tokens.
func (s *Service) Logout() error {
	return s.tokens.Clear()
}
