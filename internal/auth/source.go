package auth

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/lma/internal/model"
)

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (model.TokenPair, error)

// Source is an oauth2.TokenSource over the token file. It refreshes expired
// or invalidated access tokens and saves the result.
type Source struct {
	ctx     context.Context
	store   *TokenStore
	refresh RefreshFunc

	mu    sync.Mutex
	tok   *oauth2.Token
	stale bool
}

// NewSource creates a token source. ctx is used for refresh requests.
func NewSource(ctx context.Context, store *TokenStore, refresh RefreshFunc) *Source {
	return &Source{ctx: ctx, store: store, refresh: refresh}
}

// Token implements oauth2.TokenSource.
func (s *Source) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok == nil {
		tok, err := s.store.Load()
		if err != nil {
			// Corrupt token: warn and treat as logged out.
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		if tok == nil {
			return nil, ErrNotLoggedIn
		}
		s.tok = tok
	}

	if !s.stale && s.tok.AccessToken != "" && s.tok.Valid() {
		return s.tok, nil
	}
	if s.tok.RefreshToken == "" {
		return nil, ErrNotLoggedIn
	}

	pair, err := s.refresh(s.ctx, s.tok.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}
	refreshed, err := s.store.SavePair(pair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save refreshed token: %v\n", err)
		refreshed = FromPair(pair)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = s.tok.RefreshToken
	}
	s.tok = refreshed
	s.stale = false
	return s.tok, nil
}

// Invalidate forces the next Token call to refresh.
func (s *Source) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}
