// Package auth persists API tokens and keeps them fresh.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/lma/internal/model"
)

// ErrNotLoggedIn is returned when no usable token is stored.
var ErrNotLoggedIn = errors.New("not logged in (run: lma login)")

// TokenStore keeps the token pair in a JSON file readable only by the user.
type TokenStore struct {
	path string
}

// NewTokenStore returns a store for the token file at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// TokenFile returns the token file location inside the data directory.
func TokenFile(base string) string {
	return filepath.Join(base, "auth", "tokens.json")
}

// Load returns the stored token, or nil when none is stored.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", s.path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, nil
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = expiryOf(tok.AccessToken)
	}
	return &tok, nil
}

// Save persists tok atomically.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// SavePair stores a freshly issued token pair. An empty refresh token keeps
// the one already stored.
func (s *TokenStore) SavePair(pair model.TokenPair) (*oauth2.Token, error) {
	if pair.Refresh == "" {
		return s.SetAccess(pair.Access)
	}
	tok := FromPair(pair)
	return tok, s.Save(tok)
}

// SetAccess replaces only the access token and returns the stored token.
func (s *TokenStore) SetAccess(access string) (*oauth2.Token, error) {
	tok, err := s.current()
	if err != nil {
		return nil, err
	}
	tok.AccessToken = access
	tok.Expiry = expiryOf(access)
	return tok, s.Save(tok)
}

func (s *TokenStore) current() (*oauth2.Token, error) {
	tok, err := s.Load()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		tok = &oauth2.Token{TokenType: "Bearer"}
	}
	return tok, nil
}

// Clear removes the token file.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// FromPair converts an API token pair into an oauth2 token. The expiry is
// read from the access token's exp claim when it is a JWT.
func FromPair(pair model.TokenPair) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  pair.Access,
		TokenType:    "Bearer",
		RefreshToken: pair.Refresh,
		Expiry:       expiryOf(pair.Access),
	}
}

// expiryOf decodes the exp claim of a JWT without verifying it. Tokens that
// are not JWTs get a zero expiry, which oauth2 treats as never expiring.
func expiryOf(access string) time.Time {
	parts := strings.Split(access, ".")
	if len(parts) != 3 {
		return time.Time{}
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(raw, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(claims.Exp, 0)
}
