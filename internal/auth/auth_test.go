package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/lma/internal/auth"
	"github.com/Tiliavir/lma/internal/model"
)

func jwtWithExp(exp time.Time) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))
	return "eyJhbGciOiJIUzI1NiJ9." + payload + ".sig"
}

func newStore(t *testing.T) *auth.TokenStore {
	t.Helper()
	return auth.NewTokenStore(auth.TokenFile(t.TempDir()))
}

func TestTokenStoreLoadMissing(t *testing.T) {
	tok, err := newStore(t).Load()
	if err != nil || tok != nil {
		t.Errorf("Load on missing file = %v, %v; want nil, nil", tok, err)
	}
}

func TestTokenStoreSaveLoadClear(t *testing.T) {
	s := newStore(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	if _, err := s.SavePair(model.TokenPair{Access: jwtWithExp(exp), Refresh: "r1"}); err != nil {
		t.Fatalf("SavePair: %v", err)
	}
	tok, err := s.Load()
	if err != nil || tok == nil {
		t.Fatalf("Load: %v, %v", tok, err)
	}
	if tok.RefreshToken != "r1" || !tok.Expiry.Equal(exp) {
		t.Errorf("token = %+v, want refresh r1 and expiry %v", tok, exp)
	}

	if _, err := s.SetAccess("plain-token"); err != nil {
		t.Fatal(err)
	}
	tok, _ = s.Load()
	if tok.AccessToken != "plain-token" || tok.RefreshToken != "r1" || !tok.Expiry.IsZero() {
		t.Errorf("token after SetAccess = %+v", tok)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	if tok, _ := s.Load(); tok != nil {
		t.Error("expected no token after Clear")
	}
}

func TestSavePairKeepsRefreshWhenNotRotated(t *testing.T) {
	s := newStore(t)
	if _, err := s.SavePair(model.TokenPair{Access: "a1", Refresh: "r1"}); err != nil {
		t.Fatal(err)
	}
	tok, err := s.SavePair(model.TokenPair{Access: "a2"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.RefreshToken != "r1" {
		t.Errorf("refresh = %q, want r1", tok.RefreshToken)
	}
}

func TestTokenStoreLoadReadsExpiryFromJWT(t *testing.T) {
	s := newStore(t)
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := s.Save(&oauth2.Token{AccessToken: jwtWithExp(exp), RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	tok, err := s.Load()
	if err != nil || tok == nil {
		t.Fatalf("Load: %v, %v", tok, err)
	}
	if !tok.Expiry.Equal(exp) {
		t.Errorf("expiry = %v, want %v", tok.Expiry, exp)
	}
	if tok.Valid() {
		t.Error("token with an expired exp claim must not be valid")
	}
}

func TestTokenStoreCorruptFile(t *testing.T) {
	path := auth.TokenFile(t.TempDir())
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.NewTokenStore(path).Load(); err == nil {
		t.Error("expected error for corrupt token file")
	}
}

func TestSourceNotLoggedIn(t *testing.T) {
	src := auth.NewSource(context.Background(), newStore(t), nil)
	if _, err := src.Token(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestSourceServesValidToken(t *testing.T) {
	s := newStore(t)
	if err := s.Save(&oauth2.Token{AccessToken: jwtWithExp(time.Now().Add(time.Hour)), RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	refreshed := 0
	src := auth.NewSource(context.Background(), s, func(context.Context, string) (model.TokenPair, error) {
		refreshed++
		return model.TokenPair{Access: "new"}, nil
	})
	if _, err := src.Token(); err != nil {
		t.Fatal(err)
	}
	if refreshed != 0 {
		t.Error("valid token must not be refreshed")
	}
}

func TestSourceRefreshesExpiredAndInvalidated(t *testing.T) {
	s := newStore(t)
	if err := s.Save(&oauth2.Token{AccessToken: jwtWithExp(time.Now().Add(-time.Minute)), RefreshToken: "r1"}); err != nil {
		t.Fatal(err)
	}
	var got []string
	src := auth.NewSource(context.Background(), s, func(_ context.Context, refresh string) (model.TokenPair, error) {
		got = append(got, refresh)
		return model.TokenPair{Access: fmt.Sprintf("a%d", len(got))}, nil
	})

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "a1" || tok.RefreshToken != "r1" {
		t.Errorf("token = %+v", tok)
	}

	src.Invalidate()
	tok, err = src.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "a2" {
		t.Errorf("token after invalidate = %q, want a2", tok.AccessToken)
	}

	stored, _ := s.Load()
	if stored.AccessToken != "a2" || stored.RefreshToken != "r1" {
		t.Errorf("stored token = %+v", stored)
	}
}

func TestSourceWithoutRefreshToken(t *testing.T) {
	s := newStore(t)
	if err := s.Save(&oauth2.Token{AccessToken: jwtWithExp(time.Now().Add(-time.Minute))}); err != nil {
		t.Fatal(err)
	}
	src := auth.NewSource(context.Background(), s, nil)
	if _, err := src.Token(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}

type fakeAPI struct {
	pair     model.TokenPair
	loginErr error
	meErr    error
	logins   int
}

var errUnauthorized = errors.New("HTTP 401")

func (f *fakeAPI) Login(context.Context, model.Credentials) (model.TokenPair, error) {
	f.logins++
	return f.pair, f.loginErr
}

func (f *fakeAPI) Register(context.Context, model.Registration) (model.TokenPair, error) {
	return model.TokenPair{}, nil
}

func (f *fakeAPI) Me(context.Context) (model.User, error) {
	if f.meErr != nil {
		return model.User{}, f.meErr
	}
	return model.User{ID: 1, Username: "ada"}, nil
}

func isUnauthorized(err error) bool { return errors.Is(err, errUnauthorized) }

func TestServiceLoginAndLogout(t *testing.T) {
	store := newStore(t)
	svc := auth.NewService(&fakeAPI{pair: model.TokenPair{Access: "a", Refresh: "r"}}, store, isUnauthorized)

	u, err := svc.Login(context.Background(), model.Credentials{Username: "ada", Password: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u == nil || u.Username != "ada" {
		t.Errorf("user = %+v", u)
	}
	if tok, _ := store.Load(); tok == nil || tok.AccessToken != "a" {
		t.Errorf("stored token = %+v", tok)
	}

	if err := svc.Logout(); err != nil {
		t.Fatal(err)
	}
	if tok, _ := store.Load(); tok != nil {
		t.Error("expected tokens cleared after logout")
	}
}

func TestServiceMeUnauthorizedIsNil(t *testing.T) {
	for _, meErr := range []error{errUnauthorized, auth.ErrNotLoggedIn} {
		svc := auth.NewService(&fakeAPI{meErr: meErr}, newStore(t), isUnauthorized)
		u, err := svc.Me(context.Background())
		if err != nil || u != nil {
			t.Errorf("Me with %v = %v, %v; want nil, nil", meErr, u, err)
		}
	}

	boom := errors.New("boom")
	svc := auth.NewService(&fakeAPI{meErr: boom}, newStore(t), isUnauthorized)
	if _, err := svc.Me(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestServiceRegister(t *testing.T) {
	api := &fakeAPI{pair: model.TokenPair{Access: "a", Refresh: "r"}}
	svc := auth.NewService(api, newStore(t), isUnauthorized)
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.Registration{Username: "ada", Password: "x", PasswordConfirm: "y"}); err == nil {
		t.Error("expected mismatch error")
	}
	u, err := svc.Register(ctx, model.Registration{Username: "ada", Email: "a@b.c", Password: "x", PasswordConfirm: "x"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u == nil || api.logins != 1 {
		t.Errorf("user = %+v, logins = %d; want login after token-less registration", u, api.logins)
	}
}
