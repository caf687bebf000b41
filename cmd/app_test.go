package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Tiliavir/lma/internal/api"
	"github.com/Tiliavir/lma/internal/auth"
	"github.com/Tiliavir/lma/internal/focus"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", fmt.Errorf("wrapped: %w", focus.ErrConflict), 1},
		{"nothing active", focus.ErrNoActiveSession, 1},
		{"not logged in", auth.ErrNotLoggedIn, 1},
		{"unauthorized", &api.HTTPError{Status: 401}, 1},
		{"bad request", &api.HTTPError{Status: 400}, 1},
		{"server error", &api.HTTPError{Status: 503}, 2},
		{"network", errors.New("connection refused"), 2},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSplitIdentity(t *testing.T) {
	if u, e := splitIdentity("ada"); u != "ada" || e != "" {
		t.Errorf("username split = %q, %q", u, e)
	}
	if u, e := splitIdentity("ada@example.com"); u != "" || e != "ada@example.com" {
		t.Errorf("email split = %q, %q", u, e)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-3", "x"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) should fail", bad)
		}
	}
}
