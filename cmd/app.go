package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/api"
	"github.com/Tiliavir/lma/internal/auth"
	"github.com/Tiliavir/lma/internal/collection"
	"github.com/Tiliavir/lma/internal/config"
	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/storage"
)

// env is what every command works with: configuration, the authenticated
// API client, the token store and the local cache.
type env struct {
	ctx    context.Context
	base   string
	cfg    config.Config
	loc    *time.Location
	client *api.Client
	tokens *auth.TokenStore
	cache  *storage.Store
	focus  *focus.Store
}

// openEnv loads everything a command needs. Failures here are storage or
// configuration problems and end the process with exit code 2.
func openEnv(ctx context.Context) *env {
	base, err := storage.BaseDir()
	if err != nil {
		exitErr(2, err)
	}
	cfg, err := config.Load(base)
	if err != nil {
		exitErr(2, err)
	}
	loc, err := cfg.Location()
	if err != nil {
		exitErr(2, err)
	}

	plain, err := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.Timeout()))
	if err != nil {
		exitErr(2, err)
	}
	if verbose {
		plain.Logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	tokens := auth.NewTokenStore(auth.TokenFile(base))
	client := plain.Authenticated(auth.NewSource(ctx, tokens, plain.Refresh))

	cache, err := storage.New(storage.DBPath(base))
	if err != nil {
		exitErr(2, err)
	}

	return &env{
		ctx:    ctx,
		base:   base,
		cfg:    cfg,
		loc:    loc,
		client: client,
		tokens: tokens,
		cache:  cache,
		focus:  focus.NewStore(client),
	}
}

func (e *env) close() {
	if err := e.cache.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing cache: %v\n", err)
	}
}

// loadFocus restores the cached focus state. Without a cache it reconciles
// with the server first when fetch is set.
func (e *env) loadFocus(fetch bool) {
	st, ok, err := e.cache.LoadState()
	if err != nil {
		exitErr(2, err)
	}
	if ok {
		e.focus.Restore(st)
		return
	}
	if !fetch {
		return
	}
	if err := e.focus.FetchAll(e.ctx); err != nil {
		exitErr(exitCode(err), fmt.Errorf("loading focus sessions: %w", err))
	}
	e.saveFocus()
}

func (e *env) saveFocus() {
	if err := e.cache.SaveState(e.focus.Snapshot()); err != nil {
		exitErr(2, err)
	}
}

func (e *env) authService() *auth.Service {
	return auth.NewService(e.client, e.tokens, func(err error) bool {
		return errors.Is(err, api.ErrUnauthorized)
	})
}

func (e *env) notes() *collection.Notes {
	return collection.New[model.Note, model.NoteInput](collection.Funcs[model.Note, model.NoteInput]{
		ListFn:   e.client.ListNotes,
		CreateFn: e.client.CreateNote,
		UpdateFn: e.client.UpdateNote,
		DeleteFn: e.client.DeleteNote,
	})
}

func (e *env) blocks() *collection.Blocks {
	return collection.New[model.Block, model.BlockInput](collection.Funcs[model.Block, model.BlockInput]{
		ListFn:   e.client.ListBlocks,
		CreateFn: e.client.CreateBlock,
		UpdateFn: e.client.UpdateBlock,
		DeleteFn: e.client.DeleteBlock,
	})
}

// exitCode maps an operation error to the process exit code: 1 for things
// the user can fix, 2 for storage and transport failures.
func exitCode(err error) int {
	var httpErr *api.HTTPError
	switch {
	case errors.Is(err, focus.ErrConflict),
		errors.Is(err, focus.ErrNoActiveSession),
		errors.Is(err, auth.ErrNotLoggedIn),
		errors.Is(err, api.ErrUnauthorized):
		return 1
	case errors.As(err, &httpErr):
		if httpErr.Status >= http.StatusBadRequest && httpErr.Status < http.StatusInternalServerError {
			return 1
		}
	}
	return 2
}

func exitErr(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}

// commandContext falls back to a background context for commands run
// outside of Execute (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
