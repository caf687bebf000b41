// Package collection mirrors a remote list one-to-one in memory.
package collection

import (
	"context"
	"slices"
	"sync"
)

// Item is anything with a server-assigned id.
type Item interface {
	GetID() int64
}

// Remote is the CRUD surface of a remote collection.
type Remote[T Item, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, in In) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Funcs adapts plain functions to Remote.
type Funcs[T Item, In any] struct {
	ListFn   func(ctx context.Context) ([]T, error)
	CreateFn func(ctx context.Context, in In) (T, error)
	UpdateFn func(ctx context.Context, id int64, in In) (T, error)
	DeleteFn func(ctx context.Context, id int64) error
}

func (f Funcs[T, In]) List(ctx context.Context) ([]T, error) {
	return f.ListFn(ctx)
}

func (f Funcs[T, In]) Create(ctx context.Context, in In) (T, error) {
	return f.CreateFn(ctx, in)
}

func (f Funcs[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	return f.UpdateFn(ctx, id, in)
}

func (f Funcs[T, In]) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

// Store holds the last known contents of a remote collection.
type Store[T Item, In any] struct {
	remote Remote[T, In]

	mu    sync.Mutex
	items []T
	err   error
}

// New creates an empty store for remote.
func New[T Item, In any](remote Remote[T, In]) *Store[T, In] {
	return &Store[T, In]{remote: remote}
}

// Restore seeds the store with previously saved items, e.g. from a local
// cache, without contacting the remote.
func (s *Store[T, In]) Restore(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.err = nil
}

// Items returns a copy of the current items.
func (s *Store[T, In]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Err returns the error of the last FetchAll, if it failed.
func (s *Store[T, In]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FetchAll replaces the items with the remote contents. A failed fetch keeps
// the previous items and is recorded in Err.
func (s *Store[T, In]) FetchAll(ctx context.Context) error {
	items, err := s.remote.List(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	if err != nil {
		return err
	}
	s.items = items
	return nil
}

// Create adds an item remotely and prepends the server's copy.
func (s *Store[T, In]) Create(ctx context.Context, in In) (T, error) {
	created, err := s.remote.Create(ctx, in)
	if err != nil {
		return created, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T{created}, s.items...)
	return created, nil
}

// Update changes an item remotely and replaces it in place.
func (s *Store[T, In]) Update(ctx context.Context, id int64, in In) (T, error) {
	updated, err := s.remote.Update(ctx, id, in)
	if err != nil {
		return updated, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.items[i] = updated
	}
	return updated, nil
}

// Remove deletes an item remotely and locally.
func (s *Store[T, In]) Remove(ctx context.Context, id int64) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(it T) bool { return it.GetID() == id })
	return nil
}

// Find returns the item with the given id.
func (s *Store[T, In]) Find(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Clear drops all items and the last error.
func (s *Store[T, In]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.err = nil
}

func (s *Store[T, In]) index(id int64) int {
	return slices.IndexFunc(s.items, func(it T) bool { return it.GetID() == id })
}
