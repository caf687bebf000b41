// Package focus tracks the focus session currently being worked on, derives
// its elapsed time from timestamps and reconciles local state against the
// session list fetched from the API.
//
// At most one session is active across all tasks. The rule is enforced on
// the client: Start refuses to open a second session and FetchAll repairs
// snapshots that contain several open sessions.
package focus

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/timecalc"
)

var (
	// ErrConflict is returned by Start when another task already has an active session.
	ErrConflict = errors.New("another focus session is already active")
	// ErrNoActiveSession is returned when an operation needs an active session and there is none.
	ErrNoActiveSession = errors.New("no active focus session")
)

// Repository is the remote collection of focus sessions.
type Repository interface {
	ListSessions(ctx context.Context) ([]model.FocusSession, error)
	CreateSession(ctx context.Context, in model.CreateSession) (model.FocusSession, error)
	UpdateSession(ctx context.Context, id int64, in model.EndSession) (model.FocusSession, error)
}

// Clock abstracts time so lifecycle operations are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// PauseState is the client-only pause bookkeeping for the active task.
type PauseState struct {
	TaskID   *int64
	PausedAt *time.Time
	Total    time.Duration
}

// CompletedBlock is the final duration of the last successful session
// started from a timeline block.
type CompletedBlock struct {
	Minutes float64
}

// Store holds the session list and everything derived from it. The zero
// value is not usable; create one with NewStore.
//
// The mutex is never held across a Repository call. When FetchAll races with
// Start or Stop, whichever response is applied last wins.
type Store struct {
	repo  Repository
	clock Clock

	mu              sync.Mutex
	sessions        []model.FocusSession
	activeByTask    map[int64]model.FocusSession
	pause           PauseState
	activeBlockID   *int64
	completedBlocks map[int64]CompletedBlock
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// NewStore returns an empty store backed by repo.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:            repo,
		clock:           systemClock{},
		activeByTask:    map[int64]model.FocusSession{},
		completedBlocks: map[int64]CompletedBlock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns a copy of the session list, newest operations first.
func (s *Store) Sessions() []model.FocusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sessions)
}

// ActiveByTask returns a copy of the active session index.
func (s *Store) ActiveByTask() map[int64]model.FocusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.activeByTask)
}

// Active returns the active session, if any.
func (s *Store) Active() (model.FocusSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() (model.FocusSession, bool) {
	for _, sess := range s.activeByTask {
		return sess, true
	}
	return model.FocusSession{}, false
}

// ActiveTaskID returns the task of the active session, if any.
func (s *Store) ActiveTaskID() (int64, bool) {
	sess, ok := s.Active()
	return sess.Task, ok
}

// PauseState returns the current pause bookkeeping.
func (s *Store) PauseState() PauseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pause
}

// IsPaused reports whether taskID has a pause in progress.
func (s *Store) IsPaused(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pausedLocked(taskID)
}

func (s *Store) pausedLocked(taskID int64) bool {
	return s.pause.TaskID != nil && *s.pause.TaskID == taskID && s.pause.PausedAt != nil
}

// ActiveBlockID returns the timeline block the active session was started from.
func (s *Store) ActiveBlockID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBlockID == nil {
		return 0, false
	}
	return *s.activeBlockID, true
}

// CompletedBlocks returns a copy of the completed-blocks cache.
func (s *Store) CompletedBlocks() map[int64]CompletedBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.completedBlocks)
}

// EffectiveElapsed returns the worked time of taskID's active session at
// now, excluding paused time. It returns 0 when the task has no active
// session. Callers redraw by calling it again; the store keeps no timer.
func (s *Store) EffectiveElapsed(taskID int64, now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.activeByTask[taskID]
	if !ok {
		return 0
	}
	w := timecalc.PauseWindow{Total: s.pause.Total}
	if s.pausedLocked(taskID) {
		w.Since = s.pause.PausedAt
	}
	return timecalc.EffectiveElapsed(active.StartedAt, now, w)
}

// TotalMinutesForTask sums the recorded duration of all sessions of taskID.
func (s *Store) TotalMinutesForTask(taskID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, sess := range s.sessions {
		if sess.Task == taskID {
			total += sess.Minutes()
		}
	}
	return total
}

// TotalMinutesAll sums the recorded duration of all sessions.
func (s *Store) TotalMinutesAll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, sess := range s.sessions {
		total += sess.Minutes()
	}
	return total
}

// Clear drops every session and all derived and client-only state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.activeByTask = map[int64]model.FocusSession{}
	s.activeBlockID = nil
	s.completedBlocks = map[int64]CompletedBlock{}
	s.pause = PauseState{}
}
