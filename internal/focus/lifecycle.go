package focus

import (
	"context"
	"fmt"

	"github.com/Tiliavir/lma/internal/model"
)

// Start opens a new session for taskID. It fails with ErrConflict, without
// contacting the repository, when a different task already has an active
// session. blockID optionally links the session to a timeline block.
func (s *Store) Start(ctx context.Context, taskID int64, notes string, blockID *int64) (model.FocusSession, error) {
	s.mu.Lock()
	active, ok := s.activeLocked()
	s.mu.Unlock()
	if ok && active.Task != taskID {
		return model.FocusSession{}, ErrConflict
	}

	created, err := s.repo.CreateSession(ctx, model.CreateSession{
		Task:      taskID,
		StartedAt: s.clock.Now(),
		Notes:     notes,
		Success:   false,
	})
	if err != nil {
		return model.FocusSession{}, fmt.Errorf("starting focus session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]model.FocusSession{created}, s.sessions...)
	s.activeByTask = map[int64]model.FocusSession{taskID: created}
	s.activeBlockID = copyID(blockID)
	s.pause = PauseState{}
	return created, nil
}

// Stop ends the session with the given id. A successful stop of a session
// started from a block records the block's final duration.
func (s *Store) Stop(ctx context.Context, sessionID int64, success bool) (model.FocusSession, error) {
	s.mu.Lock()
	blockAtStop := copyID(s.activeBlockID)
	s.mu.Unlock()

	updated, err := s.repo.UpdateSession(ctx, sessionID, model.EndSession{
		EndedAt: s.clock.Now(),
		Success: success,
	})
	if err != nil {
		return model.FocusSession{}, fmt.Errorf("stopping focus session %d: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i] = updated
			break
		}
	}
	if cur, ok := s.activeByTask[updated.Task]; ok && cur.ID == sessionID {
		delete(s.activeByTask, updated.Task)
	}
	if s.pause.TaskID != nil && *s.pause.TaskID == updated.Task {
		s.pause = PauseState{}
	}
	if success && blockAtStop != nil {
		s.completedBlocks[*blockAtStop] = CompletedBlock{Minutes: updated.Minutes()}
	}
	s.activeBlockID = nil
	return updated, nil
}

// StopActive ends the active session, whatever task it belongs to.
func (s *Store) StopActive(ctx context.Context, success bool) (model.FocusSession, error) {
	active, ok := s.Active()
	if !ok {
		return model.FocusSession{}, ErrNoActiveSession
	}
	return s.Stop(ctx, active.ID, success)
}

// Pause starts a pause window for taskID. It does nothing unless taskID is
// the active task and no pause is already in progress.
func (s *Store) Pause(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.activeLocked()
	if !ok || active.Task != taskID || s.pause.PausedAt != nil {
		return
	}
	now := s.clock.Now()
	s.pause.TaskID = &taskID
	s.pause.PausedAt = &now
}

// Resume closes the pause window in progress for taskID and adds it to the
// accumulated pause total. It does nothing unless taskID is the active task
// and is paused.
func (s *Store) Resume(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.activeLocked()
	if !ok || active.Task != taskID || s.pause.PausedAt == nil {
		return
	}
	s.pause.Total += s.clock.Now().Sub(*s.pause.PausedAt)
	s.pause.PausedAt = nil
}

// ClearPause resets all pause bookkeeping.
func (s *Store) ClearPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pause = PauseState{}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
