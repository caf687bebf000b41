package focus

import (
	"maps"
	"slices"

	"github.com/Tiliavir/lma/internal/model"
)

// State is everything a Store needs to resume where it left off: the last
// session list plus the client-only inputs that cannot be derived from it.
type State struct {
	Sessions        []model.FocusSession
	ActiveSessionID *int64
	Pause           PauseState
	ActiveBlockID   *int64
	CompletedBlocks map[int64]CompletedBlock
}

// Snapshot exports the store's state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Sessions:        slices.Clone(s.sessions),
		Pause:           s.pause,
		ActiveBlockID:   copyID(s.activeBlockID),
		CompletedBlocks: maps.Clone(s.completedBlocks),
	}
	if active, ok := s.activeLocked(); ok {
		id := active.ID
		st.ActiveSessionID = &id
	}
	return st
}

// Restore replaces the store's state with st. The active index is rebuilt
// from st.ActiveSessionID, which only counts if it names an open session in
// st.Sessions. Pause and block association are dropped when they cannot
// belong to that session.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = slices.Clone(st.Sessions)
	s.activeByTask = map[int64]model.FocusSession{}
	s.completedBlocks = map[int64]CompletedBlock{}
	maps.Copy(s.completedBlocks, st.CompletedBlocks)
	s.pause = PauseState{}
	s.activeBlockID = nil

	if st.ActiveSessionID == nil {
		return
	}
	idx := slices.IndexFunc(s.sessions, func(sess model.FocusSession) bool {
		return sess.ID == *st.ActiveSessionID
	})
	if idx < 0 || !s.sessions[idx].Open() {
		return
	}
	active := s.sessions[idx]
	s.activeByTask[active.Task] = active
	s.activeBlockID = copyID(st.ActiveBlockID)
	if st.Pause.TaskID != nil && *st.Pause.TaskID == active.Task {
		s.pause = st.Pause
	}
}
