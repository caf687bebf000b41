package focus

import (
	"context"
	"fmt"

	"github.com/Tiliavir/lma/internal/model"
)

// FetchAll replaces the session list with the repository's snapshot and
// rebuilds the active index from it. On error the store is left untouched.
func (s *Store) FetchAll(ctx context.Context) error {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("fetching focus sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = sessions
	s.activeByTask = map[int64]model.FocusSession{}
	winner, ok := newestOpen(sessions)
	if ok {
		s.activeByTask[winner.Task] = winner
	}

	// Block association cannot be recovered from the server's session shape.
	s.activeBlockID = nil

	if !ok || s.pause.TaskID == nil || *s.pause.TaskID != winner.Task {
		s.pause = PauseState{}
	}
	return nil
}

// newestOpen picks the single session that counts as active out of a
// snapshot: the open session with the latest start. Equal starts fall back to
// the larger id so the result never depends on payload order. Other open
// sessions are treated as stale.
func newestOpen(sessions []model.FocusSession) (model.FocusSession, bool) {
	var (
		best  model.FocusSession
		found bool
	)
	for _, sess := range sessions {
		if !sess.Open() {
			continue
		}
		if !found || newer(sess, best) {
			best, found = sess, true
		}
	}
	return best, found
}

func newer(a, b model.FocusSession) bool {
	if a.StartedAt.Equal(b.StartedAt) {
		return a.ID > b.ID
	}
	return a.StartedAt.After(b.StartedAt)
}
