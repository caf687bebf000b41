package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
)

const timeLayout = time.RFC3339Nano

// SaveState replaces the cached focus state with st.
func (s *Store) SaveState(st focus.State) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM sessions`,
		`DELETE FROM completed_blocks`,
		`DELETE FROM client_state`,
	} {
		if _, err = tx.Exec(stmt); err != nil {
			return fmt.Errorf("storage error clearing state: %w", err)
		}
	}

	for i, sess := range st.Sessions {
		var ended sql.NullString
		if sess.EndedAt != nil {
			ended = sql.NullString{String: sess.EndedAt.Format(timeLayout), Valid: true}
		}
		var minutes sql.NullFloat64
		if sess.DurationMinutes != nil {
			minutes = sql.NullFloat64{Float64: float64(*sess.DurationMinutes), Valid: true}
		}
		_, err = tx.Exec(
			`INSERT INTO sessions (position, id, task, started_at, ended_at, success, notes, duration_minutes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, sess.ID, sess.Task, sess.StartedAt.Format(timeLayout), ended, sess.Success, sess.Notes, minutes,
		)
		if err != nil {
			return fmt.Errorf("storage error saving session %d: %w", sess.ID, err)
		}
	}

	for blockID, cb := range st.CompletedBlocks {
		if _, err = tx.Exec(`INSERT INTO completed_blocks (block_id, minutes) VALUES (?, ?)`, blockID, cb.Minutes); err != nil {
			return fmt.Errorf("storage error saving completed block %d: %w", blockID, err)
		}
	}

	var pausedAt sql.NullString
	if st.Pause.PausedAt != nil {
		pausedAt = sql.NullString{String: st.Pause.PausedAt.Format(timeLayout), Valid: true}
	}
	_, err = tx.Exec(
		`INSERT INTO client_state (singleton, active_session_id, active_block_id, pause_task_id, paused_at, pause_total)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		st.ActiveSessionID, st.ActiveBlockID, st.Pause.TaskID, pausedAt, int64(st.Pause.Total),
	)
	if err != nil {
		return fmt.Errorf("storage error saving client state: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage error committing state: %w", err)
	}
	return nil
}

// LoadState reads the cached focus state. ok is false when nothing has been
// saved yet.
func (s *Store) LoadState() (st focus.State, ok bool, err error) {
	var (
		activeSession, activeBlock, pauseTask sql.NullInt64
		pausedAt                              sql.NullString
		pauseTotal                            int64
	)
	err = s.db.QueryRow(
		`SELECT active_session_id, active_block_id, pause_task_id, paused_at, pause_total
		 FROM client_state WHERE singleton = 1`,
	).Scan(&activeSession, &activeBlock, &pauseTask, &pausedAt, &pauseTotal)
	if err == sql.ErrNoRows {
		return focus.State{}, false, nil
	}
	if err != nil {
		return focus.State{}, false, fmt.Errorf("storage error reading client state: %w", err)
	}

	st.ActiveSessionID = nullID(activeSession)
	st.ActiveBlockID = nullID(activeBlock)
	st.Pause.TaskID = nullID(pauseTask)
	st.Pause.Total = time.Duration(pauseTotal)
	if pausedAt.Valid {
		t, perr := time.Parse(timeLayout, pausedAt.String)
		if perr != nil {
			return focus.State{}, false, fmt.Errorf("storage error parsing paused_at: %w", perr)
		}
		st.Pause.PausedAt = &t
	}

	if st.Sessions, err = s.loadSessions(); err != nil {
		return focus.State{}, false, err
	}
	if st.CompletedBlocks, err = s.loadCompletedBlocks(); err != nil {
		return focus.State{}, false, err
	}
	return st, true, nil
}

// ClearState drops the cached focus state.
func (s *Store) ClearState() error {
	for _, stmt := range []string{
		`DELETE FROM sessions`,
		`DELETE FROM completed_blocks`,
		`DELETE FROM client_state`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("storage error clearing state: %w", err)
		}
	}
	return nil
}

func (s *Store) loadSessions() ([]model.FocusSession, error) {
	rows, err := s.db.Query(
		`SELECT id, task, started_at, ended_at, success, notes, duration_minutes
		 FROM sessions ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage error listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.FocusSession{}
	for rows.Next() {
		var (
			sess    model.FocusSession
			started string
			ended   sql.NullString
			minutes sql.NullFloat64
		)
		if err := rows.Scan(&sess.ID, &sess.Task, &started, &ended, &sess.Success, &sess.Notes, &minutes); err != nil {
			return nil, fmt.Errorf("storage error scanning session: %w", err)
		}
		if sess.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("storage error parsing started_at of session %d: %w", sess.ID, err)
		}
		if ended.Valid {
			t, err := time.Parse(timeLayout, ended.String)
			if err != nil {
				return nil, fmt.Errorf("storage error parsing ended_at of session %d: %w", sess.ID, err)
			}
			sess.EndedAt = &t
		}
		if minutes.Valid {
			m := model.Minutes(minutes.Float64)
			sess.DurationMinutes = &m
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) loadCompletedBlocks() (map[int64]focus.CompletedBlock, error) {
	rows, err := s.db.Query(`SELECT block_id, minutes FROM completed_blocks`)
	if err != nil {
		return nil, fmt.Errorf("storage error listing completed blocks: %w", err)
	}
	defer rows.Close()

	out := map[int64]focus.CompletedBlock{}
	for rows.Next() {
		var id int64
		var cb focus.CompletedBlock
		if err := rows.Scan(&id, &cb.Minutes); err != nil {
			return nil, fmt.Errorf("storage error scanning completed block: %w", err)
		}
		out[id] = cb
	}
	return out, rows.Err()
}

func nullID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
