package focus_test

import (
	"context"
	"testing"
	"time"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := model.Minutes(30)
	repo := &fakeRepo{minutes: &m}
	s, clk := newStore(repo)
	ctx := context.Background()

	first, err := s.Start(ctx, 1, "", ptr(int64(7)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Stop(ctx, first.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start(ctx, 2, "", ptr(int64(8))); err != nil {
		t.Fatal(err)
	}
	s.Pause(2)
	clk.Advance(time.Minute)

	restored, _ := newStore(repo)
	restored.Restore(s.Snapshot())

	if task, ok := restored.ActiveTaskID(); !ok || task != 2 {
		t.Errorf("active task = %d,%v, want 2", task, ok)
	}
	if !restored.IsPaused(2) {
		t.Error("pause should be restored")
	}
	if b, ok := restored.ActiveBlockID(); !ok || b != 8 {
		t.Errorf("block = %d,%v, want 8", b, ok)
	}
	if got := restored.CompletedBlocks()[7].Minutes; got != 30 {
		t.Errorf("completed block 7 = %v, want 30", got)
	}
	if len(restored.Sessions()) != 2 {
		t.Errorf("sessions = %d, want 2", len(restored.Sessions()))
	}
}

func TestRestoreDropsInconsistentState(t *testing.T) {
	end := t0.Add(time.Minute)
	tests := []struct {
		name string
		st   focus.State
	}{
		{
			name: "active id not in sessions",
			st: focus.State{
				Sessions:        []model.FocusSession{open(1, 1, t0)},
				ActiveSessionID: ptr(int64(2)),
				ActiveBlockID:   ptr(int64(3)),
			},
		},
		{
			name: "active id names an ended session",
			st: focus.State{
				Sessions:        []model.FocusSession{{ID: 1, Task: 1, StartedAt: t0, EndedAt: &end}},
				ActiveSessionID: ptr(int64(1)),
				ActiveBlockID:   ptr(int64(3)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(&fakeRepo{})
			s.Restore(tt.st)
			if _, ok := s.Active(); ok {
				t.Error("expected no active session")
			}
			if _, ok := s.ActiveBlockID(); ok {
				t.Error("block association without an active session must be dropped")
			}
		})
	}
}

func TestRestoreDropsPauseOfOtherTask(t *testing.T) {
	s, _ := newStore(&fakeRepo{})
	s.Restore(focus.State{
		Sessions:        []model.FocusSession{open(1, 1, t0)},
		ActiveSessionID: ptr(int64(1)),
		Pause:           focus.PauseState{TaskID: ptr(int64(2)), PausedAt: &t0, Total: time.Minute},
	})
	if got := s.PauseState(); got.TaskID != nil || got.Total != 0 {
		t.Errorf("pause = %+v, want cleared", got)
	}
}
