package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestNewMemoryRunsMigrations(t *testing.T) {
	s := newTestStore(t)
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != currentVersion {
		t.Fatalf("user_version = %d, want %d", version, currentVersion)
	}
}

func TestNewCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "lma.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening must not re-run the migration.
	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s.Close()
}

func TestLoadStateEmpty(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fresh store should report no saved state")
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 2, 27, 9, 0, 0, 123456789, time.UTC)
	end := start.Add(25 * time.Minute)
	pausedAt := start.Add(10 * time.Minute)
	minutes := model.Minutes(25)

	want := focus.State{
		Sessions: []model.FocusSession{
			{ID: 8, Task: 4, StartedAt: start.Add(time.Hour), Notes: "deep work"},
			{ID: 7, Task: 3, StartedAt: start, EndedAt: &end, Success: true, DurationMinutes: &minutes},
		},
		ActiveSessionID: ptr(int64(8)),
		ActiveBlockID:   ptr(int64(21)),
		Pause:           focus.PauseState{TaskID: ptr(int64(4)), PausedAt: &pausedAt, Total: 90 * time.Second},
		CompletedBlocks: map[int64]focus.CompletedBlock{20: {Minutes: 25}},
	}
	if err := s.SaveState(want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.LoadState()
	if err != nil || !ok {
		t.Fatalf("LoadState = %v, %v", ok, err)
	}
	if len(got.Sessions) != 2 || got.Sessions[0].ID != 8 || got.Sessions[1].ID != 7 {
		t.Fatalf("sessions order not preserved: %+v", got.Sessions)
	}
	if !got.Sessions[0].StartedAt.Equal(want.Sessions[0].StartedAt) {
		t.Errorf("started_at = %v, want %v", got.Sessions[0].StartedAt, want.Sessions[0].StartedAt)
	}
	if got.Sessions[0].EndedAt != nil || got.Sessions[0].DurationMinutes != nil {
		t.Error("open session must keep nil end and duration")
	}
	if got.Sessions[1].EndedAt == nil || !got.Sessions[1].EndedAt.Equal(end) {
		t.Errorf("ended_at = %v", got.Sessions[1].EndedAt)
	}
	if !got.Sessions[1].Success || *got.Sessions[1].DurationMinutes != 25 {
		t.Errorf("closed session = %+v", got.Sessions[1])
	}
	if *got.ActiveSessionID != 8 || *got.ActiveBlockID != 21 {
		t.Errorf("active ids = %v, %v", *got.ActiveSessionID, *got.ActiveBlockID)
	}
	if *got.Pause.TaskID != 4 || !got.Pause.PausedAt.Equal(pausedAt) || got.Pause.Total != 90*time.Second {
		t.Errorf("pause = %+v", got.Pause)
	}
	if got.CompletedBlocks[20].Minutes != 25 {
		t.Errorf("completed blocks = %+v", got.CompletedBlocks)
	}
}

func TestSaveStateReplacesPrevious(t *testing.T) {
	s := newTestStore(t)
	first := focus.State{
		Sessions:        []model.FocusSession{{ID: 1, Task: 1, StartedAt: time.Now().UTC()}},
		ActiveSessionID: ptr(int64(1)),
		CompletedBlocks: map[int64]focus.CompletedBlock{5: {Minutes: 3}},
	}
	if err := s.SaveState(first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveState(focus.State{}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.LoadState()
	if err != nil || !ok {
		t.Fatalf("LoadState = %v, %v", ok, err)
	}
	if len(got.Sessions) != 0 || got.ActiveSessionID != nil || len(got.CompletedBlocks) != 0 {
		t.Errorf("state not replaced: %+v", got)
	}
	if got.Pause.TaskID != nil || got.Pause.PausedAt != nil {
		t.Errorf("pause not cleared: %+v", got.Pause)
	}
}

func TestClearState(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveState(focus.State{ActiveBlockID: ptr(int64(3))}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearState(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LoadState(); ok {
		t.Error("state should be gone after ClearState")
	}
}

func TestSaveLoadBlocks(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	blocks := []model.Block{
		{ID: 2, Title: "review", StartDate: day.Add(14 * time.Hour), EndDate: day.Add(15 * time.Hour)},
		{ID: 1, Title: "write", Task: ptr(int64(4)), StartDate: day.Add(9 * time.Hour), EndDate: day.Add(11 * time.Hour), Color: "#6C63FF"},
	}
	if err := s.SaveBlocks(blocks); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadBlocks()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("blocks not ordered by start: %+v", got)
	}
	if got[0].Task == nil || *got[0].Task != 4 || got[0].Color != "#6C63FF" {
		t.Errorf("block 1 = %+v", got[0])
	}
	if got[1].Task != nil {
		t.Errorf("block 2 task = %v, want nil", *got[1].Task)
	}
	if !got[0].EndDate.Equal(day.Add(11 * time.Hour)) {
		t.Errorf("end_date = %v", got[0].EndDate)
	}

	if err := s.SaveBlocks(blocks[:1]); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.LoadBlocks(); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("SaveBlocks should replace the cache, got %+v", got)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	if _, ok, err := s.Setting("synced_at"); err != nil || ok {
		t.Fatalf("missing setting = %v, %v", ok, err)
	}
	if err := s.SetSetting("synced_at", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("synced_at", "b"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Setting("synced_at")
	if err != nil || !ok || v != "b" {
		t.Errorf("Setting = %q, %v, %v", v, ok, err)
	}
}

func TestBaseDirHonoursEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	got, err := BaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("BaseDir = %q, want %q", got, dir)
	}
	if DBPath(dir) != filepath.Join(dir, "lma.db") {
		t.Errorf("DBPath = %q", DBPath(dir))
	}
}
