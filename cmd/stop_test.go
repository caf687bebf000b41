package cmd

import (
	"testing"
	"time"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{30, "30s"},
		{59, "59s"},
		{60, "1m 0s"},
		{90, "1m 30s"},
		{1200, "20m 0s"},
		{3600, "1h 0m 0s"},
		{3661, "1h 1m 1s"},
		{7322, "2h 2m 2s"},
	}
	for _, tt := range tests {
		got := formatElapsed(tt.seconds)
		if got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func pausedFocus(started, pausedAt time.Time, total time.Duration) *focus.Store {
	task := int64(3)
	id := int64(11)
	f := focus.NewStore(nil)
	f.Restore(focus.State{
		Sessions:        []model.FocusSession{{ID: id, Task: task, StartedAt: started}},
		ActiveSessionID: &id,
		Pause:           focus.PauseState{TaskID: &task, PausedAt: &pausedAt, Total: total},
	})
	return f
}

func TestStopElapsedExcludesPausedTime(t *testing.T) {
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	// 35m on the clock: 5m paused earlier, paused again for the last 10m.
	f := pausedFocus(start, start.Add(25*time.Minute), 5*time.Minute)
	now := start.Add(35 * time.Minute)

	tests := []struct {
		name      string
		sessionID int64
		want      time.Duration
	}{
		{"active by default", 0, 20 * time.Minute},
		{"active by id", 11, 20 * time.Minute},
		{"other session", 12, 0},
	}
	for _, tt := range tests {
		if got := stopElapsed(f, tt.sessionID, now); got != tt.want {
			t.Errorf("%s: stopElapsed = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := stopElapsed(focus.NewStore(nil), 0, now); got != 0 {
		t.Errorf("no active session: stopElapsed = %v, want 0", got)
	}
}

func TestStopSummary(t *testing.T) {
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	f := pausedFocus(start, start.Add(25*time.Minute), 5*time.Minute)
	elapsed := stopElapsed(f, 0, start.Add(35*time.Minute+30*time.Second))

	tests := []struct {
		failed bool
		want   string
	}{
		{false, "Stopped focus session (completed). Elapsed: 20m 0s"},
		{true, "Stopped focus session (abandoned). Elapsed: 20m 0s"},
	}
	for _, tt := range tests {
		if got := stopSummary(tt.failed, elapsed); got != tt.want {
			t.Errorf("stopSummary(%v) = %q, want %q", tt.failed, got, tt.want)
		}
	}
}
