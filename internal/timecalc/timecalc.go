package timecalc

import (
	"fmt"
	"math"
	"time"
)

// PauseWindow describes the client-side pause accounting of a running session.
type PauseWindow struct {
	// Total is the sum of all completed pause windows.
	Total time.Duration
	// Since marks the start of the pause in progress; nil when not paused.
	Since *time.Time
}

// Current returns the length of the pause in progress at now. It is never negative.
func (p PauseWindow) Current(now time.Time) time.Duration {
	if p.Since == nil {
		return 0
	}
	return max(0, now.Sub(*p.Since))
}

// EffectiveElapsed returns how long a session started at startedAt has been
// worked on at now, excluding paused time. Clock skew can make the raw value
// negative; the result is clamped to zero.
func EffectiveElapsed(startedAt, now time.Time, pause PauseWindow) time.Duration {
	return max(0, now.Sub(startedAt)-pause.Total-pause.Current(now))
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatMinutes formats a fractional minute total the same way as FormatDuration.
func FormatMinutes(minutes float64) string {
	return FormatDuration(int64(math.Round(minutes * 60)))
}

// FormatDurationHHMMSS formats d as HH:MM:SS, truncating sub-second precision.
func FormatDurationHHMMSS(d time.Duration) string {
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = StartOfDay(monday)
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// DayRange returns the start of t's day and the start of the following day.
func DayRange(t time.Time) (time.Time, time.Time) {
	from := StartOfDay(t)
	return from, from.AddDate(0, 0, 1)
}

// Within reports whether t lies in [from, to).
func Within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// AtClock returns the time on t's day at the given "HH:MM" clock value.
func AtClock(t time.Time, hhmm string) (time.Time, error) {
	c, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q: %w", hhmm, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour(), c.Minute(), 0, 0, t.Location()), nil
}
