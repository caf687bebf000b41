// Package tui renders focus state for the terminal, both as the one-shot
// status panel and as the live watch view.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/timecalc"
)

// Summary is what the status panel shows at one instant.
type Summary struct {
	Active       *model.FocusSession
	Elapsed      time.Duration
	Paused       bool
	BlockID      *int64
	TaskMinutes  float64
	TodayMinutes float64
	TotalMinutes float64
}

// Summarize reads s at now. "Today" is the calendar day of now in loc.
func Summarize(s *focus.Store, now time.Time, loc *time.Location) Summary {
	sum := Summary{TotalMinutes: s.TotalMinutesAll()}

	local := now.In(loc)
	from, to := timecalc.DayRange(local)
	for _, sess := range s.Sessions() {
		if timecalc.Within(sess.StartedAt, from, to) {
			sum.TodayMinutes += sess.Minutes()
		}
	}

	active, ok := s.Active()
	if !ok {
		return sum
	}
	sum.Active = &active
	sum.Elapsed = s.EffectiveElapsed(active.Task, now)
	sum.Paused = s.IsPaused(active.Task)
	sum.TaskMinutes = s.TotalMinutesForTask(active.Task)
	if id, ok := s.ActiveBlockID(); ok {
		sum.BlockID = &id
	}
	return sum
}

// RenderStatus draws sum as a bordered panel.
func RenderStatus(sum Summary, loc *time.Location) string {
	var b strings.Builder

	if sum.Active == nil {
		b.WriteString(titleStyle.Render("No active focus session"))
		b.WriteString("\n")
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Task %d", sum.Active.Task)))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  session %d", sum.Active.ID)))
		b.WriteString("\n\n")

		timer := timecalc.FormatDurationHHMMSS(sum.Elapsed)
		if sum.Paused {
			b.WriteString(timerPausedStyle.Render(timer + "  ⏸ paused"))
		} else {
			b.WriteString(timerRunningStyle.Render(timer + "  ▶ running"))
		}
		b.WriteString("\n\n")

		b.WriteString(row("Started", sum.Active.StartedAt.In(loc).Format("2006-01-02 15:04")))
		if sum.Active.Notes != "" {
			b.WriteString(row("Notes", sum.Active.Notes))
		}
		if sum.BlockID != nil {
			b.WriteString(row("Block", fmt.Sprintf("%d", *sum.BlockID)))
		}
		b.WriteString(row("Task total", timecalc.FormatMinutes(sum.TaskMinutes)))
	}
	b.WriteString(row("Today", timecalc.FormatMinutes(sum.TodayMinutes)))
	b.WriteString(row("All time", timecalc.FormatMinutes(sum.TotalMinutes)))

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + value + "\n"
}
