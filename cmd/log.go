package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/timecalc"
)

var (
	logFormat string
	logTask   int64
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the focus log",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logFormat, "format", "md", "Output format: md, csv, json, yaml")
	logCmd.Flags().Int64Var(&logTask, "task", 0, "Only sessions of this task")
}

// logRow is one exported session.
type logRow struct {
	ID        int64   `json:"id" yaml:"id"`
	Task      int64   `json:"task" yaml:"task"`
	StartedAt string  `json:"started_at" yaml:"started_at"`
	EndedAt   string  `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	Success   bool    `json:"success" yaml:"success"`
	Minutes   float64 `json:"duration_minutes" yaml:"duration_minutes"`
	Notes     string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func runLog(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	sessions := e.focus.Sessions()
	if logTask != 0 {
		sessions = filterTask(sessions, logTask)
	}
	if err := writeLog(os.Stdout, sessions, logFormat, e.loc); err != nil {
		exitErr(1, err)
	}
	return nil
}

func filterTask(sessions []model.FocusSession, taskID int64) []model.FocusSession {
	var out []model.FocusSession
	for _, s := range sessions {
		if s.Task == taskID {
			out = append(out, s)
		}
	}
	return out
}

func toLogRows(sessions []model.FocusSession, loc *time.Location) []logRow {
	rows := make([]logRow, 0, len(sessions))
	for _, s := range sessions {
		r := logRow{
			ID:        s.ID,
			Task:      s.Task,
			StartedAt: s.StartedAt.In(loc).Format(time.RFC3339),
			Success:   s.Success,
			Minutes:   s.Minutes(),
			Notes:     s.Notes,
		}
		if s.EndedAt != nil {
			r.EndedAt = s.EndedAt.In(loc).Format(time.RFC3339)
		}
		rows = append(rows, r)
	}
	return rows
}

// writeLog renders sessions newest first, as the server lists them.
func writeLog(w io.Writer, sessions []model.FocusSession, format string, loc *time.Location) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(toLogRows(sessions, loc), "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toLogRows(sessions, loc)); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		return enc.Close()
	case "csv":
		writeLogCSV(w, toLogRows(sessions, loc))
	case "md":
		writeLogList(w, sessions, loc)
	default:
		return fmt.Errorf("unknown format %q (want md, csv, json or yaml)", format)
	}
	return nil
}

func writeLogCSV(w io.Writer, rows []logRow) {
	fmt.Fprintln(w, "id,task,started_at,ended_at,success,duration_minutes,notes")
	for _, r := range rows {
		fmt.Fprintf(w, "%d,%d,%s,%s,%t,%.2f,%s\n",
			r.ID,
			r.Task,
			csvEscape(r.StartedAt),
			csvEscape(r.EndedAt),
			r.Success,
			r.Minutes,
			csvEscape(r.Notes),
		)
	}
}

// writeLogList groups sessions by local date.
func writeLogList(w io.Writer, sessions []model.FocusSession, loc *time.Location) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No focus sessions found.")
		return
	}

	var currentDay string
	for _, s := range sessions {
		start := s.StartedAt.In(loc)
		day := start.Format("2006-01-02")
		if day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}

		endStr := "ongoing"
		durStr := ""
		if s.EndedAt != nil {
			endStr = s.EndedAt.In(loc).Format("15:04")
			durStr = fmt.Sprintf(" (%s)", timecalc.FormatMinutes(s.Minutes()))
		}
		mark := "✓"
		if !s.Success {
			mark = "✗"
		}
		if s.Open() {
			mark = "…"
		}
		notes := ""
		if s.Notes != "" {
			notes = "  " + s.Notes
		}
		fmt.Fprintf(w, "%s–%s  %s task %d%s%s\n", start.Format("15:04"), endStr, mark, s.Task, durStr, notes)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
