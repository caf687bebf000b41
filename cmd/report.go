package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/timecalc"
)

var (
	reportWeek   bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show focused minutes per task",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Only sessions started this week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type taskTotal struct {
	Task    int64   `json:"task"`
	Minutes float64 `json:"minutes"`
}

type report struct {
	Period       string      `json:"period"`
	Tasks        []taskTotal `json:"tasks"`
	TotalMinutes float64     `json:"total_minutes"`
}

func runReport(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	sessions := e.focus.Sessions()
	period := "all time"
	if reportWeek {
		now := time.Now().In(e.loc)
		from, _ := timecalc.WeekRange(now)
		to := from.AddDate(0, 0, 7)
		period = timecalc.ISOWeekLabel(now)
		var inWeek []model.FocusSession
		for _, s := range sessions {
			if timecalc.Within(s.StartedAt, from, to) {
				inWeek = append(inWeek, s)
			}
		}
		sessions = inWeek
	}

	if err := writeReport(os.Stdout, buildReport(period, sessions), reportFormat); err != nil {
		exitErr(1, err)
	}
	return nil
}

// buildReport sums recorded minutes per task, ordered by task id.
func buildReport(period string, sessions []model.FocusSession) report {
	totals := map[int64]float64{}
	for _, s := range sessions {
		totals[s.Task] += s.Minutes()
	}

	r := report{Period: period, Tasks: []taskTotal{}}
	for task, minutes := range totals {
		r.Tasks = append(r.Tasks, taskTotal{Task: task, Minutes: minutes})
		r.TotalMinutes += minutes
	}
	sort.Slice(r.Tasks, func(i, j int) bool { return r.Tasks[i].Task < r.Tasks[j].Task })
	return r
}

func writeReport(w io.Writer, r report, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "task,duration_minutes")
		for _, t := range r.Tasks {
			fmt.Fprintf(w, "%d,%.2f\n", t.Task, t.Minutes)
		}
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		fmt.Fprintf(w, "Focus report – %s\n", r.Period)
		fmt.Fprintln(w, "--------------------------------")
		for _, t := range r.Tasks {
			fmt.Fprintf(w, "%-20s%s\n", fmt.Sprintf("Task %d", t.Task), timecalc.FormatMinutes(t.Minutes))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.FormatMinutes(r.TotalMinutes))
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", format)
	}
	return nil
}
