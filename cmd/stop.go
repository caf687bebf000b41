package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/focus"
)

var (
	stopSession int64
	stopFailed  bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active focus session",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().Int64Var(&stopSession, "session", 0, "Session id to stop (default: the active one)")
	stopCmd.Flags().BoolVar(&stopFailed, "failed", false, "Mark the session as not completed")
}

func runStop(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	elapsed := stopElapsed(e.focus, stopSession, time.Now().UTC())

	var err error
	success := !stopFailed
	if stopSession != 0 {
		_, err = e.focus.Stop(e.ctx, stopSession, success)
	} else {
		_, err = e.focus.StopActive(e.ctx, success)
	}
	if errors.Is(err, focus.ErrNoActiveSession) {
		fmt.Fprintln(os.Stderr, "No active focus session to stop.")
		os.Exit(1)
	}
	if err != nil {
		exitErr(exitCode(err), err)
	}
	e.saveFocus()

	fmt.Println(stopSummary(stopFailed, elapsed))
	return nil
}

// stopElapsed is the worked time of the session about to be stopped, read
// before Stop clears the pause. Zero when sessionID is not the active one.
func stopElapsed(f *focus.Store, sessionID int64, now time.Time) time.Duration {
	active, ok := f.Active()
	if !ok || (sessionID != 0 && active.ID != sessionID) {
		return 0
	}
	return f.EffectiveElapsed(active.Task, now)
}

func stopSummary(failed bool, elapsed time.Duration) string {
	outcome := "completed"
	if failed {
		outcome = "abandoned"
	}
	return fmt.Sprintf("Stopped focus session (%s). Elapsed: %s", outcome, formatElapsed(int64(elapsed/time.Second)))
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
