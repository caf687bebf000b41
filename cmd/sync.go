package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const syncedAtKey = "synced_at"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reload focus sessions from the server",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()

	// Keep the pause of a still-running session across the reload.
	e.loadFocus(false)
	if err := e.focus.FetchAll(e.ctx); err != nil {
		exitErr(exitCode(err), fmt.Errorf("sync failed: %w", err))
	}
	e.saveFocus()
	if err := e.cache.SetSetting(syncedAtKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		exitErr(2, err)
	}

	fmt.Printf("Synced %d focus sessions.\n", len(e.focus.Sessions()))
	if active, ok := e.focus.Active(); ok {
		fmt.Printf("Active: task %d (session %d) since %s\n",
			active.Task, active.ID, active.StartedAt.In(e.loc).Format("15:04"))
	} else {
		fmt.Println("No active focus session.")
	}
	return nil
}
