package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active focus session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	fmt.Println(tui.RenderStatus(tui.Summarize(e.focus, time.Now().UTC(), e.loc), e.loc))
	if synced, ok, err := e.cache.Setting(syncedAtKey); err == nil && ok {
		if t, err := time.Parse(time.RFC3339, synced); err == nil {
			fmt.Printf("Last sync: %s\n", t.In(e.loc).Format("2006-01-02 15:04"))
		}
	}
	return nil
}
