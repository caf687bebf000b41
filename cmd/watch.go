package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the active focus session",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	persist := func() error {
		return e.cache.SaveState(e.focus.Snapshot())
	}
	p := tea.NewProgram(tui.NewWatch(e.ctx, e.focus, e.loc, persist))
	if _, err := p.Run(); err != nil {
		exitErr(2, fmt.Errorf("watch: %w", err))
	}
	return nil
}
