package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/focus"
)

var (
	startNotes string
	startBlock int64
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start a focus session for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startNotes, "notes", "", "Notes for the session")
	startCmd.Flags().Int64Var(&startBlock, "block", 0, "Timeline block this session belongs to")
}

func runStart(cmd *cobra.Command, args []string) error {
	taskID, err := parseID(args[0])
	if err != nil {
		exitErr(1, fmt.Errorf("invalid task id %q", args[0]))
	}
	var blockID *int64
	if cmd.Flags().Changed("block") {
		blockID = &startBlock
	}

	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	sess, err := e.focus.Start(e.ctx, taskID, startNotes, blockID)
	if errors.Is(err, focus.ErrConflict) {
		active, _ := e.focus.Active()
		fmt.Fprintf(os.Stderr, "Task %d already has an active focus session (%d). Stop it first: lma stop\n",
			active.Task, active.ID)
		os.Exit(1)
	}
	if err != nil {
		exitErr(exitCode(err), err)
	}
	e.saveFocus()

	fmt.Printf("Started focus session %d for task %d at %s\n",
		sess.ID, sess.Task, sess.StartedAt.In(e.loc).Format("15:04:05"))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
