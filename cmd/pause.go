package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active focus session",
	Args:  cobra.NoArgs,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused focus session",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func runPause(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	taskID := activeTaskOrExit(e)
	if e.focus.IsPaused(taskID) {
		fmt.Println("Already paused.")
		return nil
	}
	e.focus.Pause(taskID)
	e.saveFocus()
	fmt.Printf("Paused task %d.\n", taskID)
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(true)

	taskID := activeTaskOrExit(e)
	if !e.focus.IsPaused(taskID) {
		fmt.Println("Not paused.")
		return nil
	}
	e.focus.Resume(taskID)
	e.saveFocus()
	fmt.Printf("Resumed task %d. Paused so far: %s\n",
		taskID, formatElapsed(int64(e.focus.PauseState().Total.Seconds())))
	return nil
}

func activeTaskOrExit(e *env) int64 {
	taskID, ok := e.focus.ActiveTaskID()
	if !ok {
		fmt.Fprintln(os.Stderr, "No active focus session.")
		os.Exit(1)
	}
	return taskID
}
