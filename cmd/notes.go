package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/model"
)

var (
	noteTitle   string
	noteContent string
	noteColor   string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE:  runNotesList,
}

var notesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	Args:  cobra.NoArgs,
	RunE:  runNotesAdd,
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesEdit,
}

var notesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesRm,
}

func init() {
	for _, c := range []*cobra.Command{notesAddCmd, notesEditCmd} {
		c.Flags().StringVar(&noteTitle, "title", "", "Title")
		c.Flags().StringVar(&noteContent, "content", "", "Content")
		c.Flags().StringVar(&noteColor, "color", "", "Background color, e.g. #FFF59D")
	}
	notesCmd.AddCommand(notesListCmd, notesAddCmd, notesEditCmd, notesRmCmd)
}

func runNotesList(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()

	notes := e.notes()
	if err := notes.FetchAll(e.ctx); err != nil {
		exitErr(exitCode(err), fmt.Errorf("loading notes: %w", err))
	}
	items := notes.Items()
	if len(items) == 0 {
		fmt.Println("No notes.")
		return nil
	}
	for _, n := range items {
		updated := ""
		if !n.UpdatedAt.IsZero() {
			updated = n.UpdatedAt.In(e.loc).Format("2006-01-02 15:04")
		}
		fmt.Printf("%5d  %-30s %s\n", n.ID, n.Title, updated)
		if n.Content != "" {
			fmt.Printf("       %s\n", firstLine(n.Content))
		}
	}
	return nil
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	in := noteInputFromFlags(cmd)
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		fmt.Fprintln(os.Stderr, "--title is required.")
		os.Exit(1)
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	n, err := e.notes().Create(e.ctx, in)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	fmt.Printf("Created note %d %q\n", n.ID, n.Title)
	return nil
}

func runNotesEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		exitErr(1, err)
	}
	in := noteInputFromFlags(cmd)
	if in.Title == nil && in.Content == nil && in.BackgroundColor == nil {
		fmt.Fprintln(os.Stderr, "Nothing to change: pass --title, --content or --color.")
		os.Exit(1)
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	notes := e.notes()
	if err := notes.FetchAll(e.ctx); err != nil {
		exitErr(exitCode(err), fmt.Errorf("loading notes: %w", err))
	}
	prev, ok := notes.Find(id)
	if !ok {
		exitErr(1, fmt.Errorf("note %d not found", id))
	}

	n, err := notes.Update(e.ctx, id, in)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	fmt.Println(describeNoteEdit(prev, n))
	return nil
}

func runNotesRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		exitErr(1, err)
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	if err := e.notes().Remove(e.ctx, id); err != nil {
		exitErr(exitCode(err), err)
	}
	fmt.Printf("Deleted note %d\n", id)
	return nil
}

func describeNoteEdit(prev, n model.Note) string {
	if prev.Title != n.Title {
		return fmt.Sprintf("Updated note %d %q (was %q)", n.ID, n.Title, prev.Title)
	}
	return fmt.Sprintf("Updated note %d %q", n.ID, n.Title)
}

// noteInputFromFlags only sets fields whose flags were given.
func noteInputFromFlags(cmd *cobra.Command) model.NoteInput {
	var in model.NoteInput
	if cmd.Flags().Changed("title") {
		in.Title = &noteTitle
	}
	if cmd.Flags().Changed("content") {
		in.Content = &noteContent
	}
	if cmd.Flags().Changed("color") {
		in.BackgroundColor = &noteColor
	}
	return in
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
