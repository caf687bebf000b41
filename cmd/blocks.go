package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/lma/internal/collection"
	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
	"github.com/Tiliavir/lma/internal/storage"
	"github.com/Tiliavir/lma/internal/timecalc"
)

var (
	blocksToday bool

	blockTitle string
	blockStart string
	blockEnd   string
	blockTask  int64
	blockColor string
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Plan the day in timeline blocks",
}

var blocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocks by start time",
	Args:  cobra.NoArgs,
	RunE:  runBlocksList,
}

var blocksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a block",
	Args:  cobra.NoArgs,
	RunE:  runBlocksAdd,
}

var blocksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a block",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocksRm,
}

func init() {
	blocksListCmd.Flags().BoolVar(&blocksToday, "today", false, "Only blocks within today's wake/sleep window")

	blocksAddCmd.Flags().StringVar(&blockTitle, "title", "", "Title")
	blocksAddCmd.Flags().StringVar(&blockStart, "start", "", `Start, "HH:MM" (today) or "YYYY-MM-DD HH:MM"`)
	blocksAddCmd.Flags().StringVar(&blockEnd, "end", "", `End, "HH:MM" (same day as start) or "YYYY-MM-DD HH:MM"`)
	blocksAddCmd.Flags().Int64Var(&blockTask, "task", 0, "Task the block is planned for")
	blocksAddCmd.Flags().StringVar(&blockColor, "color", "", "Color, e.g. #6C63FF")

	blocksCmd.AddCommand(blocksListCmd, blocksAddCmd, blocksRmCmd)
}

func runBlocksList(cmd *cobra.Command, args []string) error {
	e := openEnv(commandContext(cmd))
	defer e.close()
	e.loadFocus(false)

	cached, err := e.cache.LoadBlocks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read cached blocks: %v\n", err)
	}
	blocks := e.blocks()
	blocks.Restore(cached)
	_ = blocks.FetchAll(e.ctx)
	if err := refreshedBlocks(blocks, e.cache); err != nil {
		exitErr(exitCode(err), fmt.Errorf("loading blocks: %w", err))
	}

	items := collection.SortedByDate(blocks.Items())
	if blocksToday {
		from, to, err := e.cfg.DayWindow(time.Now().In(e.loc))
		if err != nil {
			exitErr(2, err)
		}
		items = collection.Between(items, from, to)
	}
	activeBlock, hasActive := e.focus.ActiveBlockID()
	if !hasActive {
		activeBlock = 0
	}
	writeBlocks(os.Stdout, items, activeBlock, e.focus.CompletedBlocks(), e.loc)
	return nil
}

// refreshedBlocks settles a fetch: on success the cache is rewritten, on
// failure the cached items stay in place and only a warning is printed.
// The error is returned only when there is nothing to show.
func refreshedBlocks(blocks *collection.Blocks, cache *storage.Store) error {
	if err := blocks.Err(); err != nil {
		if len(blocks.Items()) == 0 {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: showing cached blocks: %v\n", err)
		return nil
	}
	if err := cache.SaveBlocks(blocks.Items()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not cache blocks: %v\n", err)
	}
	return nil
}

func writeBlocks(w io.Writer, blocks []model.Block, activeBlock int64, done map[int64]focus.CompletedBlock, loc *time.Location) {
	if len(blocks) == 0 {
		fmt.Fprintln(w, "No blocks planned.")
		return
	}
	var currentDay string
	for _, b := range blocks {
		start := b.StartDate.In(loc)
		if day := start.Format("2006-01-02"); day != currentDay {
			fmt.Fprintln(w, day)
			currentDay = day
		}
		task := ""
		if b.Task != nil {
			task = fmt.Sprintf("  task %d", *b.Task)
		}
		state := ""
		switch cb, ok := done[b.ID]; {
		case b.ID == activeBlock:
			state = "  [in progress]"
		case ok:
			state = fmt.Sprintf("  [done %s]", timecalc.FormatMinutes(cb.Minutes))
		}
		fmt.Fprintf(w, "%5d  %s–%s  %-24s %s%s%s\n",
			b.ID,
			start.Format("15:04"),
			b.EndDate.In(loc).Format("15:04"),
			b.Title,
			timecalc.FormatDuration(int64(b.Planned().Seconds())),
			task,
			state,
		)
	}
}

func runBlocksAdd(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(blockTitle) == "" || blockStart == "" || blockEnd == "" {
		fmt.Fprintln(os.Stderr, "--title, --start and --end are required.")
		os.Exit(1)
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	now := time.Now().In(e.loc)
	start, err := parseBlockTime(blockStart, now, e.loc)
	if err != nil {
		exitErr(1, fmt.Errorf("--start: %w", err))
	}
	end, err := parseBlockTime(blockEnd, start, e.loc)
	if err != nil {
		exitErr(1, fmt.Errorf("--end: %w", err))
	}
	if !end.After(start) {
		exitErr(1, fmt.Errorf("--end must be after --start"))
	}

	in := model.BlockInput{Title: &blockTitle, StartDate: &start, EndDate: &end}
	if cmd.Flags().Changed("task") {
		in.Task = &blockTask
	}
	if blockColor != "" {
		in.Color = &blockColor
	}

	b, err := e.blocks().Create(e.ctx, in)
	if err != nil {
		exitErr(exitCode(err), err)
	}
	fmt.Printf("Created block %d %q %s–%s\n", b.ID, b.Title,
		b.StartDate.In(e.loc).Format("15:04"), b.EndDate.In(e.loc).Format("15:04"))
	return nil
}

func runBlocksRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		exitErr(1, err)
	}

	e := openEnv(commandContext(cmd))
	defer e.close()

	if err := e.blocks().Remove(e.ctx, id); err != nil {
		exitErr(exitCode(err), err)
	}
	fmt.Printf("Deleted block %d\n", id)
	return nil
}

// parseBlockTime accepts "YYYY-MM-DD HH:MM" or "HH:MM" on the day of ref.
func parseBlockTime(s string, ref time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	return timecalc.AtClock(ref.In(loc), s)
}
