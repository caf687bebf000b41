package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/lma/internal/focus"
	"github.com/Tiliavir/lma/internal/model"
)

type tickMsg time.Time

type stoppedMsg struct {
	session model.FocusSession
	success bool
	err     error
}

type refreshedMsg struct {
	err error
}

// Watch is the live focus view. It holds no timer of its own: every tick it
// asks the store for the effective elapsed time again.
type Watch struct {
	ctx     context.Context
	store   *focus.Store
	loc     *time.Location
	persist func() error
	now     func() time.Time

	help    help.Model
	status  string
	isError bool
	busy    bool
}

// NewWatch creates the view. persist is called after every state change so
// the next lma invocation sees it; it may be nil.
func NewWatch(ctx context.Context, s *focus.Store, loc *time.Location, persist func() error) Watch {
	h := help.New()
	h.ShowAll = false
	if persist == nil {
		persist = func() error { return nil }
	}
	return Watch{
		ctx:     ctx,
		store:   s,
		loc:     loc,
		persist: persist,
		now:     func() time.Time { return time.Now().UTC() },
		help:    h,
	}
}

func (w Watch) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.help.Width = msg.Width
		return w, nil

	case tickMsg:
		return w, tickCmd()

	case tea.KeyMsg:
		return w.handleKey(msg)

	case stoppedMsg:
		w.busy = false
		if msg.err != nil {
			w.setError(msg.err)
			return w, nil
		}
		verb := "Abandoned"
		if msg.success {
			verb = "Completed"
		}
		w.setStatus(fmt.Sprintf("%s session %d (%.1f min)", verb, msg.session.ID, msg.session.Minutes()))
		w.save()
		return w, nil

	case refreshedMsg:
		w.busy = false
		if msg.err != nil {
			w.setError(msg.err)
			return w, nil
		}
		w.setStatus("Refreshed")
		w.save()
		return w, nil
	}
	return w, nil
}

func (w Watch) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return w, tea.Quit
	case key.Matches(msg, keys.Help):
		w.help.ShowAll = !w.help.ShowAll
		return w, nil
	}
	if w.busy {
		return w, nil
	}

	switch {
	case key.Matches(msg, keys.Pause):
		taskID, ok := w.store.ActiveTaskID()
		if !ok {
			w.setError(focus.ErrNoActiveSession)
			return w, nil
		}
		if w.store.IsPaused(taskID) {
			w.store.Resume(taskID)
			w.setStatus("Resumed")
		} else {
			w.store.Pause(taskID)
			w.setStatus("Paused")
		}
		w.save()
		return w, nil
	case key.Matches(msg, keys.Done):
		return w.stop(true)
	case key.Matches(msg, keys.Abandon):
		return w.stop(false)
	case key.Matches(msg, keys.Refresh):
		w.busy = true
		w.setStatus("Refreshing…")
		return w, w.refreshCmd()
	}
	return w, nil
}

func (w Watch) stop(success bool) (tea.Model, tea.Cmd) {
	if _, ok := w.store.Active(); !ok {
		w.setError(focus.ErrNoActiveSession)
		return w, nil
	}
	w.busy = true
	w.setStatus("Stopping…")
	return w, w.stopCmd(success)
}

func (w Watch) stopCmd(success bool) tea.Cmd {
	ctx, s := w.ctx, w.store
	return func() tea.Msg {
		sess, err := s.StopActive(ctx, success)
		return stoppedMsg{session: sess, success: success, err: err}
	}
}

func (w Watch) refreshCmd() tea.Cmd {
	ctx, s := w.ctx, w.store
	return func() tea.Msg {
		return refreshedMsg{err: s.FetchAll(ctx)}
	}
}

func (w *Watch) save() {
	if err := w.persist(); err != nil {
		w.setError(fmt.Errorf("saving state: %w", err))
	}
}

func (w *Watch) setStatus(text string) {
	w.status = text
	w.isError = false
}

func (w *Watch) setError(err error) {
	w.status = err.Error()
	if errors.Is(err, focus.ErrNoActiveSession) {
		w.status = "No active focus session"
	}
	w.isError = true
}

func (w Watch) View() string {
	var b strings.Builder
	b.WriteString(RenderStatus(Summarize(w.store, w.now(), w.loc), w.loc))
	b.WriteString("\n")
	if w.status != "" {
		if w.isError {
			b.WriteString(footerStyle.Render(errorStyle.Render(w.status)))
		} else {
			b.WriteString(footerStyle.Render(successStyle.Render(w.status)))
		}
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render(w.help.View(keys)))
	return b.String()
}
