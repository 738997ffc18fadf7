package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/forms"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/internal/setup"
	"github.com/marcus/studysync/pkg/monitor/keymap"
)

func (m Model) currentContext() keymap.Context {
	switch {
	case m.HelpOpen:
		return keymap.ContextHelp
	case m.ConfirmOpen:
		return keymap.ContextConfirm
	case m.Pane != PaneList:
		return keymap.ContextDetail
	}
	return keymap.ContextMain
}

// handleFormUpdate forwards everything to the setup form while it is open.
func (m Model) handleFormUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.Disp.CancelSetup()
		m.Disp.Banner().Info("Setup cancelled")
		m.closeSetup()
		return m, nil
	}
	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width = sizeMsg.Width
		m.Height = sizeMsg.Height
	}

	form, cmd := m.SetupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.SetupForm = f
	}

	switch m.SetupForm.State {
	case huh.StateCompleted:
		data := m.SetupData
		m.closeSetup()
		m.Pending++
		return m, m.completeSetup(data)
	case huh.StateAborted:
		m.Disp.CancelSetup()
		m.closeSetup()
		return m, nil
	}
	return m, cmd
}

// handleKey processes key input using the keymap registry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, found := m.Keymap.Lookup(msg, m.currentContext())
	if !found {
		if m.Pane != PaneList {
			var vpCmd tea.Cmd
			m.Detail, vpCmd = m.Detail.Update(msg)
			return m, vpCmd
		}
		return m, nil
	}
	return m.executeCommand(cmd)
}

// executeCommand executes a keymap command and returns the updated model and any tea.Cmd
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.HelpOpen = !m.HelpOpen
		return m, nil

	case keymap.CmdRefresh:
		return m, m.fetchData()

	case keymap.CmdCursorDown:
		m.Cursor++
	case keymap.CmdCursorUp:
		m.Cursor--
	case keymap.CmdCursorTop:
		m.Cursor = 0
	case keymap.CmdCursorBottom:
		m.Cursor = len(m.Rows) - 1
	case keymap.CmdHalfPageDown:
		m.Cursor += m.listHeight() / 2
	case keymap.CmdHalfPageUp:
		m.Cursor -= m.listHeight() / 2

	case keymap.CmdOpenDetails:
		if _, ok := m.Selected(); ok {
			m.Pane = PaneDetail
			m.refreshDetail()
			m.Detail.GotoTop()
		}
		return m, nil

	case keymap.CmdClose:
		m.Pane = PaneList
		return m, nil

	case keymap.CmdDismissBanner:
		m.Disp.Banner().Dismiss()
		return m, nil

	case keymap.CmdToggleCompleted:
		m.ShowCompleted = !m.ShowCompleted
		m.setRows()
		return m, nil

	case keymap.CmdSync:
		if !m.controlEnabled(gate.ControlSync) {
			return m, nil
		}
		m.Pending++
		return m, m.runSync()

	case keymap.CmdInsights:
		if !m.controlEnabled(gate.ControlInsights) {
			return m, nil
		}
		m.Pending++
		return m, m.loadInsights()

	case keymap.CmdGenerateSummary:
		return m.onSelected(actions.ActionGenerateSummary, gate.ControlGenerateSummary)
	case keymap.CmdRemoveSummary:
		return m.onSelected(actions.ActionRemoveSummary, "")
	case keymap.CmdAddReminder:
		return m.onSelected(actions.ActionAddReminder, gate.ControlAddReminder)
	case keymap.CmdRemoveReminder:
		return m.onSelected(actions.ActionRemoveReminder, "")

	case keymap.CmdCycleStatus:
		a, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.Pending++
		return m, m.runAction(actions.ActionUpdate, actions.Args{
			AssignmentID: a.ID,
			Fields:       map[string]any{"status": string(nextStatus(a.Status))},
		})

	case keymap.CmdDelete:
		a, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.ConfirmOpen = true
		m.ConfirmID = a.ID
		m.ConfirmTitle = a.Title
		return m, nil

	case keymap.CmdConfirm:
		id := m.ConfirmID
		m.ConfirmOpen = false
		m.ConfirmID, m.ConfirmTitle = "", ""
		if id == "" {
			return m, nil
		}
		m.Pending++
		return m, m.runAction(actions.ActionDelete, actions.Args{AssignmentID: id})

	case keymap.CmdCancel:
		m.ConfirmOpen = false
		m.ConfirmID, m.ConfirmTitle = "", ""
		return m, nil
	}

	m.clampCursor()
	if m.Pane == PaneDetail {
		m.refreshDetail()
	}
	return m, nil
}

// controlEnabled reports whether id is usable, showing the reason as an
// info banner when it is not. An empty id is always enabled.
func (m Model) controlEnabled(id gate.ControlID) bool {
	if id == "" {
		return true
	}
	c := m.Controls[id]
	if c.Disabled {
		m.Disp.Banner().Info("%s", c.Reason)
		return false
	}
	return true
}

func (m Model) onSelected(name actions.Name, control gate.ControlID) (tea.Model, tea.Cmd) {
	a, ok := m.Selected()
	if !ok || !m.controlEnabled(control) {
		return m, nil
	}
	m.Pending++
	return m, m.runAction(name, actions.Args{AssignmentID: a.ID})
}

// runAction dispatches name in the background. Failures are already on the
// banner; the message only triggers a reload.
func (m Model) runAction(name actions.Name, args actions.Args) tea.Cmd {
	disp, ctx := m.Disp, m.ctx
	return func() tea.Msg {
		err := disp.Dispatch(ctx, name, args)
		return ActionDoneMsg{Action: name, Err: err}
	}
}

func (m Model) runSync() tea.Cmd {
	events := m.events
	return m.runAction(actions.ActionSync, actions.Args{
		Progress: func(ev models.SyncEvent) {
			// Progress is advisory; a full queue drops the event and the
			// next one replaces it.
			select {
			case events <- SyncProgressMsg(ev):
			default:
			}
		},
	})
}

func (m Model) loadInsights() tea.Cmd {
	disp, ctx, width := m.Disp, m.ctx, max(m.Width-6, 40)
	return func() tea.Msg {
		end := disp.DefaultEndDate()
		res, err := disp.Insights(ctx, end, false)
		if err != nil {
			return InsightsMsg{Err: err}
		}
		return InsightsMsg{Result: res, Rendered: renderMarkdown(output.InsightsMarkdown(res, end), width)}
	}
}

func (m Model) loadSetupForm() tea.Cmd {
	disp, ctx := m.Disp, m.ctx
	return func() tea.Msg {
		f, err := disp.SetupForm(ctx)
		return SetupFormMsg{Form: f, Err: err}
	}
}

func (m Model) completeSetup(f *setup.Form) tea.Cmd {
	disp, ctx := m.Disp, m.ctx
	return func() tea.Msg {
		_, err := disp.CompleteSetup(ctx, f)
		return ActionDoneMsg{Action: actions.ActionSaveSettings, Err: err}
	}
}

// fetchData reloads the store from the backend.
func (m Model) fetchData() tea.Cmd {
	disp, ctx := m.Disp, m.ctx
	return func() tea.Msg {
		err := disp.Reload(ctx)
		return RefreshDataMsg{Err: err, At: time.Now()}
	}
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	if m.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) scheduleBannerTick() tea.Cmd {
	return tea.Tick(bannerTick, func(t time.Time) tea.Msg {
		return bannerTickMsg(t)
	})
}

// waitForEvent delivers the next gate or sync event. Gate changes are
// coalesced into one ControlsMsg carrying the controls at delivery time.
func (m Model) waitForEvent() tea.Cmd {
	events, changed, g, ctx := m.events, m.controlsChanged, m.Disp.Gate(), m.ctx
	return func() tea.Msg {
		select {
		case <-changed:
			return ControlsMsg(g.Controls())
		case ev := <-events:
			return ev
		case <-ctx.Done():
			return nil
		}
	}
}

func setupRedirect(err error) bool {
	var setupErr *actions.SetupRequiredError
	return errors.As(err, &setupErr)
}

func setupHuhForm(f *setup.Form) *huh.Form {
	return forms.Setup(f)
}

func nextStatus(s models.Status) models.Status {
	switch s {
	case models.StatusInProgress:
		return models.StatusCompleted
	case models.StatusCompleted:
		return models.StatusNotStarted
	}
	return models.StatusInProgress
}

func progressText(ev models.SyncEvent) string {
	if ev.Type != models.SyncProgress {
		return ""
	}
	msg := strings.TrimSpace(ev.Message)
	if ev.Assignment != nil {
		msg = ev.Assignment.Title
	}
	return fmt.Sprintf("%d%% %s", ev.Progress, msg)
}
