// Package monitor is the interactive assignment dashboard. Every action
// goes through the dispatcher, so the gate decides what may start and the
// footer shows why a control is disabled.
package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/setup"
	"github.com/marcus/studysync/internal/snapshot"
	"github.com/marcus/studysync/pkg/monitor/keymap"
)

const bannerTick = time.Second

// Model is the main Bubble Tea model for the monitor TUI
type Model struct {
	Disp   *actions.Dispatcher
	Keymap *keymap.Registry

	ctx    context.Context
	events chan tea.Msg
	// controlsChanged holds at most one pending signal; the receiver reads
	// the gate's current controls, so the latest state is never lost.
	controlsChanged chan struct{}
	unsub           func()

	// Window dimensions
	Width  int
	Height int

	// Assignment list
	Rows          []models.Assignment
	Cursor        int
	Offset        int
	ShowCompleted bool

	Pane     Pane
	Detail   viewport.Model
	Insights string

	HelpOpen bool

	ConfirmOpen  bool
	ConfirmID    string
	ConfirmTitle string

	// Setup form shown after a redirect
	SetupOpen bool
	SetupData *setup.Form
	SetupForm *huh.Form

	Controls gate.Controls
	Pending  int
	Spinner  spinner.Model
	Progress string

	RefreshInterval time.Duration
	LastRefresh     time.Time
	Err             error
}

// NewModel builds a monitor over disp. The gate is subscribed for control
// updates until Close is called.
func NewModel(ctx context.Context, disp *actions.Dispatcher, reg *keymap.Registry, interval time.Duration) Model {
	if reg == nil {
		reg = keymap.NewRegistry()
		keymap.RegisterDefaults(reg)
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		Disp:            disp,
		Keymap:          reg,
		ctx:             ctx,
		events:          make(chan tea.Msg, 64),
		controlsChanged: make(chan struct{}, 1),
		Controls:        disp.Gate().Controls(),
		Spinner:         sp,
		RefreshInterval: interval,
		Detail:          viewport.New(80, 20),
	}
	changed := m.controlsChanged
	m.unsub = disp.Gate().Subscribe(func(gate.Controls) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	return m
}

// Close stops the gate subscription.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchData(),
		m.scheduleTick(),
		m.scheduleBannerTick(),
		m.waitForEvent(),
		m.Spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ticks first so an open form cannot stall the refresh chain.
	switch msg := msg.(type) {
	case TickMsg:
		return m, tea.Batch(m.fetchData(), m.scheduleTick())
	case bannerTickMsg:
		return m, m.scheduleBannerTick()
	case ControlsMsg:
		m.Controls = gate.Controls(msg)
		return m, m.waitForEvent()
	case SyncProgressMsg:
		m.Progress = progressText(models.SyncEvent(msg))
		return m, m.waitForEvent()
	}

	if m.SetupOpen && m.SetupForm != nil {
		return m.handleFormUpdate(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Detail.Width = max(msg.Width-4, 20)
		m.Detail.Height = max(msg.Height-6, 5)
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case RefreshDataMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.LastRefresh = msg.At
		m.setRows()
		return m, nil

	case ActionDoneMsg:
		m.Pending = max(m.Pending-1, 0)
		if msg.Action == actions.ActionSync {
			m.Progress = ""
		}
		if redirect := setupRedirect(msg.Err); redirect {
			return m, m.loadSetupForm()
		}
		return m, m.fetchData()

	case InsightsMsg:
		m.Pending = max(m.Pending-1, 0)
		if msg.Err != nil {
			return m, nil
		}
		m.Insights = msg.Rendered
		m.Pane = PaneInsights
		m.Detail.SetContent(m.Insights)
		m.Detail.GotoTop()
		return m, nil

	case SetupFormMsg:
		if msg.Err != nil {
			m.Disp.CancelSetup()
			return m, nil
		}
		m.openSetup(msg.Form)
		return m, m.SetupForm.Init()
	}

	if m.Pane != PaneList {
		var cmd tea.Cmd
		m.Detail, cmd = m.Detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return m.renderView()
}

// setRows reselects the visible rows from the store, keeping the cursor on
// the same assignment when it is still present.
func (m *Model) setRows() {
	var selected string
	if m.Cursor >= 0 && m.Cursor < len(m.Rows) {
		selected = m.Rows[m.Cursor].ID
	}
	m.Rows = m.Disp.Store().Select(snapshot.Filter{ShowCompleted: m.ShowCompleted})
	m.Cursor = 0
	for i, a := range m.Rows {
		if a.ID == selected {
			m.Cursor = i
			break
		}
	}
	m.clampCursor()
	m.refreshDetail()
}

// Selected returns the assignment under the cursor.
func (m Model) Selected() (models.Assignment, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return models.Assignment{}, false
	}
	return m.Rows[m.Cursor], true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	visible := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if visible > 0 && m.Cursor >= m.Offset+visible {
		m.Offset = m.Cursor - visible + 1
	}
}

func (m Model) listHeight() int {
	h := m.Height - 6
	if h < 1 {
		return 10
	}
	return h
}

func (m *Model) refreshDetail() {
	switch m.Pane {
	case PaneDetail:
		if a, ok := m.Selected(); ok {
			m.Detail.SetContent(detailText(a, time.Now()))
		}
	case PaneInsights:
		m.Detail.SetContent(m.Insights)
	}
}

func (m *Model) openSetup(f *setup.Form) {
	m.SetupOpen = true
	m.SetupData = f
	m.SetupForm = setupHuhForm(f)
}

func (m *Model) closeSetup() {
	m.SetupOpen = false
	m.SetupData = nil
	m.SetupForm = nil
}
