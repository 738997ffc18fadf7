package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/output"
)

// renderView renders the full TUI
func (m Model) renderView() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}

	if m.SetupOpen && m.SetupForm != nil {
		return m.renderSetup()
	}

	var body string
	switch {
	case m.HelpOpen:
		body = m.renderHelp()
	case m.Pane == PaneDetail:
		body = m.renderPane("DETAILS")
	case m.Pane == PaneInsights:
		body = m.renderPane("INSIGHTS")
	default:
		body = m.renderList()
	}
	if m.ConfirmOpen {
		body = m.renderConfirm()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderBanner(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := panelTitleStyle.Render("STUDYSYNC")
	var parts []string
	parts = append(parts, title)

	state := m.Disp.Gate().State()
	if state.Idle() {
		parts = append(parts, enabledStyle.Render("idle"))
	}
	for _, k := range gate.Kinds() {
		if state.Active(k) {
			parts = append(parts, m.Spinner.View()+" "+k.String())
		}
	}
	if m.Progress != "" {
		parts = append(parts, subtleStyle.Render(m.Progress))
	}
	if m.Err != nil {
		parts = append(parts, overdueStyle.Render("offline: "+m.Err.Error()))
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.Width, "…")
}

func (m Model) renderList() string {
	height := m.listHeight()
	width := max(m.Width-4, 20)

	var lines []string
	if len(m.Rows) == 0 {
		lines = append(lines, subtleStyle.Render("No assignments. Press S to sync."))
	}
	now := time.Now()
	end := min(m.Offset+height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		line := ansi.Truncate(rowText(m.Rows[i], now), width, "…")
		if i == m.Cursor {
			line = selectedStyle.Width(width).Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	title := "ASSIGNMENTS"
	if m.ShowCompleted {
		title += " (all)"
	}
	content := panelTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return activePanelStyle.Width(width).Render(content)
}

func rowText(a models.Assignment, now time.Time) string {
	due := "no due date"
	style := subtleStyle
	if t, ok := a.Due(); ok {
		due = humanize.RelTime(t, now, "ago", "from now")
		if t.Before(now) && !a.IsCompleted() {
			style = overdueStyle
		}
	}
	parts := []string{
		formatStatus(a.Status),
		titleStyle.Render(a.Title),
		subtleStyle.Render(a.CourseName),
		style.Render(due),
		formatPriority(a.Priority),
	}
	if b := output.Badges(&a); b != "" {
		parts = append(parts, b)
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderPane(title string) string {
	width := max(m.Width-4, 20)
	content := panelTitleStyle.Render(title) + "\n" + m.Detail.View()
	return activePanelStyle.Width(width).Render(content)
}

func (m Model) renderHelp() string {
	return panelStyle.Width(max(m.Width-4, 20)).Render(m.Keymap.GenerateHelp())
}

func (m Model) renderConfirm() string {
	text := fmt.Sprintf("Delete %q?\n\n%s", m.ConfirmTitle, helpStyle.Render("y confirm  n cancel"))
	box := confirmStyle.Render(text)
	return lipgloss.Place(m.Width, m.listHeight()+2, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderSetup() string {
	header := panelTitleStyle.Render("SETUP")
	hint := helpStyle.Render("Finish setup to continue. esc cancels.")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.SetupForm.View(), hint)
}

func (m Model) renderBanner() string {
	msg, ok := m.Disp.Banner().Current()
	if !ok {
		return ""
	}
	style, found := bannerStyles[msg.Kind]
	if !found {
		return msg.Text
	}
	return style.Render(ansi.Truncate(msg.Text, max(m.Width-2, 10), "…"))
}

func (m Model) renderFooter() string {
	var disabled []string
	for _, id := range gate.AllControls {
		c, ok := m.Controls[id]
		if !ok || !c.Disabled {
			continue
		}
		disabled = append(disabled, disabledStyle.Render(string(id))+subtleStyle.Render(": "+c.Reason))
	}

	parts := []string{helpStyle.Render(m.Keymap.FooterHelp())}
	if !m.LastRefresh.IsZero() {
		parts = append(parts, timestampStyle.Render("updated "+humanize.Time(m.LastRefresh)))
	}
	footer := strings.Join(parts, "  ")
	if len(disabled) > 0 {
		footer += "\n" + strings.Join(disabled, "  ")
	}
	return footer
}

// detailText renders one assignment for the detail pane.
func detailText(a models.Assignment, now time.Time) string {
	return output.FormatAssignmentLong(&a, now)
}
