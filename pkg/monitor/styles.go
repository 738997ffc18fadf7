package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/status"
)

var (
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")
	infoColor    = lipgloss.Color("45")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	titleStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("237")).Bold(true)
	disabledStyle  = lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true)
	enabledStyle   = lipgloss.NewStyle().Foreground(successColor)
	overdueStyle   = lipgloss.NewStyle().Foreground(errorColor)

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusNotStarted: lipgloss.NewStyle().Foreground(infoColor),
		models.StatusInProgress: lipgloss.NewStyle().Foreground(warningColor),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(mutedColor),
	}

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(warningColor),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(mutedColor),
	}

	bannerStyles = map[status.Kind]lipgloss.Style{
		status.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(successColor).Padding(0, 1),
		status.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(infoColor).Padding(0, 1),
		status.KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(warningColor).Padding(0, 1),
		status.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(errorColor).Padding(0, 1),
	}

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(errorColor).
			Padding(1, 2)
)

func formatStatus(s models.Status) string {
	if s == "" {
		s = models.StatusNotStarted
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

func formatPriority(p models.Priority) string {
	if p == "" {
		p = models.PriorityMedium
	}
	if style, ok := priorityStyles[p]; ok {
		return style.Render(string(p))
	}
	return string(p)
}
