// Package output provides styled terminal output helpers (banners,
// assignment and course formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/status"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	priorityStyle = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Banner prints a status banner message in its kind's style.
func Banner(m status.Message) {
	fmt.Println(FormatBanner(m))
}

// FormatBanner styles a banner message by kind.
func FormatBanner(m status.Message) string {
	switch m.Kind {
	case status.KindSuccess:
		return successStyle.Render(m.Text)
	case status.KindError:
		return errorStyle.Render(m.Text)
	case status.KindWarning:
		return warningStyle.Render(m.Text)
	default:
		return infoStyle.Render(m.Text)
	}
}

// FormatStatus formats a status with color
func FormatStatus(s models.Status) string {
	if s == "" {
		s = models.StatusNotStarted
	}
	style, ok := statusStyles[s]
	if !ok {
		return fmt.Sprintf("[%s]", s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatPriority formats a priority
func FormatPriority(p models.Priority) string {
	if p == "" {
		p = models.PriorityMedium
	}
	style, ok := priorityStyle[p]
	if !ok {
		return string(p)
	}
	return style.Render(string(p))
}

// FormatDue renders a due time with its distance from now, flagging
// overdue open work.
func FormatDue(a *models.Assignment, now time.Time) string {
	due, ok := a.Due()
	if !ok {
		return subtleStyle.Render("no due date")
	}
	text := fmt.Sprintf("%s (%s)", due.Local().Format("Mon Jan 2 15:04"), humanize.RelTime(due, now, "ago", "from now"))
	if due.Before(now) && !a.IsCompleted() {
		return errorStyle.Render(text + " overdue")
	}
	return text
}

// Badges returns the reminder and AI markers for a.
func Badges(a *models.Assignment) string {
	var b []string
	if a.ReminderAdded {
		b = append(b, "⏰")
	}
	if a.HasAISummary() {
		b = append(b, "✦")
	}
	return strings.Join(b, " ")
}

// FormatAssignmentShort formats an assignment on one line.
func FormatAssignmentShort(a *models.Assignment, now time.Time) string {
	parts := []string{
		titleStyle.Render(a.Title),
		subtleStyle.Render(a.CourseName),
		FormatDue(a, now),
		FormatPriority(a.Priority),
		FormatStatus(a.Status),
	}
	if b := Badges(a); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, subtleStyle.Render(a.ID))
	return strings.Join(parts, "  ")
}

// FormatAssignmentLong formats every field of an assignment.
func FormatAssignmentLong(a *models.Assignment, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(a.Title))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "ID: %s\n", a.ID)
	fmt.Fprintf(&sb, "Course: %s | Reminder list: %s\n", a.CourseName, orDash(a.ReminderList))
	fmt.Fprintf(&sb, "Due: %s\n", FormatDue(a, now))
	fmt.Fprintf(&sb, "Status: %s | Priority: %s\n", FormatStatus(a.Status), FormatPriority(a.Priority))
	if a.ReminderAdded {
		sb.WriteString("Reminder: added\n")
	}

	if a.Description != "" {
		sb.WriteString(SectionHeader("Description"))
		sb.WriteString(IndentString(strings.TrimSpace(a.Description), 2))
		sb.WriteString("\n")
	}

	if a.HasAISummary() {
		sb.WriteString(SectionHeader("AI summary"))
		sb.WriteString(IndentString(strings.TrimSpace(a.AINotes), 2))
		sb.WriteString("\n")
		if a.TimeEstimate != nil {
			fmt.Fprintf(&sb, "  Estimated time: %s hours\n", humanize.Ftoa(*a.TimeEstimate))
		}
		if a.SuggestedPriority != "" {
			fmt.Fprintf(&sb, "  Suggested priority: %s\n", a.SuggestedPriority)
		}
		if a.AIConfidence != nil {
			fmt.Fprintf(&sb, "  Confidence: %d%%", *a.AIConfidence)
			if a.AIConfidenceExplanation != "" {
				fmt.Fprintf(&sb, " (%s)", a.AIConfidenceExplanation)
			}
			sb.WriteString("\n")
		}
	}

	if a.UserNotes != "" {
		sb.WriteString(SectionHeader("Notes"))
		sb.WriteString(IndentString(strings.TrimSpace(a.UserNotes), 2))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatDeleted formats a soft-deleted assignment.
func FormatDeleted(a *models.Assignment, now time.Time) string {
	when := ""
	if t, ok := models.ParseTimestamp(a.DeletedAt); ok {
		when = humanize.RelTime(t, now, "ago", "from now")
	}
	return strings.Join([]string{
		titleStyle.Render(a.Title),
		subtleStyle.Render(a.CourseName),
		errorStyle.Render("[deleted " + when + "]"),
		subtleStyle.Render(a.ID),
	}, "  ")
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nDESCRIPTION:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
