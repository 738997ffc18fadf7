package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// helpSections lists the contexts shown in help, in order.
var helpSections = []struct {
	Title   string
	Context Context
}{
	{"ASSIGNMENTS", ContextMain},
	{"DETAILS", ContextDetail},
	{"CONFIRM", ContextConfirm},
	{"GLOBAL", ContextGlobal},
}

// GenerateHelp generates help text from the registry bindings. Keys bound to
// the same command are shown together.
func (r *Registry) GenerateHelp() string {
	var sb strings.Builder
	sb.WriteString("\nSTUDYSYNC MONITOR - Key Bindings\n")
	for _, sec := range helpSections {
		fmt.Fprintf(&sb, "\n%s:\n", sec.Title)
		var order []Command
		keys := make(map[Command][]string)
		for _, b := range r.Bindings(sec.Context) {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
			}
			keys[b.Command] = append(keys[b.Command], formatKey(b.Key))
		}
		for _, cmd := range order {
			fmt.Fprintf(&sb, "  %-20s %s\n", strings.Join(keys[cmd], " / "), CommandHelp(cmd))
		}
	}
	sb.WriteString("\nPress ? to close help\n")
	return sb.String()
}

var footerCommands = []struct {
	Command Command
	Label   string
}{
	{CmdSync, "sync"},
	{CmdGenerateSummary, "AI"},
	{CmdAddReminder, "remind"},
	{CmdInsights, "insights"},
	{CmdCycleStatus, "status"},
	{CmdOpenDetails, "details"},
	{CmdToggleHelp, "help"},
	{CmdQuit, "quit"},
}

// FooterHelp is a one-line summary of the main keys, following overrides.
func (r *Registry) FooterHelp() string {
	var parts []string
	for _, f := range footerCommands {
		if key, ok := r.keyFor(f.Command, ContextMain); ok {
			parts = append(parts, key+":"+f.Label)
		}
	}
	return strings.Join(parts, "  ")
}

// keyFor returns the first key bound to cmd in ctx or globally.
func (r *Registry) keyFor(cmd Command, ctx Context) (string, bool) {
	for _, c := range lookupOrder(ctx) {
		for _, b := range r.Bindings(c) {
			if b.Command == cmd {
				return b.Key, true
			}
		}
	}
	return "", false
}

// CommandHelp returns help info for a specific command
func CommandHelp(cmd Command) string {
	switch cmd {
	case CmdQuit:
		return "Exit the monitor"
	case CmdToggleHelp:
		return "Show/hide keyboard shortcuts"
	case CmdRefresh:
		return "Reload assignments from the backend"
	case CmdCursorDown:
		return "Move cursor down one row"
	case CmdCursorUp:
		return "Move cursor up one row"
	case CmdCursorTop:
		return "Jump to first row"
	case CmdCursorBottom:
		return "Jump to last row"
	case CmdHalfPageDown:
		return "Move down half a page"
	case CmdHalfPageUp:
		return "Move up half a page"
	case CmdOpenDetails:
		return "Open assignment details"
	case CmdClose:
		return "Close the open pane"
	case CmdSync:
		return "Sync assignments"
	case CmdGenerateSummary:
		return "Generate an AI summary"
	case CmdRemoveSummary:
		return "Remove the AI summary"
	case CmdAddReminder:
		return "Add a reminder"
	case CmdRemoveReminder:
		return "Remove the reminder"
	case CmdInsights:
		return "Show AI workload insights"
	case CmdCycleStatus:
		return "Not Started → In Progress → Completed"
	case CmdToggleCompleted:
		return "Show/hide completed assignments"
	case CmdDelete:
		return "Delete the assignment"
	case CmdDismissBanner:
		return "Dismiss the status message"
	case CmdConfirm:
		return "Confirm"
	case CmdCancel:
		return "Cancel"
	default:
		return string(cmd)
	}
}

// formatKey formats a key string for display
func formatKey(key string) string {
	replacements := []struct{ old, new string }{
		{"ctrl+", "Ctrl+"},
		{"enter", "Enter"},
		{"esc", "Esc"},
		{"up", "↑"},
		{"down", "↓"},
	}
	result := key
	for _, r := range replacements {
		result = strings.ReplaceAll(result, r.old, r.new)
	}
	return result
}

// AllCommands returns all defined commands sorted alphabetically
func AllCommands() []Command {
	cmds := []Command{
		CmdQuit, CmdToggleHelp, CmdRefresh,
		CmdCursorDown, CmdCursorUp, CmdCursorTop, CmdCursorBottom,
		CmdHalfPageDown, CmdHalfPageUp, CmdOpenDetails, CmdClose,
		CmdSync, CmdGenerateSummary, CmdRemoveSummary, CmdAddReminder, CmdRemoveReminder,
		CmdInsights, CmdCycleStatus, CmdToggleCompleted, CmdDelete, CmdDismissBanner,
		CmdConfirm, CmdCancel,
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i] < cmds[j]
	})
	return cmds
}
