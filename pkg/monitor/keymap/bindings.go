package keymap

// DefaultBindings returns the default key bindings for the monitor TUI.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "q", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},

		// Assignment list
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "ctrl+d", Command: CmdHalfPageDown, Context: ContextMain, Description: "Half page down"},
		{Key: "ctrl+u", Command: CmdHalfPageUp, Context: ContextMain, Description: "Half page up"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "enter", Command: CmdOpenDetails, Context: ContextMain, Description: "Open details"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Reload from backend"},
		{Key: "S", Command: CmdSync, Context: ContextMain, Description: "Sync"},
		{Key: "a", Command: CmdGenerateSummary, Context: ContextMain, Description: "Generate AI summary"},
		{Key: "A", Command: CmdRemoveSummary, Context: ContextMain, Description: "Remove AI summary"},
		{Key: "m", Command: CmdAddReminder, Context: ContextMain, Description: "Add reminder"},
		{Key: "M", Command: CmdRemoveReminder, Context: ContextMain, Description: "Remove reminder"},
		{Key: "i", Command: CmdInsights, Context: ContextMain, Description: "Insights"},
		{Key: "s", Command: CmdCycleStatus, Context: ContextMain, Description: "Cycle status"},
		{Key: "c", Command: CmdToggleCompleted, Context: ContextMain, Description: "Show/hide completed"},
		{Key: "x", Command: CmdDelete, Context: ContextMain, Description: "Delete assignment"},
		{Key: "esc", Command: CmdDismissBanner, Context: ContextMain, Description: "Dismiss message"},

		// Details and insights panes
		{Key: "esc", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "enter", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "a", Command: CmdGenerateSummary, Context: ContextDetail, Description: "Generate AI summary"},
		{Key: "m", Command: CmdAddReminder, Context: ContextDetail, Description: "Add reminder"},

		// Help
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},

		// Delete confirmation
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "enter", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
	}
}

// RegisterDefaults binds DefaultBindings into r.
func RegisterDefaults(r *Registry) {
	r.Bind(DefaultBindings()...)
}
