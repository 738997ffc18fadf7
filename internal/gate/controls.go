package gate

// ControlID names an interactive control whose state the gate drives.
type ControlID string

const (
	ControlSync            ControlID = "sync"
	ControlInsights        ControlID = "insights"
	ControlSettings        ControlID = "settings"
	ControlAddAssignment   ControlID = "add-assignment"
	ControlGenerateSummary ControlID = "assignment.generate-ai-summary"
	ControlAddReminder     ControlID = "assignment.add-reminder"
)

// AllControls lists controls in display order.
var AllControls = []ControlID{
	ControlSync,
	ControlInsights,
	ControlSettings,
	ControlAddAssignment,
	ControlGenerateSummary,
	ControlAddReminder,
}

// NoAssignmentsReason disables insights until something has been synced.
const NoAssignmentsReason = "Please sync assignments first"

// Control is the derived state of one control.
type Control struct {
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

// Controls maps every control to its state.
type Controls map[ControlID]Control

// Enabled reports whether id is usable. Unknown ids are enabled.
func (c Controls) Enabled(id ControlID) bool {
	return !c[id].Disabled
}

// ComputeControls derives control state from s. It is pure: the same input
// always yields the same output.
func ComputeControls(s State, assignmentCount int) Controls {
	var blocked Control
	for _, k := range precedence {
		if s.Active(k) {
			blocked = Control{Disabled: true, Reason: controlReasons[k]}
			break
		}
	}

	controls := make(Controls, len(AllControls))
	for _, id := range AllControls {
		controls[id] = blocked
	}
	if !blocked.Disabled && assignmentCount == 0 {
		controls[ControlInsights] = Control{Disabled: true, Reason: NoAssignmentsReason}
	}
	return controls
}
