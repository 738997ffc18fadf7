package gate

import "fmt"

// Kind identifies one class of long-running operation tracked by the gate.
type Kind int

const (
	// KindNone marks check-only operations that occupy nothing while running
	KindNone Kind = iota
	KindSync
	KindReminder
	KindInsights
	KindAISummary
	KindAddAssignment
)

// precedence is the order blockers are evaluated in; the first active one wins.
var precedence = []Kind{
	KindSync,
	KindReminder,
	KindInsights,
	KindAISummary,
	KindAddAssignment,
}

// Kinds returns the tracked kinds in precedence order.
func Kinds() []Kind {
	return append([]Kind(nil), precedence...)
}

func (k Kind) String() string {
	switch k {
	case KindSync:
		return "sync"
	case KindReminder:
		return "reminder"
	case KindInsights:
		return "insights"
	case KindAISummary:
		return "ai_summary"
	case KindAddAssignment:
		return "add_assignment"
	}
	return "none"
}

// Op is a user-triggered operation. Kind is the flag it holds while pending.
type Op struct {
	Name string
	Kind Kind
	// verb completes "Please wait ... before <verb>."
	verb string
}

func (o Op) String() string { return o.Name }

var (
	OpSync           = Op{Name: "sync", Kind: KindSync, verb: "syncing"}
	OpGenerateAI     = Op{Name: "summary.generate", Kind: KindAISummary, verb: "generating summaries"}
	OpRemoveAI       = Op{Name: "summary.remove", Kind: KindAISummary, verb: "removing AI summary"}
	OpAddReminder    = Op{Name: "reminder.add", Kind: KindReminder, verb: "adding reminders"}
	OpRemoveReminder = Op{Name: "reminder.remove", Kind: KindReminder, verb: "removing reminders"}
	OpInsights       = Op{Name: "insights", Kind: KindInsights, verb: "generating insights"}
	OpAddAssignment  = Op{Name: "assignment.add", Kind: KindAddAssignment, verb: "adding assignments"}
	OpOpenSettings   = Op{Name: "settings.open", Kind: KindNone, verb: "opening Settings"}
)

// Ops lists every gated operation.
func Ops() []Op {
	return []Op{OpSync, OpGenerateAI, OpRemoveAI, OpAddReminder, OpRemoveReminder, OpInsights, OpAddAssignment, OpOpenSettings}
}

// otherBlocked is the denial text when a different kind is pending.
var otherBlocked = map[Kind]string{
	KindSync:          "Please wait for sync to finish before %s.",
	KindReminder:      "Please wait for reminder addition to complete before %s.",
	KindInsights:      "Please wait for AI insights to finish before %s.",
	KindAISummary:     "Please wait for AI summary generation to finish before %s.",
	KindAddAssignment: "Please finish adding the assignment before %s.",
}

// selfBlocked is the denial text when the operation's own kind is pending.
var selfBlocked = map[Kind]string{
	KindSync:          "Sync is already in progress. Please wait...",
	KindReminder:      "A reminder is currently being added. Please wait...",
	KindInsights:      "AI insights are already generating. Please wait...",
	KindAISummary:     "Another AI summary is generating. Please wait...",
	KindAddAssignment: "An assignment is already being added. Please wait...",
}

const settingsBlocked = "Please wait for current operation to finish before opening Settings."

// controlReasons are the short labels shown on disabled controls.
var controlReasons = map[Kind]string{
	KindSync:          "Sync in progress",
	KindReminder:      "Adding reminder",
	KindInsights:      "AI insights are generating",
	KindAISummary:     "Please wait for AI summary generation to finish",
	KindAddAssignment: "Adding assignment",
}

// BlockedError is returned when an operation may not start.
type BlockedError struct {
	Op      Op
	Blocker Kind
	Reason  string
}

func (e *BlockedError) Error() string {
	return e.Reason
}

func reason(op Op, blocker Kind) string {
	if op == OpOpenSettings {
		return settingsBlocked
	}
	if op.Kind == blocker {
		return selfBlocked[blocker]
	}
	return fmt.Sprintf(otherBlocked[blocker], op.verb)
}

// Evaluate checks op against s and returns the highest-precedence blocker,
// or nil when op may start.
func Evaluate(op Op, s State) *BlockedError {
	for _, k := range precedence {
		if s.Active(k) {
			return &BlockedError{Op: op, Blocker: k, Reason: reason(op, k)}
		}
	}
	return nil
}
