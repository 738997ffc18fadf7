// Package gate serializes the client's long-running operations. Every gated
// action checks the gate before starting, holds its flag while pending, and
// releases it on every exit path.
package gate

import (
	"context"
	"sort"
	"sync"
)

// State is a point-in-time copy of the gate's flags and counters.
type State struct {
	SyncInProgress        bool `json:"sync_in_progress"`
	AISummaryRequests     int  `json:"ai_summary_requests"`
	AddReminderRequests   int  `json:"add_reminder_requests"`
	InsightsLoading       bool `json:"insights_loading"`
	AddAssignmentWorkflow bool `json:"add_assignment_workflow"`
}

// Active reports whether kind is currently held.
func (s State) Active(k Kind) bool {
	switch k {
	case KindSync:
		return s.SyncInProgress
	case KindReminder:
		return s.AddReminderRequests > 0
	case KindInsights:
		return s.InsightsLoading
	case KindAISummary:
		return s.AISummaryRequests > 0
	case KindAddAssignment:
		return s.AddAssignmentWorkflow
	}
	return false
}

// Idle reports whether nothing is pending.
func (s State) Idle() bool {
	for _, k := range precedence {
		if s.Active(k) {
			return false
		}
	}
	return true
}

// Listener receives the recomputed controls after every transition.
type Listener func(Controls)

// Gate owns the operation flags. The zero value is not usable; call New.
type Gate struct {
	mu          sync.Mutex
	state       State
	assignments int
	listeners   map[int]Listener
	nextID      int
}

// New returns an all-clear gate.
func New() *Gate {
	return &Gate{listeners: make(map[int]Listener)}
}

// State returns a copy of the current flags.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CanStart returns nil when op may start, or a *BlockedError.
func (g *Gate) CanStart(op Op) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if blocked := Evaluate(op, g.state); blocked != nil {
		return blocked
	}
	return nil
}

// Enter marks kind as pending. Callers must have checked CanStart and must
// pair it with Exit; prefer TryEnter or Do.
func (g *Gate) Enter(k Kind) {
	g.mu.Lock()
	g.enterLocked(k)
	g.mu.Unlock()
	g.notify()
}

// Exit clears kind. Counters are clamped at zero so an unmatched Exit is harmless.
// Controls are recomputed and published even when nothing changed.
func (g *Gate) Exit(k Kind) {
	g.mu.Lock()
	switch k {
	case KindSync:
		g.state.SyncInProgress = false
	case KindReminder:
		if g.state.AddReminderRequests > 0 {
			g.state.AddReminderRequests--
		}
	case KindInsights:
		g.state.InsightsLoading = false
	case KindAISummary:
		if g.state.AISummaryRequests > 0 {
			g.state.AISummaryRequests--
		}
	case KindAddAssignment:
		g.state.AddAssignmentWorkflow = false
	}
	g.mu.Unlock()
	g.notify()
}

func (g *Gate) enterLocked(k Kind) {
	switch k {
	case KindSync:
		g.state.SyncInProgress = true
	case KindReminder:
		g.state.AddReminderRequests++
	case KindInsights:
		g.state.InsightsLoading = true
	case KindAISummary:
		g.state.AISummaryRequests++
	case KindAddAssignment:
		g.state.AddAssignmentWorkflow = true
	}
}

// TryEnter atomically checks op and, if allowed, enters its kind. The
// returned release func exits the kind and is safe to call more than once.
func (g *Gate) TryEnter(op Op) (release func(), err error) {
	g.mu.Lock()
	if blocked := Evaluate(op, g.state); blocked != nil {
		g.mu.Unlock()
		return func() {}, blocked
	}
	if op.Kind == KindNone {
		g.mu.Unlock()
		return func() {}, nil
	}
	g.enterLocked(op.Kind)
	g.mu.Unlock()
	g.notify()

	var once sync.Once
	return func() {
		once.Do(func() { g.Exit(op.Kind) })
	}, nil
}

// Do runs fn while holding op. The flag is released when fn returns or panics.
func (g *Gate) Do(ctx context.Context, op Op, fn func(context.Context) error) error {
	release, err := g.TryEnter(op)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// SetAssignmentCount records how many assignments are loaded; the insights
// control depends on it.
func (g *Gate) SetAssignmentCount(n int) {
	if n < 0 {
		n = 0
	}
	g.mu.Lock()
	g.assignments = n
	g.mu.Unlock()
	g.notify()
}

// Controls recomputes the enabled state of every control.
func (g *Gate) Controls() Controls {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ComputeControls(g.state, g.assignments)
}

// Subscribe registers fn for control updates and returns a cancel func.
func (g *Gate) Subscribe(fn Listener) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

func (g *Gate) notify() {
	g.mu.Lock()
	controls := ComputeControls(g.state, g.assignments)
	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, g.listeners[id])
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(controls)
	}
}
