// Package keymap resolves monitor key presses to named commands.
package keymap

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sequenceTimeout = 500 * time.Millisecond

// Context is the part of the UI that has focus.
type Context string

const (
	ContextGlobal  Context = "global"
	ContextMain    Context = "main"
	ContextDetail  Context = "detail"  // assignment details or insights open
	ContextHelp    Context = "help"    // help overlay open
	ContextConfirm Context = "confirm" // delete confirmation open
)

// Contexts lists every context.
var Contexts = []Context{ContextGlobal, ContextMain, ContextDetail, ContextHelp, ContextConfirm}

// Command is a named monitor action.
type Command string

const (
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	CmdCursorDown   Command = "cursor-down"
	CmdCursorUp     Command = "cursor-up"
	CmdCursorTop    Command = "cursor-top"
	CmdCursorBottom Command = "cursor-bottom"
	CmdHalfPageDown Command = "half-page-down"
	CmdHalfPageUp   Command = "half-page-up"
	CmdOpenDetails  Command = "open-details"
	CmdClose        Command = "close"

	CmdSync            Command = "sync"
	CmdGenerateSummary Command = "generate-summary"
	CmdRemoveSummary   Command = "remove-summary"
	CmdAddReminder     Command = "add-reminder"
	CmdRemoveReminder  Command = "remove-reminder"
	CmdInsights        Command = "insights"
	CmdCycleStatus     Command = "cycle-status"
	CmdToggleCompleted Command = "toggle-completed"
	CmdDelete          Command = "delete"
	CmdDismissBanner   Command = "dismiss-banner"

	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"
)

// Binding ties a key, or a two-key sequence such as "g g", to a command.
type Binding struct {
	Key         string
	Command     Command
	Context     Context
	Description string
}

// Registry holds bindings per context. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	bindings  map[Context][]Binding
	pending   string
	pendingAt time.Time
	now       func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context][]Binding),
		now:      time.Now,
	}
}

// Bind adds bindings. Binding a key that already exists in the same context
// replaces its command in place.
func (r *Registry) Bind(bs ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bs {
		list := r.bindings[b.Context]
		replaced := false
		for i := range list {
			if list[i].Key == b.Key {
				list[i].Command = b.Command
				if b.Description != "" {
					list[i].Description = b.Description
				}
				replaced = true
				break
			}
		}
		if !replaced {
			r.bindings[b.Context] = append(list, b)
		}
	}
}

// Bindings returns the bindings of ctx in registration order.
func (r *Registry) Bindings(ctx Context) []Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Binding(nil), r.bindings[ctx]...)
}

// Lookup resolves msg in ctx, falling back to global bindings. The first
// key of a sequence is held and reports no command.
func (r *Registry) Lookup(msg tea.KeyMsg, ctx Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := msg.String()
	if r.pending != "" {
		first := r.pending
		r.pending = ""
		if r.now().Sub(r.pendingAt) < sequenceTimeout {
			if cmd, ok := r.resolve(first+" "+key, ctx); ok {
				return cmd, true
			}
		}
	}

	if r.startsSequence(key, ctx) {
		r.pending = key
		r.pendingAt = r.now()
		return "", false
	}
	return r.resolve(key, ctx)
}

// Pending returns the held first key of a sequence, if it has not timed out.
func (r *Registry) Pending() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != "" && r.now().Sub(r.pendingAt) < sequenceTimeout {
		return r.pending
	}
	return ""
}

func (r *Registry) resolve(key string, ctx Context) (Command, bool) {
	for _, c := range lookupOrder(ctx) {
		for _, b := range r.bindings[c] {
			if b.Key == key {
				return b.Command, true
			}
		}
	}
	return "", false
}

func (r *Registry) startsSequence(key string, ctx Context) bool {
	prefix := key + " "
	for _, c := range lookupOrder(ctx) {
		for _, b := range r.bindings[c] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}
	return false
}

func lookupOrder(ctx Context) []Context {
	if ctx == "" || ctx == ContextGlobal {
		return []Context{ContextGlobal}
	}
	return []Context{ctx, ContextGlobal}
}
