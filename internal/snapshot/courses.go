package snapshot

import (
	"errors"
	"strings"

	"github.com/marcus/studysync/internal/models"
)

// ErrReminderListRequired is returned when enabling a course that has no usable reminder list.
var ErrReminderListRequired = errors.New("Please set a reminder list name before enabling this course. Click on the reminder list name to edit it.")

// ErrUnknownCourse is returned for edits to a course the editor does not hold.
var ErrUnknownCourse = errors.New("course not found")

type pendingEdit struct {
	enabled      *bool
	reminderList *string
}

// CourseChange is one course whose effective settings differ from the backend.
type CourseChange struct {
	Name           string
	Enabled        bool
	ReminderList   string
	EnabledChanged bool
	ListChanged    bool
}

// CourseEditor stages enable/disable and reminder list edits before they are saved.
type CourseEditor struct {
	courses []models.Course
	pending map[string]*pendingEdit
}

// NewCourseEditor starts an editing session over courses.
func NewCourseEditor(courses []models.Course) *CourseEditor {
	return &CourseEditor{
		courses: append([]models.Course(nil), courses...),
		pending: make(map[string]*pendingEdit),
	}
}

func (e *CourseEditor) base(name string) (models.Course, bool) {
	for _, c := range e.courses {
		if c.Name == name {
			return c, true
		}
	}
	return models.Course{}, false
}

// Names returns course names in their original order.
func (e *CourseEditor) Names() []string {
	names := make([]string, len(e.courses))
	for i, c := range e.courses {
		names[i] = c.Name
	}
	return names
}

// Enabled returns the effective enabled state.
func (e *CourseEditor) Enabled(name string) bool {
	if p := e.pending[name]; p != nil && p.enabled != nil {
		return *p.enabled
	}
	c, _ := e.base(name)
	return bool(c.Enabled)
}

// ReminderList returns the effective reminder list.
func (e *CourseEditor) ReminderList(name string) string {
	if p := e.pending[name]; p != nil && p.reminderList != nil {
		return *p.reminderList
	}
	c, _ := e.base(name)
	return c.ReminderList
}

// DisplayReminderList is what the list column shows: nothing for a disabled
// course unless the user has typed a new value.
func (e *CourseEditor) DisplayReminderList(name string) string {
	if !e.Enabled(name) {
		if p := e.pending[name]; p == nil || p.reminderList == nil {
			return ""
		}
	}
	return e.ReminderList(name)
}

// SetReminderList stages a reminder list edit.
func (e *CourseEditor) SetReminderList(name, list string) error {
	c, ok := e.base(name)
	if !ok {
		return ErrUnknownCourse
	}
	list = strings.TrimSpace(list)
	p := e.edit(name)
	if list == c.ReminderList {
		p.reminderList = nil
	} else {
		p.reminderList = &list
	}
	e.prune(name)
	return nil
}

// Toggle flips the effective enabled state. Enabling requires a usable reminder list.
func (e *CourseEditor) Toggle(name string) error {
	c, ok := e.base(name)
	if !ok {
		return ErrUnknownCourse
	}
	next := !e.Enabled(name)
	if next && !models.ValidReminderList(name, e.ReminderList(name)) {
		return ErrReminderListRequired
	}
	p := e.edit(name)
	if next == bool(c.Enabled) {
		p.enabled = nil
	} else {
		p.enabled = &next
	}
	e.prune(name)
	return nil
}

func (e *CourseEditor) edit(name string) *pendingEdit {
	p := e.pending[name]
	if p == nil {
		p = &pendingEdit{}
		e.pending[name] = p
	}
	return p
}

func (e *CourseEditor) prune(name string) {
	if p := e.pending[name]; p != nil && p.enabled == nil && p.reminderList == nil {
		delete(e.pending, name)
	}
}

// Dirty reports whether anything is staged.
func (e *CourseEditor) Dirty() bool {
	return len(e.pending) > 0
}

// Changes lists staged edits in course order.
func (e *CourseEditor) Changes() []CourseChange {
	var out []CourseChange
	for _, c := range e.courses {
		p := e.pending[c.Name]
		if p == nil {
			continue
		}
		out = append(out, CourseChange{
			Name:           c.Name,
			Enabled:        e.Enabled(c.Name),
			ReminderList:   e.ReminderList(c.Name),
			EnabledChanged: p.enabled != nil,
			ListChanged:    p.reminderList != nil,
		})
	}
	return out
}
