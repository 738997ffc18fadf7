package forms

import (
	"github.com/charmbracelet/huh"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/snapshot"
)

// Courses edits every course of a CourseEditor in one form.
type Courses struct {
	editor  *snapshot.CourseEditor
	enabled map[string]*bool
	lists   map[string]*string
}

// NewCourses prefills the form from e.
func NewCourses(e *snapshot.CourseEditor) *Courses {
	c := &Courses{
		editor:  e,
		enabled: make(map[string]*bool),
		lists:   make(map[string]*string),
	}
	for _, name := range e.Names() {
		on := e.Enabled(name)
		list := e.DisplayReminderList(name)
		c.enabled[name] = &on
		c.lists[name] = &list
	}
	return c
}

// Form builds one group per course.
func (c *Courses) Form() *huh.Form {
	var groups []*huh.Group
	for _, name := range c.editor.Names() {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Reminder list").
				Placeholder(models.ReminderListPlaceholder).
				Value(c.lists[name]),
			huh.NewConfirm().
				Title("Sync this class").
				Value(c.enabled[name]),
		).Title(name))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// Stage copies the collected values into the editor. Lists are staged
// before toggles so a newly typed list can enable its course.
func (c *Courses) Stage() error {
	for _, name := range c.editor.Names() {
		if list := *c.lists[name]; list != "" || c.editor.Enabled(name) {
			if err := c.editor.SetReminderList(name, list); err != nil {
				return err
			}
		}
		if *c.enabled[name] != c.editor.Enabled(name) {
			if err := c.editor.Toggle(name); err != nil {
				return err
			}
		}
	}
	return nil
}
