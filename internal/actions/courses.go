package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/snapshot"
)

var (
	ErrDuplicateCourse = errors.New("A class with this name already exists")
	ErrSyncedCourse    = errors.New("Only manually added classes can be deleted")
	ErrEmptyName       = errors.New("Please enter a class name")
)

// SetCourseEnabled includes or excludes a course from syncs. Enabling needs
// a usable reminder list.
func (d *Dispatcher) SetCourseEnabled(ctx context.Context, course string, enabled bool) error {
	if err := d.ensureLoaded(ctx); err != nil {
		return d.fail("Error: ", err)
	}
	c, ok := d.store.Course(course)
	if !ok {
		d.banner.Error("%v", snapshot.ErrUnknownCourse)
		return snapshot.ErrUnknownCourse
	}
	if enabled && !models.ValidReminderList(c.Name, c.ReminderList) {
		d.banner.Warning("%v", snapshot.ErrReminderListRequired)
		return snapshot.ErrReminderListRequired
	}

	var err error
	if enabled {
		err = d.api.EnableCourse(ctx, course)
	} else {
		err = d.api.DisableCourse(ctx, course)
	}
	if err != nil {
		return d.fail("Error updating class: ", err)
	}
	d.store.UpdateCourse(course, func(c *models.Course) { c.Enabled = models.Flag(enabled) })
	if enabled {
		d.banner.Success("%s enabled", course)
	} else {
		d.banner.Success("%s disabled", course)
	}
	d.reconcile(ctx)
	return nil
}

// SetReminderList stores a course's reminder list and moves the course's
// existing assignments onto it.
func (d *Dispatcher) SetReminderList(ctx context.Context, course, list string) error {
	list = strings.TrimSpace(list)
	if list == "" || list == models.ReminderListPlaceholder {
		d.banner.Error("Please enter a reminder list name")
		return errors.New("Please enter a reminder list name")
	}
	if err := d.api.SetCourseMapping(ctx, course, list); err != nil {
		return d.fail("Error saving reminder list: ", err)
	}
	if err := d.ensureLoaded(ctx); err != nil {
		d.log.Warn().Err(err).Msg("load assignments for reminder list update")
	}
	if ids := d.store.ByCourse(course); len(ids) > 0 {
		if _, err := d.api.BulkUpdate(ctx, ids, map[string]any{"reminder_list": list}); err != nil {
			return d.fail("Error updating assignments: ", err)
		}
	}
	d.store.UpdateCourse(course, func(c *models.Course) { c.ReminderList = list })
	d.banner.Success("Reminder list for %s set to %s", course, list)
	d.reconcile(ctx)
	return nil
}

// ApplyCourseChanges saves everything staged in a course editor.
func (d *Dispatcher) ApplyCourseChanges(ctx context.Context, e *snapshot.CourseEditor) error {
	for _, ch := range e.Changes() {
		if ch.ListChanged {
			if err := d.SetReminderList(ctx, ch.Name, ch.ReminderList); err != nil {
				return err
			}
		}
		if ch.EnabledChanged {
			if err := d.SetCourseEnabled(ctx, ch.Name, ch.Enabled); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddCourse creates a manual course whose reminder list is its own name.
func (d *Dispatcher) AddCourse(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		d.banner.Error("%v", ErrEmptyName)
		return ErrEmptyName
	}
	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		return d.fail("Error adding class: ", err)
	}
	for _, c := range courses {
		if strings.EqualFold(c.Name, name) {
			d.banner.Error("%v", ErrDuplicateCourse)
			return ErrDuplicateCourse
		}
	}
	if err := d.api.SetCourseMapping(ctx, name, name); err != nil {
		return d.fail("Error adding class: ", err)
	}
	d.banner.Success("Class added successfully")
	d.reconcile(ctx)
	return nil
}

// DeleteCourse removes a manual course together with its assignments.
func (d *Dispatcher) DeleteCourse(ctx context.Context, name string) error {
	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		return d.fail("Error deleting class: ", err)
	}
	var found *models.Course
	for i := range courses {
		if courses[i].Name == name {
			found = &courses[i]
			break
		}
	}
	if found == nil {
		d.banner.Error("%v", snapshot.ErrUnknownCourse)
		return snapshot.ErrUnknownCourse
	}
	if !found.IsManual() {
		d.banner.Error("%v", ErrSyncedCourse)
		return ErrSyncedCourse
	}
	if err := d.api.DeleteCourse(ctx, name); err != nil {
		return d.fail("Error deleting class: ", err)
	}
	d.banner.Success("Class deleted")
	d.reconcile(ctx)
	return nil
}

// SaveSettings writes the global settings. Settings cannot change while an
// operation is pending.
func (d *Dispatcher) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := d.OpenSettings(); err != nil {
		return err
	}
	if err := d.api.SaveSettings(ctx, s); err != nil {
		return d.fail("Error saving settings: ", err)
	}
	d.banner.Success("Settings saved")
	return nil
}

// Settings returns the stored settings.
func (d *Dispatcher) Settings(ctx context.Context) (*models.Settings, error) {
	s, err := d.api.Settings(ctx)
	if err != nil {
		return nil, d.fail("Error loading settings: ", err)
	}
	return s, nil
}
