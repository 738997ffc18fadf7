// Package setup decides whether the user's configuration is complete enough
// to sync or write reminders, and models the form that completes it.
package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcus/studysync/internal/models"
)

// Source provides what the completeness check reads.
type Source interface {
	Settings(ctx context.Context) (*models.Settings, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// Applier persists a completed form.
type Applier interface {
	SaveSettings(ctx context.Context, s models.Settings) error
	SetCourseMapping(ctx context.Context, course, reminderList string) error
	EnableCourse(ctx context.Context, course string) error
	DisableCourse(ctx context.Context, course string) error
}

func hasList(list string) bool {
	list = strings.TrimSpace(list)
	return list != "" && list != models.ReminderListPlaceholder
}

// MissingLists returns the enabled courses without a usable reminder list.
func MissingLists(courses []models.Course) []string {
	var missing []string
	for _, c := range courses {
		if bool(c.Enabled) && !hasList(c.ReminderList) {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// Required reports whether setup must run before syncing or adding reminders.
func Required(settings *models.Settings, courses []models.Course) bool {
	if settings == nil || strings.TrimSpace(settings.CollegeName) == "" {
		return true
	}
	return len(MissingLists(courses)) > 0
}

// IsSetupRequired fetches settings and courses and applies Required. A failed
// course fetch is not treated as incomplete setup; the error is returned so
// the caller can log it.
func IsSetupRequired(ctx context.Context, src Source) (bool, error) {
	settings, err := src.Settings(ctx)
	if err != nil {
		return false, err
	}
	courses, err := src.ListCourses(ctx)
	if err != nil {
		return false, err
	}
	return Required(settings, courses), nil
}

// CourseEntry is one course row in the form.
type CourseEntry struct {
	Name         string
	ReminderList string
	Enabled      bool
	Manual       bool
}

// Form holds everything the setup flow collects.
type Form struct {
	InstitutionName   string
	AutoSyncReminders bool
	AISummaryEnabled  bool
	Courses           []CourseEntry
}

// NewForm prefills the form from the backend. An enabled course without a
// list is offered its own name; disabled courses start blank.
func NewForm(settings *models.Settings, courses []models.Course) *Form {
	f := &Form{AISummaryEnabled: true}
	if settings != nil {
		f.InstitutionName = settings.CollegeName
		f.AutoSyncReminders = settings.AutoSync()
		f.AISummaryEnabled = settings.AIEnabled()
	}
	for _, c := range courses {
		entry := CourseEntry{Name: c.Name, Enabled: bool(c.Enabled), Manual: c.IsManual()}
		switch {
		case hasList(c.ReminderList):
			entry.ReminderList = c.ReminderList
		case bool(c.Enabled):
			entry.ReminderList = c.Name
		}
		f.Courses = append(f.Courses, entry)
	}
	return f
}

// IncompleteError lists what the form is still missing.
type IncompleteError struct {
	MissingInstitution bool
	MissingLists       []string
}

func (e *IncompleteError) Error() string {
	if e.MissingInstitution {
		return "Please select or enter your college or university name."
	}
	names := e.MissingLists
	shown := names
	if len(shown) > 3 {
		shown = shown[:3]
	}
	msg := "Please fill in reminder list names for enabled courses: " + strings.Join(shown, ", ")
	if extra := len(names) - len(shown); extra > 0 {
		msg += fmt.Sprintf(" and %d more", extra)
	}
	return msg
}

// Validate returns an *IncompleteError when the form cannot be applied.
func (f *Form) Validate() error {
	e := &IncompleteError{MissingInstitution: strings.TrimSpace(f.InstitutionName) == ""}
	for _, c := range f.Courses {
		if c.Enabled && !hasList(c.ReminderList) {
			e.MissingLists = append(e.MissingLists, c.Name)
		}
	}
	if e.MissingInstitution || len(e.MissingLists) > 0 {
		return e
	}
	return nil
}

// Settings returns the settings record the form describes.
func (f *Form) Settings() models.Settings {
	s := models.Settings{CollegeName: strings.TrimSpace(f.InstitutionName)}
	s.SetAutoSync(f.AutoSyncReminders)
	s.SetAIEnabled(f.AISummaryEnabled)
	return s
}

// Apply validates f and writes it: settings first, then each course's
// reminder list and enabled state.
func Apply(ctx context.Context, api Applier, f *Form) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := api.SaveSettings(ctx, f.Settings()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	for _, c := range f.Courses {
		if list := strings.TrimSpace(c.ReminderList); hasList(list) {
			if err := api.SetCourseMapping(ctx, c.Name, list); err != nil {
				return fmt.Errorf("set reminder list for %s: %w", c.Name, err)
			}
		}
		var err error
		if c.Enabled {
			err = api.EnableCourse(ctx, c.Name)
		} else {
			err = api.DisableCourse(ctx, c.Name)
		}
		if err != nil {
			return fmt.Errorf("update %s: %w", c.Name, err)
		}
	}
	return nil
}
