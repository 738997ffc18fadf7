package forms

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/dateparse"
)

const manualCourse = "Other"

// Assignment collects a manual assignment.
type Assignment struct {
	Title        string
	Description  string
	Due          string
	Course       string
	ReminderList string
	UseAI        bool

	courses []string
}

// NewAssignment prepares an assignment form offering courses. AI is on by
// default when aiEnabled.
func NewAssignment(courses []string, aiEnabled bool) *Assignment {
	a := &Assignment{UseAI: aiEnabled, courses: courses}
	if len(courses) > 0 {
		a.Course = courses[0]
	} else {
		a.Course = manualCourse
	}
	return a
}

// Form builds the huh form bound to a.
func (a *Assignment) Form(loc *time.Location) *huh.Form {
	opts := huh.NewOptions(append(append([]string(nil), a.courses...), manualCourse)...)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&a.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("Please enter an assignment title")
					}
					return nil
				}),
			huh.NewInput().
				Title("Due").
				Description("2026-03-01 17:00, friday 23:59, +3d").
				Value(&a.Due).
				Validate(func(s string) error {
					_, err := dateparse.ParseDue(s, time.Now(), loc)
					return err
				}),
			huh.NewSelect[string]().
				Title("Class").
				Options(opts...).
				Value(&a.Course),
			huh.NewInput().
				Title("Reminder list").
				Description("Leave empty to use the class's list").
				Value(&a.ReminderList),
			huh.NewText().
				Title("Description").
				Value(&a.Description).
				Lines(4),
			huh.NewConfirm().
				Title("Generate AI summary").
				Description("Needs a description").
				Value(&a.UseAI),
		).Title("Add assignment"),
	).WithTheme(huh.ThemeDracula())
}

// Result converts the collected values, resolving the due time in loc.
func (a *Assignment) Result(now time.Time, loc *time.Location) (actions.NewAssignment, error) {
	due, err := dateparse.ParseDue(a.Due, now, loc)
	if err != nil {
		return actions.NewAssignment{}, err
	}
	return actions.NewAssignment{
		Title:        strings.TrimSpace(a.Title),
		Description:  strings.TrimSpace(a.Description),
		Due:          due,
		Course:       a.Course,
		ReminderList: strings.TrimSpace(a.ReminderList),
		UseAI:        a.UseAI && strings.TrimSpace(a.Description) != "",
	}, nil
}
