// Package forms holds the interactive huh forms for setup and manual
// assignments. The forms only collect values; validation that spans fields
// happens in the domain types they fill.
package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/setup"
)

var (
	errInstitutionRequired = errors.New("Please select or enter your college or university name.")
	errListRequired        = errors.New("Enabled classes need a reminder list name")
)

// Setup builds a form bound to f. Each course gets an enable toggle and a
// reminder list input.
func Setup(f *setup.Form) *huh.Form {
	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("College or university").
				Value(&f.InstitutionName).
				Placeholder("State University").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errInstitutionRequired
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Add reminders automatically after sync").
				Value(&f.AutoSyncReminders),
			huh.NewConfirm().
				Title("Generate AI summaries").
				Value(&f.AISummaryEnabled),
		).Title("Setup"),
	}

	for i := range f.Courses {
		c := &f.Courses[i]
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Include "+c.Name).
				Value(&c.Enabled),
			huh.NewInput().
				Title("Reminder list").
				Value(&c.ReminderList).
				Placeholder(models.ReminderListPlaceholder).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if c.Enabled && (s == "" || s == models.ReminderListPlaceholder) {
						return errListRequired
					}
					return nil
				}),
		).Title(c.Name))
	}

	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// RunSetup shows the setup form and validates the result.
func RunSetup(ctx context.Context, f *setup.Form) error {
	if err := Setup(f).RunWithContext(ctx); err != nil {
		return err
	}
	return f.Validate()
}
