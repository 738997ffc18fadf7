package actions

import (
	"context"
	"fmt"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/setup"
)

// Resume is the operation to continue once setup is complete.
type Resume struct {
	Action       Name
	AssignmentID string
}

// redirect records the continuation and reports the setup requirement.
func (d *Dispatcher) redirect(r Resume, course string) error {
	d.mu.Lock()
	d.pending = &r
	d.mu.Unlock()

	err := &SetupRequiredError{Resume: r, Course: course}
	d.log.Info().Str("resume", string(r.Action)).Str("assignment", r.AssignmentID).Msg("setup required")
	d.banner.Warning("%v", err)
	return err
}

// Pending returns the recorded continuation, if any.
func (d *Dispatcher) Pending() (Resume, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Resume{}, false
	}
	return *d.pending, true
}

// CancelSetup drops the recorded continuation.
func (d *Dispatcher) CancelSetup() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

func (d *Dispatcher) takePending() *Resume {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.pending
	d.pending = nil
	return r
}

// OpenSettings checks whether the settings/setup screen may open.
func (d *Dispatcher) OpenSettings() error {
	if err := d.gate.CanStart(gate.OpOpenSettings); err != nil {
		d.banner.Info("%v", err)
		return err
	}
	return nil
}

// SetupForm loads the current settings and courses into a setup form.
func (d *Dispatcher) SetupForm(ctx context.Context) (*setup.Form, error) {
	settings, err := d.api.Settings(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := d.api.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	d.store.ReplaceCourses(courses)
	return setup.NewForm(settings, courses), nil
}

// CompleteSetup validates and saves f, then runs the recorded continuation
// exactly once. It returns the continuation that ran, if any.
func (d *Dispatcher) CompleteSetup(ctx context.Context, f *setup.Form) (*Resume, error) {
	if err := d.OpenSettings(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		d.banner.Error("%v", err)
		return nil, err
	}
	if err := setup.Apply(ctx, d.api, f); err != nil {
		return nil, d.fail("Error saving setup: ", err)
	}
	d.reconcile(ctx)

	r := d.takePending()
	if r == nil {
		d.banner.Success("Settings saved")
		return nil, nil
	}

	var err error
	switch r.Action {
	case ActionSync:
		_, err = d.Sync(ctx, nil)
	case ActionAddReminder:
		err = d.AddReminder(ctx, r.AssignmentID)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownAction, r.Action)
	}
	return r, err
}
