package actions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/studysync/internal/apiclient"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
)

// GenerateAISummary asks the backend for an AI summary of one assignment.
func (d *Dispatcher) GenerateAISummary(ctx context.Context, id string) error {
	release, err := d.enter(gate.OpGenerateAI)
	if err != nil {
		return err
	}
	defer release()

	if _, err := d.lookup(ctx, id); err != nil {
		return d.notFound(err)
	}
	if err := d.api.GenerateAISummary(ctx, id); err != nil {
		return d.fail("Error generating AI summary: ", err)
	}
	d.banner.Success("AI summary generated successfully!")
	d.reconcile(ctx)
	return nil
}

// aiFields are cleared when an AI summary is removed.
var aiFields = []string{"time_estimate", "suggested_priority", "ai_confidence", "ai_confidence_explanation"}

// RemoveAISummary clears the AI notes and every AI-derived field.
func (d *Dispatcher) RemoveAISummary(ctx context.Context, id string) error {
	release, err := d.enter(gate.OpRemoveAI)
	if err != nil {
		return err
	}
	defer release()

	if _, err := d.lookup(ctx, id); err != nil {
		return d.notFound(err)
	}
	fields := map[string]any{"ai_notes": ""}
	for _, f := range aiFields {
		fields[f] = nil
	}
	if err := d.api.UpdateAssignment(ctx, id, fields); err != nil {
		return d.fail("Error removing AI summary: ", err)
	}
	d.store.Update(id, func(a *models.Assignment) {
		a.AINotes = ""
		a.TimeEstimate = nil
		a.SuggestedPriority = ""
		a.AIConfidence = nil
		a.AIConfidenceExplanation = ""
	})
	d.banner.Success("AI summary removed")
	d.reconcile(ctx)
	return nil
}

// AddReminder writes one assignment into its reminder list. If setup is
// incomplete, or the assignment's course has no reminder list, it redirects
// into setup with this reminder as the continuation.
func (d *Dispatcher) AddReminder(ctx context.Context, id string) error {
	release, err := d.enter(gate.OpAddReminder)
	if err != nil {
		return err
	}
	defer release()

	a, err := d.lookup(ctx, id)
	if err != nil {
		return d.notFound(err)
	}

	_, required, err := d.checkSetup(ctx)
	if err != nil {
		return d.fail("Error adding reminder: ", err)
	}
	if course, missing := d.missingList(a); missing {
		return d.redirect(Resume{Action: ActionAddReminder, AssignmentID: id}, course)
	}
	if required {
		return d.redirect(Resume{Action: ActionAddReminder, AssignmentID: id}, "")
	}

	if err := d.api.AddReminder(ctx, id); err != nil {
		return d.fail("Error adding reminder: ", err)
	}
	d.store.Update(id, func(a *models.Assignment) { a.ReminderAdded = true })
	d.banner.Success("Reminder added successfully!")
	d.reconcile(ctx)
	return nil
}

// missingList reports whether a's course lacks a usable reminder list.
func (d *Dispatcher) missingList(a models.Assignment) (string, bool) {
	list := strings.TrimSpace(a.ReminderList)
	if list == "" {
		if c, ok := d.store.Course(a.CourseName); ok {
			list = strings.TrimSpace(c.ReminderList)
		}
	}
	if list == "" || list == models.ReminderListPlaceholder {
		return a.CourseName, true
	}
	return "", false
}

// RemoveReminder deletes the assignment's reminder entry.
func (d *Dispatcher) RemoveReminder(ctx context.Context, id string) error {
	release, err := d.enter(gate.OpRemoveReminder)
	if err != nil {
		return err
	}
	defer release()

	a, err := d.lookup(ctx, id)
	if err != nil {
		return d.notFound(err)
	}
	if strings.TrimSpace(a.ReminderList) == "" {
		err := errors.New("Reminder list not found.")
		d.banner.Error("%v", err)
		return err
	}
	if err := d.api.RemoveReminder(ctx, id); err != nil {
		return d.fail("Error removing reminder: ", err)
	}
	d.store.Update(id, func(a *models.Assignment) { a.ReminderAdded = false })
	d.banner.Success("Reminder removed")
	d.reconcile(ctx)
	return nil
}

func (d *Dispatcher) notFound(err error) error {
	if errors.Is(err, ErrAssignmentNotFound) {
		d.banner.Error("%v", err)
		return err
	}
	return d.fail("Error: ", err)
}

// NewAssignment is the input for a manual assignment.
type NewAssignment struct {
	Title        string
	Description  string
	Due          time.Time
	Course       string
	ReminderList string
	UseAI        bool
}

// AddAssignmentResult describes a created assignment.
type AddAssignmentResult struct {
	ID string
	// AIReady is false when an AI summary was requested but did not appear in time.
	AIReady     bool
	AIRequested bool
}

// AddAssignment creates a manual assignment. With AI requested it waits,
// bounded by the configured poll, for the summary to appear; running out of
// time is reported as information, not as a failure.
func (d *Dispatcher) AddAssignment(ctx context.Context, in NewAssignment) (*AddAssignmentResult, error) {
	release, err := d.enter(gate.OpAddAssignment)
	if err != nil {
		return nil, err
	}
	defer release()

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		err := errors.New("Please enter an assignment title")
		d.banner.Error("%v", err)
		return nil, err
	}
	if in.Due.IsZero() {
		err := errors.New("Please select a due date and time")
		d.banner.Error("%v", err)
		return nil, err
	}

	list := strings.TrimSpace(in.ReminderList)
	if list == "" {
		if err := d.ensureLoaded(ctx); err != nil {
			d.log.Warn().Err(err).Msg("load courses for reminder list")
		}
		if c, ok := d.store.Course(in.Course); ok {
			list = strings.TrimSpace(c.ReminderList)
		}
	}
	if list == "" {
		list = in.Course
	}

	useAI := in.UseAI && strings.TrimSpace(in.Description) != ""
	if useAI {
		if s, err := d.api.Settings(ctx); err == nil && !s.AIEnabled() {
			useAI = false
		}
	}

	res := &AddAssignmentResult{ID: "manual_" + uuid.NewString(), AIRequested: useAI}
	err = d.api.CreateAssignment(ctx, apiclient.NewAssignment{
		ID:           res.ID,
		Title:        in.Title,
		Description:  in.Description,
		DueAt:        in.Due.UTC().Format("2006-01-02T15:04:05Z"),
		CourseName:   in.Course,
		ReminderList: list,
		UseAI:        useAI,
	})
	if err != nil {
		return nil, d.fail("Error adding assignment: ", err)
	}

	if !useAI {
		d.banner.Success("Assignment added successfully!")
		d.reconcile(ctx)
		return res, nil
	}

	ready, err := d.opts.AIWait.Until(ctx, func(ctx context.Context) (bool, error) {
		if err := d.Reload(ctx); err != nil {
			return false, err
		}
		a, ok := d.store.Assignment(res.ID)
		return ok && a.HasAISummary(), nil
	})
	if err != nil {
		return res, err
	}
	res.AIReady = ready
	if ready {
		d.banner.Success("Assignment added! AI summary generated.")
	} else {
		d.log.Info().Str("assignment", res.ID).Dur("timeout", d.opts.AIWait.Timeout).Msg("ai summary not ready")
		d.banner.Info("Assignment added. The AI summary is taking longer than expected and will appear once it is ready.")
		d.reconcile(ctx)
	}
	return res, nil
}

// Delete soft-deletes an assignment.
func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	if err := d.api.DeleteAssignment(ctx, id); err != nil {
		return d.fail("Error deleting assignment: ", err)
	}
	d.store.Remove(id)
	d.gate.SetAssignmentCount(d.store.Len())
	d.banner.Success("Assignment deleted")
	d.reconcile(ctx)
	return nil
}

// ErrCourseRemoved blocks restoring an assignment whose course is gone.
var ErrCourseRemoved = errors.New("Cannot restore: The class for this assignment has been removed. Please delete it permanently.")

// Restore undoes a soft delete. course is the assignment's course name; when
// set, the restore is refused if that course no longer exists.
func (d *Dispatcher) Restore(ctx context.Context, id, course string) error {
	if course == "" {
		deleted, err := d.api.ListDeleted(ctx)
		if err != nil {
			return d.fail("Error restoring assignment: ", err)
		}
		for _, a := range deleted {
			if a.ID == id {
				course = a.CourseName
			}
		}
	}
	if course != "" {
		courses, err := d.api.ListCourses(ctx)
		if err != nil {
			return d.fail("Error restoring assignment: ", err)
		}
		found := false
		for _, c := range courses {
			if c.Name == course {
				found = true
				break
			}
		}
		if !found {
			d.banner.Error("%v", ErrCourseRemoved)
			return ErrCourseRemoved
		}
	}
	if err := d.api.RestoreAssignment(ctx, id); err != nil {
		return d.fail("Error: ", err)
	}
	d.banner.Success("Assignment restored")
	d.reconcile(ctx)
	return nil
}

// Purge permanently deletes an assignment.
func (d *Dispatcher) Purge(ctx context.Context, id string) error {
	if err := d.api.PurgeAssignment(ctx, id); err != nil {
		return d.fail("Error deleting assignment: ", err)
	}
	d.store.Remove(id)
	d.banner.Success("Assignment permanently deleted")
	d.reconcile(ctx)
	return nil
}

// Deleted lists soft-deleted assignments.
func (d *Dispatcher) Deleted(ctx context.Context) ([]models.Assignment, error) {
	list, err := d.api.ListDeleted(ctx)
	if err != nil {
		return nil, d.fail("Error: ", err)
	}
	return list, nil
}

// userFields may be changed with Update.
var userFields = map[string]bool{"status": true, "priority": true, "user_notes": true}

// bulkFields may be changed with BulkUpdate.
var bulkFields = map[string]bool{"status": true, "priority": true, "reminder_added": true, "reminder_list": true}

// ErrNoFields is returned when an update carries nothing the backend accepts.
var ErrNoFields = errors.New("No valid fields to update")

// Update changes user-editable fields of one assignment.
func (d *Dispatcher) Update(ctx context.Context, id string, fields map[string]any) error {
	clean := filterFields(fields, userFields)
	if len(clean) == 0 {
		d.banner.Error("%v", ErrNoFields)
		return ErrNoFields
	}
	if err := d.api.UpdateAssignment(ctx, id, clean); err != nil {
		return d.fail("Error updating assignment: ", err)
	}
	d.store.Update(id, func(a *models.Assignment) {
		if v, ok := clean["status"].(string); ok {
			a.Status = models.Status(v)
		}
		if v, ok := clean["priority"].(string); ok {
			a.Priority = models.Priority(v)
		}
		if v, ok := clean["user_notes"].(string); ok {
			a.UserNotes = v
		}
	})
	d.banner.Success("Assignment updated")
	d.reconcile(ctx)
	return nil
}

// BulkUpdate applies fields to many assignments and returns the number updated.
func (d *Dispatcher) BulkUpdate(ctx context.Context, ids []string, fields map[string]any) (int, error) {
	clean := filterFields(fields, bulkFields)
	if len(ids) == 0 || len(clean) == 0 {
		d.banner.Error("%v", ErrNoFields)
		return 0, ErrNoFields
	}
	n, err := d.api.BulkUpdate(ctx, ids, clean)
	if err != nil {
		return 0, d.fail("Error updating assignments: ", err)
	}
	d.banner.Success("Updated %d assignments", n)
	d.reconcile(ctx)
	return n, nil
}

func filterFields(fields map[string]any, allowed map[string]bool) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
