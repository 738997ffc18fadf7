package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/marcus/studysync/internal/models"
)

// --- Assignments ---

// NewAssignment is the body for POST /api/assignments/create.
type NewAssignment struct {
	ID           string `json:"assignment_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DueAt        string `json:"due_at"`
	CourseName   string `json:"course_name"`
	ReminderList string `json:"reminder_list"`
	UseAI        bool   `json:"use_ai"`
}

type idBody struct {
	AssignmentID string `json:"assignment_id"`
}

// ListAssignments returns every assignment that is not soft-deleted.
func (c *Client) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := c.do(ctx, http.MethodGet, "/api/assignments", nil, &out); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// ListDeleted returns soft-deleted assignments.
func (c *Client) ListDeleted(ctx context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := c.do(ctx, http.MethodGet, "/api/assignments/deleted", nil, &out); err != nil {
		return nil, fmt.Errorf("list deleted assignments: %w", err)
	}
	return out, nil
}

// CreateAssignment adds a manual assignment.
func (c *Client) CreateAssignment(ctx context.Context, a NewAssignment) error {
	_, err := c.post(ctx, "/api/assignments/create", a)
	return err
}

// UpdateAssignment applies a partial field update. A nil value clears the field.
func (c *Client) UpdateAssignment(ctx context.Context, id string, fields map[string]any) error {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["assignment_id"] = id
	_, err := c.post(ctx, "/api/assignments/update", body)
	return err
}

// BulkUpdate applies fields to every id and returns how many rows changed.
func (c *Client) BulkUpdate(ctx context.Context, ids []string, fields map[string]any) (int, error) {
	env, err := c.post(ctx, "/api/assignments/bulk-update", map[string]any{
		"assignment_ids": ids,
		"fields":         fields,
	})
	if err != nil {
		return 0, err
	}
	return env.Updated, nil
}

// DeleteAssignment soft-deletes an assignment.
func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/delete", idBody{id})
	return err
}

// RestoreAssignment undoes a soft delete.
func (c *Client) RestoreAssignment(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/restore", idBody{id})
	return err
}

// PurgeAssignment removes an assignment permanently.
func (c *Client) PurgeAssignment(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/permanently-delete", idBody{id})
	return err
}

// GenerateAISummary asks the backend to attach AI notes to an assignment.
func (c *Client) GenerateAISummary(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/generate-ai-summary", idBody{id})
	return err
}

// AddReminder writes the assignment into its reminder list.
func (c *Client) AddReminder(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/add-reminder", idBody{id})
	return err
}

// RemoveReminder deletes the assignment's reminder entry.
func (c *Client) RemoveReminder(ctx context.Context, id string) error {
	_, err := c.post(ctx, "/api/assignments/remove-reminder", idBody{id})
	return err
}

// --- Courses ---

type courseBody struct {
	CourseName   string `json:"course_name"`
	ReminderList string `json:"reminder_list,omitempty"`
}

// ListCourses returns synced and manual courses.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	if err := c.do(ctx, http.MethodGet, "/api/courses", nil, &out); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

// CourseMapping returns the reminder list stored for a course.
func (c *Client) CourseMapping(ctx context.Context, course string) (string, error) {
	var out struct {
		ReminderList *string `json:"reminder_list"`
	}
	path := "/api/course-mapping?course_name=" + url.QueryEscape(course)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", fmt.Errorf("course mapping: %w", err)
	}
	if out.ReminderList == nil {
		return "", nil
	}
	return *out.ReminderList, nil
}

// SetCourseMapping stores the reminder list for a course, creating the
// course if it does not exist yet.
func (c *Client) SetCourseMapping(ctx context.Context, course, reminderList string) error {
	_, err := c.post(ctx, "/api/course-mapping", courseBody{CourseName: course, ReminderList: reminderList})
	return err
}

// EnableCourse includes the course in future syncs.
func (c *Client) EnableCourse(ctx context.Context, course string) error {
	_, err := c.post(ctx, "/api/course-mapping/enable", courseBody{CourseName: course})
	return err
}

// DisableCourse excludes the course from future syncs.
func (c *Client) DisableCourse(ctx context.Context, course string) error {
	_, err := c.post(ctx, "/api/course-mapping/disable", courseBody{CourseName: course})
	return err
}

// DeleteCourse permanently removes a manual course.
func (c *Client) DeleteCourse(ctx context.Context, course string) error {
	_, err := c.post(ctx, "/api/course-mapping/delete", courseBody{CourseName: course})
	return err
}

// --- Settings ---

// Settings returns the global settings.
func (c *Client) Settings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &out); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &out, nil
}

// SaveSettings replaces the global settings.
func (c *Client) SaveSettings(ctx context.Context, s models.Settings) error {
	_, err := c.post(ctx, "/api/settings", s)
	return err
}

// --- Insights ---

// Insights fetches insights up to endDate (YYYY-MM-DD). refresh forces the
// backend to regenerate instead of serving its cache.
func (c *Client) Insights(ctx context.Context, endDate string, refresh bool) (*models.InsightsResult, error) {
	params := url.Values{}
	params.Set("end_date", endDate)
	if refresh {
		params.Set("refresh", "true")
	}
	var out models.InsightsResult
	if err := c.do(ctx, http.MethodGet, "/api/ai-insights?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Insights == nil {
		return nil, &APIError{Status: http.StatusOK, Message: "Unknown error"}
	}
	return &out, nil
}

// InsightsStatus reports whether cached insights exist.
func (c *Client) InsightsStatus(ctx context.Context) (*models.InsightsStatus, error) {
	var out models.InsightsStatus
	if err := c.do(ctx, http.MethodGet, "/api/ai-insights/check", nil, &out); err != nil {
		return nil, fmt.Errorf("check insights: %w", err)
	}
	return &out, nil
}
