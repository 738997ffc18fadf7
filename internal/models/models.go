package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status represents assignment progress
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Priority represents user-assigned assignment priority
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParseStatus accepts a status in display form or a loose CLI spelling
// such as "in-progress" or "done".
func ParseStatus(s string) (Status, error) {
	switch normalizeWord(s) {
	case "notstarted", "todo", "open":
		return StatusNotStarted, nil
	case "inprogress", "started", "doing":
		return StatusInProgress, nil
	case "completed", "done", "closed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status %q (not-started, in-progress, completed)", s)
}

// ParsePriority accepts low, medium or high in any case.
func ParsePriority(s string) (Priority, error) {
	switch normalizeWord(s) {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority %q (low, medium, high)", s)
}

func normalizeWord(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ReminderListPlaceholder is the hint text shown for an unset reminder list.
// A course whose reminder list equals it is treated as unconfigured.
const ReminderListPlaceholder = "Enter reminder list name to enable"

// Flag is a boolean that tolerates the backend's loose encodings
// (true, 1, "1", "true", null).
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "", `""`, "false", "0", `"0"`, `"false"`:
		*f = false
		return nil
	case "true", "1", `"1"`, `"true"`:
		*f = true
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}
	return fmt.Errorf("invalid flag value %s", data)
}

// Assignment is a single tracked assignment.
type Assignment struct {
	ID                      string   `json:"assignment_id"`
	Title                   string   `json:"title"`
	Description             string   `json:"description,omitempty"`
	DueAt                   string   `json:"due_at"`
	CourseName              string   `json:"course_name"`
	ReminderList            string   `json:"reminder_list,omitempty"`
	AINotes                 string   `json:"ai_notes,omitempty"`
	ReminderAdded           Flag     `json:"reminder_added"`
	Status                  Status   `json:"status,omitempty"`
	Priority                Priority `json:"priority,omitempty"`
	UserNotes               string   `json:"user_notes,omitempty"`
	Deleted                 Flag     `json:"deleted"`
	DeletedAt               string   `json:"deleted_at,omitempty"`
	TimeEstimate            *float64 `json:"time_estimate,omitempty"`
	SuggestedPriority       string   `json:"suggested_priority,omitempty"`
	AIConfidence            *int     `json:"ai_confidence,omitempty"`
	AIConfidenceExplanation string   `json:"ai_confidence_explanation,omitempty"`
}

// Due parses DueAt. The backend stores ISO timestamps with or without a zone.
func (a *Assignment) Due() (time.Time, bool) {
	return ParseTimestamp(a.DueAt)
}

// HasAISummary reports whether the backend has attached AI notes.
func (a *Assignment) HasAISummary() bool {
	return strings.TrimSpace(a.AINotes) != ""
}

// IsCompleted reports whether the assignment is marked done.
func (a *Assignment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp shapes the backend emits.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Course is a class known to the backend. Courses without an external ID
// were added by hand and are the only ones that can be deleted.
type Course struct {
	ID           *int64 `json:"id"`
	Name         string `json:"name"`
	ReminderList string `json:"reminder_list"`
	Enabled      Flag   `json:"enabled"`
}

// IsManual reports whether the course was created locally rather than synced.
func (c *Course) IsManual() bool {
	return c.ID == nil
}

// UnmarshalJSON accepts numeric or string course ids.
func (c *Course) UnmarshalJSON(data []byte) error {
	type alias Course
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Course(raw.alias)
	c.ID = nil
	id := strings.Trim(string(bytes.TrimSpace(raw.ID)), `"`)
	if id == "" || id == "null" {
		return nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid course id %s", raw.ID)
	}
	c.ID = &n
	return nil
}

// ValidReminderList reports whether name is usable as a reminder list for
// the course: set, not the placeholder, and not merely the course name.
func ValidReminderList(courseName, name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != ReminderListPlaceholder && name != courseName
}

// Settings are the user's global preferences. The backend stores the two
// toggles as "1"/"0" strings.
type Settings struct {
	CollegeName       string `json:"college_name"`
	AutoSyncReminders string `json:"auto_sync_reminders"`
	AISummaryEnabled  string `json:"ai_summary_enabled"`
}

// AutoSync reports whether reminders are written during sync.
func (s *Settings) AutoSync() bool {
	return s.AutoSyncReminders == "1" || s.AutoSyncReminders == "true"
}

// AIEnabled reports whether AI summaries are enabled. Unset means enabled.
func (s *Settings) AIEnabled() bool {
	return s.AISummaryEnabled != "0"
}

// SetAutoSync stores the auto-sync toggle in backend form.
func (s *Settings) SetAutoSync(on bool) {
	s.AutoSyncReminders = flagString(on)
}

// SetAIEnabled stores the AI toggle in backend form.
func (s *Settings) SetAIEnabled(on bool) {
	s.AISummaryEnabled = flagString(on)
}

func flagString(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

// SyncEventType discriminates sync stream events.
type SyncEventType string

const (
	SyncProgress SyncEventType = "progress"
	SyncComplete SyncEventType = "complete"
	SyncError    SyncEventType = "error"
)

// SyncEvent is one server-sent event from the sync stream.
type SyncEvent struct {
	Type            SyncEventType  `json:"type"`
	Progress        int            `json:"progress,omitempty"`
	Message         string         `json:"message,omitempty"`
	AssignmentCount int            `json:"assignment_count,omitempty"`
	Assignment      *Assignment    `json:"assignment,omitempty"`
	TotalAdded      int            `json:"total_added,omitempty"`
	AddedByCourse   map[string]int `json:"added_by_course,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// Normalize turns a bare {"error": ...} payload into an error event.
func (e *SyncEvent) Normalize() {
	if e.Type == "" && e.Error != "" {
		e.Type = SyncError
	}
}

// Terminal reports whether the event ends the stream.
func (e *SyncEvent) Terminal() bool {
	return e.Type == SyncComplete || e.Type == SyncError
}
