package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
	}{
		{`true`, true},
		{`1`, true},
		{`"1"`, true},
		{`"true"`, true},
		{`2`, true},
		{`false`, false},
		{`0`, false},
		{`"0"`, false},
		{`null`, false},
		{`""`, false},
	}
	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if f != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, f, tt.want)
		}
	}

	var f Flag
	if err := json.Unmarshal([]byte(`"yes"`), &f); err == nil {
		t.Error(`Unmarshal("yes") succeeded`)
	}
}

func TestAssignmentDecodesLooseFlags(t *testing.T) {
	data := `{"assignment_id":"manual_1","title":"Essay","course_name":"English","due_at":"2025-02-01T23:59:00","reminder_added":1,"deleted":null,"ai_notes":"  "}`
	var a Assignment
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		t.Fatal(err)
	}
	if !a.ReminderAdded || a.Deleted {
		t.Errorf("flags = reminder %v deleted %v", a.ReminderAdded, a.Deleted)
	}
	if a.HasAISummary() {
		t.Error("blank ai_notes counted as a summary")
	}
	due, ok := a.Due()
	if !ok || due.Day() != 1 || due.Hour() != 23 {
		t.Errorf("Due() = %v, %v", due, ok)
	}
}

func TestCourseID(t *testing.T) {
	tests := []struct {
		in     string
		manual bool
		id     int64
	}{
		{`{"name":"Math","id":12}`, false, 12},
		{`{"name":"Math","id":"34"}`, false, 34},
		{`{"name":"Math","id":null}`, true, 0},
		{`{"name":"Math"}`, true, 0},
	}
	for _, tt := range tests {
		var c Course
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if c.IsManual() != tt.manual {
			t.Errorf("%s: IsManual = %v, want %v", tt.in, c.IsManual(), tt.manual)
		}
		if !tt.manual && *c.ID != tt.id {
			t.Errorf("%s: ID = %d, want %d", tt.in, *c.ID, tt.id)
		}
		if c.Name != "Math" {
			t.Errorf("%s: Name = %q", tt.in, c.Name)
		}
	}

	var c Course
	if err := json.Unmarshal([]byte(`{"name":"Math","id":"abc"}`), &c); err == nil {
		t.Error("non-numeric id accepted")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-01-31T12:00:00Z", true},
		{"2025-01-31T12:00:00.123456", true},
		{"2025-01-31T12:00:00", true},
		{"2025-01-31 12:00:00", true},
		{"2025-01-31", true},
		{"", false},
		{"tomorrow", false},
	}
	for _, tt := range tests {
		_, ok := ParseTimestamp(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}

	ts, _ := ParseTimestamp("2025-01-31T12:00:00Z")
	if !ts.Equal(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("zoned timestamp = %v", ts)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Not Started", StatusNotStarted},
		{"todo", StatusNotStarted},
		{"in-progress", StatusInProgress},
		{"IN_PROGRESS", StatusInProgress},
		{"done", StatusCompleted},
		{" Completed ", StatusCompleted},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseStatus("someday"); err == nil {
		t.Error("ParseStatus(someday) succeeded")
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"low": PriorityLow, "Med": PriorityMedium, "HIGH": PriorityHigh} {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Errorf("ParsePriority(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) succeeded")
	}
}

func TestValidReminderList(t *testing.T) {
	tests := []struct {
		course, list string
		want         bool
	}{
		{"Math", "Math HW", true},
		{"Math", "", false},
		{"Math", "   ", false},
		{"Math", ReminderListPlaceholder, false},
		{"Math", "Math", false},
	}
	for _, tt := range tests {
		if got := ValidReminderList(tt.course, tt.list); got != tt.want {
			t.Errorf("ValidReminderList(%q, %q) = %v, want %v", tt.course, tt.list, got, tt.want)
		}
	}
}

func TestSettingsToggles(t *testing.T) {
	var s Settings
	if !s.AIEnabled() {
		t.Error("unset AI toggle should be enabled")
	}
	if s.AutoSync() {
		t.Error("unset auto-sync should be off")
	}
	s.SetAIEnabled(false)
	s.SetAutoSync(true)
	if s.AISummaryEnabled != "0" || s.AutoSyncReminders != "1" {
		t.Errorf("settings = %+v", s)
	}
}

func TestSyncEventNormalize(t *testing.T) {
	ev := SyncEvent{Error: "LMS unreachable"}
	ev.Normalize()
	if ev.Type != SyncError || !ev.Terminal() {
		t.Errorf("bare error event = %+v", ev)
	}
	progress := SyncEvent{Type: SyncProgress, Progress: 50}
	progress.Normalize()
	if progress.Terminal() {
		t.Error("progress event is terminal")
	}
}
