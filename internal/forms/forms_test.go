package forms

import (
	"testing"
	"time"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/setup"
	"github.com/marcus/studysync/internal/snapshot"
)

func TestAssignmentResult(t *testing.T) {
	now := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      Assignment
		wantAI  bool
		wantDue time.Time
		wantErr bool
	}{
		{
			name:    "ai with description",
			in:      Assignment{Title: " Essay ", Description: "five paragraphs", Due: "2026-02-20 17:00", Course: "English", UseAI: true},
			wantAI:  true,
			wantDue: time.Date(2026, 2, 20, 17, 0, 0, 0, time.UTC),
		},
		{
			name:    "ai dropped without description",
			in:      Assignment{Title: "Quiz", Due: "tomorrow", Course: "Math", UseAI: true},
			wantDue: time.Date(2026, 2, 19, 23, 59, 0, 0, time.UTC),
		},
		{
			name:    "bad due",
			in:      Assignment{Title: "Quiz", Due: "whenever"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Result(now, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Result() err = %v", err)
			}
			if tt.wantErr {
				return
			}
			if got.UseAI != tt.wantAI || !got.Due.Equal(tt.wantDue) {
				t.Errorf("Result() = %+v", got)
			}
			if got.Title != "Essay" && got.Title != "Quiz" {
				t.Errorf("title not trimmed: %q", got.Title)
			}
		})
	}
}

func TestNewAssignmentDefaults(t *testing.T) {
	a := NewAssignment(nil, false)
	if a.Course != manualCourse || a.UseAI {
		t.Errorf("defaults = %+v", a)
	}
	a = NewAssignment([]string{"Math", "Art"}, true)
	if a.Course != "Math" || !a.UseAI {
		t.Errorf("defaults = %+v", a)
	}
	if a.Form(time.UTC) == nil {
		t.Error("Form() = nil")
	}
}

func TestSetupFormBuilds(t *testing.T) {
	f := setup.NewForm(&models.Settings{CollegeName: "State"}, []models.Course{
		{Name: "Math", Enabled: true},
		{Name: "Art"},
	})
	if Setup(f) == nil {
		t.Fatal("Setup() = nil")
	}
}

func TestCoursesStage(t *testing.T) {
	e := snapshot.NewCourseEditor([]models.Course{
		{Name: "Math", ReminderList: "Math HW", Enabled: true},
		{Name: "Art"},
		{Name: "Bio"},
	})
	c := NewCourses(e)
	if c.Form() == nil {
		t.Fatal("Form() = nil")
	}

	*c.enabled["Math"] = false
	*c.lists["Art"] = "Studio"
	*c.enabled["Art"] = true
	if err := c.Stage(); err != nil {
		t.Fatalf("Stage() = %v", err)
	}
	changes := e.Changes()
	if len(changes) != 2 {
		t.Fatalf("Changes() = %+v", changes)
	}
	if changes[0].Name != "Math" || changes[0].Enabled || !changes[0].EnabledChanged || changes[0].ListChanged {
		t.Errorf("Math change = %+v", changes[0])
	}
	if changes[1].Name != "Art" || !changes[1].Enabled || changes[1].ReminderList != "Studio" || !changes[1].ListChanged {
		t.Errorf("Art change = %+v", changes[1])
	}

	// Enabling without a list is refused.
	c = NewCourses(snapshot.NewCourseEditor([]models.Course{{Name: "Bio"}}))
	*c.enabled["Bio"] = true
	if err := c.Stage(); err != snapshot.ErrReminderListRequired {
		t.Errorf("Stage() = %v, want ErrReminderListRequired", err)
	}
}
