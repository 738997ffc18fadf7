package snapshot

import (
	"errors"
	"testing"

	"github.com/marcus/studysync/internal/models"
)

func TestReplaceAndUpsertKeepDueOrder(t *testing.T) {
	s := New()
	s.ReplaceAssignments([]models.Assignment{
		{ID: "b", Title: "B", DueAt: "2026-11-05T09:00:00"},
		{ID: "a", Title: "A", DueAt: "2026-11-01T09:00:00"},
		{ID: "x", Title: "No date"},
	})
	s.Upsert(models.Assignment{ID: "c", Title: "C", DueAt: "2026-11-03T09:00:00"})

	var ids string
	for _, a := range s.Assignments() {
		ids += a.ID
	}
	if ids != "acbx" {
		t.Fatalf("order = %q, want acbx", ids)
	}

	s.Upsert(models.Assignment{ID: "c", Title: "C2", DueAt: "2026-10-30T09:00:00"})
	if got := s.Assignments()[0]; got.ID != "c" || got.Title != "C2" {
		t.Errorf("upsert did not replace and resort: %+v", got)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	s := New()
	src := []models.Assignment{{ID: "a"}}
	s.ReplaceAssignments(src)
	src[0].ID = "mutated"
	if _, ok := s.Assignment("a"); !ok {
		t.Fatal("store aliased caller slice")
	}
	s.ReplaceAssignments(nil)
	if s.Len() != 0 || !s.Loaded() {
		t.Errorf("Len = %d Loaded = %v after empty reload", s.Len(), s.Loaded())
	}
}

func TestSelect(t *testing.T) {
	s := New()
	s.ReplaceAssignments([]models.Assignment{
		{ID: "1", CourseName: "Math", Status: models.StatusNotStarted},
		{ID: "2", CourseName: "Math", Status: models.StatusCompleted},
		{ID: "3", CourseName: "Art"},
	})
	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"default hides completed", Filter{}, 2},
		{"with completed", Filter{ShowCompleted: true}, 3},
		{"course", Filter{Course: "Math", ShowCompleted: true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.Select(tt.f)); got != tt.want {
				t.Errorf("Select(%+v) = %d, want %d", tt.f, got, tt.want)
			}
		})
	}
}

func TestCourseToggleRoundTrip(t *testing.T) {
	courses := []models.Course{
		{Name: "Chemistry", ReminderList: "Chem", Enabled: true},
		{Name: "History", ReminderList: "Hist", Enabled: false},
	}

	for _, c := range courses {
		t.Run(c.Name, func(t *testing.T) {
			e := NewCourseEditor(courses)
			origEnabled := e.Enabled(c.Name)
			origDisplay := e.DisplayReminderList(c.Name)

			if err := e.Toggle(c.Name); err != nil {
				t.Fatalf("first toggle: %v", err)
			}
			if e.Enabled(c.Name) == origEnabled {
				t.Fatal("toggle did not change state")
			}
			if err := e.Toggle(c.Name); err != nil {
				t.Fatalf("second toggle: %v", err)
			}
			if e.Enabled(c.Name) != origEnabled {
				t.Errorf("enabled = %v after round trip, want %v", e.Enabled(c.Name), origEnabled)
			}
			if got := e.DisplayReminderList(c.Name); got != origDisplay {
				t.Errorf("display = %q after round trip, want %q", got, origDisplay)
			}
			if e.Dirty() {
				t.Errorf("editor dirty after round trip: %+v", e.Changes())
			}
		})
	}
}

func TestDisplayRule(t *testing.T) {
	e := NewCourseEditor([]models.Course{{Name: "History", ReminderList: "Hist", Enabled: false}})

	if got := e.DisplayReminderList("History"); got != "" {
		t.Errorf("disabled course shows %q, want hidden", got)
	}
	if err := e.SetReminderList("History", "World History"); err != nil {
		t.Fatal(err)
	}
	if got := e.DisplayReminderList("History"); got != "World History" {
		t.Errorf("pending edit hidden: %q", got)
	}
	if err := e.SetReminderList("History", "Hist"); err != nil {
		t.Fatal(err)
	}
	if got := e.DisplayReminderList("History"); got != "" {
		t.Errorf("reverted edit still shown: %q", got)
	}
}

func TestEnableRequiresReminderList(t *testing.T) {
	e := NewCourseEditor([]models.Course{
		{Name: "Art", Enabled: false},
		{Name: "Music", ReminderList: "Music", Enabled: false},
		{Name: "Drama", ReminderList: models.ReminderListPlaceholder, Enabled: false},
	})
	for _, name := range e.Names() {
		if err := e.Toggle(name); !errors.Is(err, ErrReminderListRequired) {
			t.Errorf("Toggle(%s) = %v, want ErrReminderListRequired", name, err)
		}
		if e.Enabled(name) {
			t.Errorf("%s enabled despite missing list", name)
		}
	}

	if err := e.SetReminderList("Art", "Studio Art"); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle("Art"); err != nil {
		t.Fatalf("Toggle after setting list: %v", err)
	}
	changes := e.Changes()
	if len(changes) != 1 || !changes[0].Enabled || !changes[0].ListChanged || !changes[0].EnabledChanged {
		t.Errorf("Changes = %+v", changes)
	}
}
