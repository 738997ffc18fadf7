package actions

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/studysync/internal/apiclient"
	"github.com/marcus/studysync/internal/fakeapi"
	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/poll"
	"github.com/marcus/studysync/internal/snapshot"
	"github.com/marcus/studysync/internal/status"
)

type fixture struct {
	fake *fakeapi.Server
	d    *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New()
	fake.SetSettings(models.Settings{CollegeName: "State University", AutoSyncReminders: "0", AISummaryEnabled: "1"})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL, 5*time.Second, zerolog.Nop())
	ny, _ := time.LoadLocation("America/New_York")
	d := New(api, gate.New(), snapshot.New(), status.NewBanner(status.DefaultPolicy(), nil), Options{
		AIWait:   poll.Config{Interval: 5 * time.Millisecond, Timeout: 60 * time.Millisecond},
		Location: ny,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{fake: fake, d: d}
}

func (f *fixture) banner(t *testing.T) status.Message {
	t.Helper()
	m, ok := f.d.Banner().Current()
	if !ok {
		t.Fatal("no banner shown")
	}
	return m
}

func (f *fixture) assertIdle(t *testing.T) {
	t.Helper()
	if s := f.d.Gate().State(); !s.Idle() {
		t.Errorf("gate not idle: %+v", s)
	}
}

func TestBlockedReminderMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "Math", true, 1)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math", ReminderList: "Math"})

	f.d.Gate().Enter(gate.KindSync)
	err := f.d.AddReminder(context.Background(), "a1")

	var blocked *gate.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("AddReminder() = %v, want *gate.BlockedError", err)
	}
	if blocked.Blocker != gate.KindSync {
		t.Errorf("blocker = %v, want sync", blocked.Blocker)
	}
	for _, route := range []string{"/api/assignments/add-reminder", "/api/settings", "/api/courses"} {
		if n := f.fake.Calls(route); n != 0 {
			t.Errorf("%s called %d times", route, n)
		}
	}
	m := f.banner(t)
	if m.Kind != status.KindInfo || !strings.Contains(m.Text, "sync") {
		t.Errorf("banner = %+v", m)
	}
	if f.d.Gate().State().AddReminderRequests != 0 {
		t.Error("blocked reminder left its flag set")
	}
}

func TestReminderBlockedByPendingReminder(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "Math", true, 1)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW 1", CourseName: "Math", ReminderList: "Math"})
	f.fake.AddAssignment(models.Assignment{ID: "a2", Title: "HW 2", CourseName: "Math", ReminderList: "Math"})

	// a1's reminder is still in flight.
	f.d.Gate().Enter(gate.KindReminder)
	err := f.d.AddReminder(context.Background(), "a2")

	var blocked *gate.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("AddReminder() = %v, want *gate.BlockedError", err)
	}
	const want = "A reminder is currently being added. Please wait..."
	if blocked.Reason != want {
		t.Errorf("reason = %q, want %q", blocked.Reason, want)
	}
	if m := f.banner(t); m.Text != want {
		t.Errorf("banner = %q, want %q", m.Text, want)
	}
	if n := f.fake.Calls("/api/assignments/add-reminder"); n != 0 {
		t.Errorf("add-reminder called %d times", n)
	}
	if got := f.d.Gate().State().AddReminderRequests; got != 1 {
		t.Errorf("AddReminderRequests = %d, want 1", got)
	}
}

func TestRedirectBannerKeepsPercentSigns(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Stats 100%d", "", false, 1)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Stats 100%d"})

	if err := f.d.AddReminder(context.Background(), "a1"); err == nil {
		t.Fatal("AddReminder() succeeded without a reminder list")
	}
	want := `Please set a reminder list name for "Stats 100%d" below.`
	if m := f.banner(t); m.Text != want {
		t.Errorf("banner = %q, want %q", m.Text, want)
	}
}

func TestSetupRedirectResumesSyncOnce(t *testing.T) {
	f := newFixture(t)
	f.fake.SetSettings(models.Settings{AISummaryEnabled: "1"})
	f.fake.AddCourse("Math", "", true, 1)
	ctx := context.Background()

	_, err := f.d.Sync(ctx, nil)
	var setupErr *SetupRequiredError
	if !errors.As(err, &setupErr) {
		t.Fatalf("Sync() = %v, want *SetupRequiredError", err)
	}
	if n := f.fake.Calls("/api/sync"); n != 0 {
		t.Fatalf("sync stream opened %d times before setup", n)
	}
	if r, ok := f.d.Pending(); !ok || r.Action != ActionSync {
		t.Fatalf("Pending() = %+v, %v", r, ok)
	}
	f.assertIdle(t)

	form, err := f.d.SetupForm(ctx)
	if err != nil {
		t.Fatal(err)
	}
	form.InstitutionName = "State University"

	ran, err := f.d.CompleteSetup(ctx, form)
	if err != nil {
		t.Fatalf("CompleteSetup() = %v", err)
	}
	if ran == nil || ran.Action != ActionSync {
		t.Fatalf("resumed %+v, want sync", ran)
	}
	if n := f.fake.Calls("/api/sync"); n != 1 {
		t.Errorf("sync ran %d times, want 1", n)
	}

	// A second save must not replay the continuation.
	if ran, err := f.d.CompleteSetup(ctx, form); err != nil || ran != nil {
		t.Fatalf("second CompleteSetup() = %+v, %v", ran, err)
	}
	if n := f.fake.Calls("/api/sync"); n != 1 {
		t.Errorf("sync ran %d times after second save, want 1", n)
	}
	f.assertIdle(t)
}

func TestReminderRedirectNamesCourse(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "", false, 1)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math"})
	ctx := context.Background()

	err := f.d.AddReminder(ctx, "a1")
	var setupErr *SetupRequiredError
	if !errors.As(err, &setupErr) || setupErr.Course != "Math" {
		t.Fatalf("AddReminder() = %v, want redirect for Math", err)
	}
	if f.banner(t).Kind != status.KindWarning {
		t.Errorf("banner kind = %v, want warning", f.banner(t).Kind)
	}

	form, err := f.d.SetupForm(ctx)
	if err != nil {
		t.Fatal(err)
	}
	form.Courses[0].Enabled = true
	form.Courses[0].ReminderList = "Math Homework"
	ran, err := f.d.CompleteSetup(ctx, form)
	if err != nil || ran == nil || ran.Action != ActionAddReminder {
		t.Fatalf("CompleteSetup() = %+v, %v", ran, err)
	}
	if n := f.fake.Calls("/api/assignments/add-reminder"); n != 1 {
		t.Errorf("add-reminder called %d times, want 1", n)
	}
	if a, _ := f.fake.Assignment("a1"); !a.ReminderAdded {
		t.Error("reminder not added after setup")
	}
}

func TestSyncStreamsAssignments(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "Math", true, 1)
	f.fake.SyncEvents = []models.SyncEvent{
		{Type: models.SyncProgress, Progress: 50, Assignment: &models.Assignment{ID: "s1", Title: "Quiz", CourseName: "Math"}},
		{Type: models.SyncComplete, Progress: 100, TotalAdded: 1, AddedByCourse: map[string]int{"Math": 1}},
	}

	var seen []models.SyncEventType
	res, err := f.d.Sync(context.Background(), func(ev models.SyncEvent) { seen = append(seen, ev.Type) })
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalAdded != 1 || res.AddedByCourse["Math"] != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(seen) != 2 || seen[0] != models.SyncProgress || seen[1] != models.SyncComplete {
		t.Errorf("events = %v", seen)
	}
	if _, ok := f.d.Store().Assignment("s1"); !ok {
		t.Error("synced assignment missing from snapshot")
	}
	if m := f.banner(t); m.Text != "Successfully synced 1 new assignments!" {
		t.Errorf("banner = %q", m.Text)
	}
	if !f.d.Gate().Controls().Enabled(gate.ControlInsights) {
		t.Error("insights should be enabled once assignments exist")
	}
	f.assertIdle(t)
}

func TestSyncProceedsWhenCourseFetchFails(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "", true, 1)
	f.fake.Fail("/api/courses", 500, "database locked")
	f.fake.SyncEvents = []models.SyncEvent{{Type: models.SyncComplete, Progress: 100}}

	if _, err := f.d.Sync(context.Background(), nil); err != nil {
		t.Fatalf("Sync() = %v, want the sync to run", err)
	}
	if n := f.fake.Calls("/api/sync"); n != 1 {
		t.Errorf("sync stream opened %d times, want 1", n)
	}
	if _, ok := f.d.Pending(); ok {
		t.Error("course fetch failure recorded a setup continuation")
	}
	f.assertIdle(t)
}

func TestSyncCutStreamIsConnectionError(t *testing.T) {
	f := newFixture(t)
	f.fake.CutStream = true

	_, err := f.d.Sync(context.Background(), nil)
	if !errors.Is(err, apiclient.ErrStreamClosed) {
		t.Fatalf("Sync() = %v, want ErrStreamClosed", err)
	}
	m := f.banner(t)
	if m.Kind != status.KindError || m.Text != "Error syncing: Connection error" {
		t.Errorf("banner = %+v", m)
	}
	f.assertIdle(t)
}

func TestSyncErrorEvent(t *testing.T) {
	f := newFixture(t)
	f.fake.SyncEvents = []models.SyncEvent{{Type: models.SyncError, Error: "Canvas token expired"}}

	if _, err := f.d.Sync(context.Background(), nil); err == nil {
		t.Fatal("Sync() succeeded on error event")
	}
	if m := f.banner(t); m.Text != "Error: Canvas token expired" {
		t.Errorf("banner = %q", m.Text)
	}
	f.assertIdle(t)
}

func TestAddAssignmentAITimeout(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "Math HW", true, 1)

	res, err := f.d.AddAssignment(context.Background(), NewAssignment{
		Title:       "Essay",
		Description: "Five paragraphs",
		Due:         time.Date(2025, 2, 3, 23, 59, 0, 0, time.UTC),
		Course:      "Math",
		UseAI:       true,
	})
	if err != nil {
		t.Fatalf("AddAssignment() = %v", err)
	}
	if !res.AIRequested || res.AIReady {
		t.Errorf("result = %+v, want requested and not ready", res)
	}
	m := f.banner(t)
	if m.Kind != status.KindInfo || !strings.Contains(m.Text, "taking longer") {
		t.Errorf("banner = %+v", m)
	}
	if f.d.Gate().State().AddAssignmentWorkflow {
		t.Error("add-assignment flag still set after timeout")
	}
	a, ok := f.fake.Assignment(res.ID)
	if !ok || a.ReminderList != "Math HW" || a.DueAt != "2025-02-03T23:59:00Z" {
		t.Errorf("stored = %+v", a)
	}
}

func TestAddAssignmentAIReady(t *testing.T) {
	f := newFixture(t)
	f.fake.CreateAINotes = "Read chapter 3."

	res, err := f.d.AddAssignment(context.Background(), NewAssignment{
		Title:       "Reading",
		Description: "Chapter 3",
		Due:         time.Now().Add(48 * time.Hour),
		Course:      "History",
		UseAI:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.AIReady {
		t.Errorf("AIReady = false")
	}
	if a, _ := f.fake.Assignment(res.ID); a.ReminderList != "History" {
		t.Errorf("reminder list = %q, want course name", a.ReminderList)
	}
	f.assertIdle(t)
}

func TestAddAssignmentValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   NewAssignment
		want string
	}{
		{"no title", NewAssignment{Title: "  ", Due: time.Now()}, "Please enter an assignment title"},
		{"no due", NewAssignment{Title: "HW"}, "Please select a due date and time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.d.AddAssignment(context.Background(), tt.in)
			if err == nil || err.Error() != tt.want {
				t.Errorf("AddAssignment() = %v, want %q", err, tt.want)
			}
			f.assertIdle(t)
		})
	}
	if n := f.fake.Calls("/api/assignments/create"); n != 0 {
		t.Errorf("create called %d times", n)
	}
}

func TestBackendFailureReleasesGate(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math"})
	f.fake.Fail("/api/assignments/generate-ai-summary", 500, "model unavailable")

	if err := f.d.GenerateAISummary(context.Background(), "a1"); err == nil {
		t.Fatal("GenerateAISummary() succeeded")
	}
	m := f.banner(t)
	if m.Kind != status.KindError || m.Text != "Error generating AI summary: model unavailable" {
		t.Errorf("banner = %+v", m)
	}
	f.assertIdle(t)
}

func TestUnknownAssignment(t *testing.T) {
	f := newFixture(t)
	err := f.d.GenerateAISummary(context.Background(), "missing")
	if !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("GenerateAISummary() = %v", err)
	}
	if n := f.fake.Calls("/api/assignments/generate-ai-summary"); n != 0 {
		t.Errorf("backend called %d times", n)
	}
	f.assertIdle(t)
}

func TestRemoveAISummaryClearsFields(t *testing.T) {
	f := newFixture(t)
	est, conf := 2.5, 80
	f.fake.AddAssignment(models.Assignment{
		ID: "a1", Title: "HW", CourseName: "Math", AINotes: "notes",
		TimeEstimate: &est, AIConfidence: &conf, SuggestedPriority: "High",
	})

	if err := f.d.RemoveAISummary(context.Background(), "a1"); err != nil {
		t.Fatal(err)
	}
	a, _ := f.fake.Assignment("a1")
	if a.AINotes != "" || a.TimeEstimate != nil || a.AIConfidence != nil || a.SuggestedPriority != "" {
		t.Errorf("AI fields not cleared: %+v", a)
	}
}

func TestInsightsRequiresAssignments(t *testing.T) {
	f := newFixture(t)
	f.fake.SetInsights(&models.Insights{SummaryReport: "ok"})

	_, err := f.d.Insights(context.Background(), "", false)
	if !errors.Is(err, ErrNoAssignments) {
		t.Fatalf("Insights() = %v, want ErrNoAssignments", err)
	}
	if n := f.fake.Calls("/api/ai-insights"); n != 0 {
		t.Errorf("insights called %d times", n)
	}
	f.assertIdle(t)
}

func TestInsightsDefaultEndDate(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math"})
	f.fake.SetInsights(&models.Insights{SummaryReport: "Busy week"})
	ctx := context.Background()

	res, err := f.d.Insights(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Insights.SummaryReport != "Busy week" || res.Cached {
		t.Errorf("result = %+v", res)
	}
	st, err := f.d.InsightsStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Now is 2025-01-31 07:00 in New York; one month on normalizes to March 3.
	if st.EndDate != "2025-03-03" {
		t.Errorf("end date = %q", st.EndDate)
	}
}

func TestRestoreRefusedWhenCourseRemoved(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Gone", Deleted: true})

	err := f.d.Restore(context.Background(), "a1", "")
	if !errors.Is(err, ErrCourseRemoved) {
		t.Fatalf("Restore() = %v, want ErrCourseRemoved", err)
	}
	if n := f.fake.Calls("/api/assignments/restore"); n != 0 {
		t.Errorf("restore called %d times", n)
	}
}

func TestUpdateFiltersFields(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math"})
	ctx := context.Background()

	if err := f.d.Update(ctx, "a1", map[string]any{"title": "x"}); !errors.Is(err, ErrNoFields) {
		t.Fatalf("Update() = %v, want ErrNoFields", err)
	}
	if err := f.d.Update(ctx, "a1", map[string]any{"status": "Completed", "title": "x"}); err != nil {
		t.Fatal(err)
	}
	a, _ := f.fake.Assignment("a1")
	if a.Status != models.StatusCompleted || a.Title != "HW" {
		t.Errorf("stored = %+v", a)
	}
}

func TestCourseActions(t *testing.T) {
	f := newFixture(t)
	f.fake.AddCourse("Math", "", false, 1)
	f.fake.AddAssignment(models.Assignment{ID: "a1", Title: "HW", CourseName: "Math"})
	ctx := context.Background()

	if err := f.d.SetCourseEnabled(ctx, "Math", true); !errors.Is(err, snapshot.ErrReminderListRequired) {
		t.Fatalf("enable without list = %v", err)
	}
	if err := f.d.SetReminderList(ctx, "Math", "Math HW"); err != nil {
		t.Fatal(err)
	}
	if a, _ := f.fake.Assignment("a1"); a.ReminderList != "Math HW" {
		t.Errorf("assignment list = %q", a.ReminderList)
	}
	if err := f.d.SetCourseEnabled(ctx, "Math", true); err != nil {
		t.Fatal(err)
	}
	if c, _ := f.fake.Course("Math"); !c.Enabled {
		t.Error("Math not enabled")
	}

	if err := f.d.AddCourse(ctx, "math"); !errors.Is(err, ErrDuplicateCourse) {
		t.Errorf("duplicate AddCourse() = %v", err)
	}
	if err := f.d.DeleteCourse(ctx, "Math"); !errors.Is(err, ErrSyncedCourse) {
		t.Errorf("DeleteCourse(synced) = %v", err)
	}
	if err := f.d.AddCourse(ctx, "Book Club"); err != nil {
		t.Fatal(err)
	}
	if c, ok := f.fake.Course("Book Club"); !ok || c.ReminderList != "Book Club" {
		t.Errorf("added course = %+v", c)
	}
	if err := f.d.DeleteCourse(ctx, "Book Club"); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.fake.Course("Book Club"); ok {
		t.Error("manual course not deleted")
	}
}

func TestSettingsBlockedWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.d.Gate().Enter(gate.KindAISummary)
	defer f.d.Gate().Exit(gate.KindAISummary)

	err := f.d.SaveSettings(context.Background(), models.Settings{CollegeName: "Other"})
	if err == nil {
		t.Fatal("SaveSettings() allowed while busy")
	}
	if got := f.fake.GetSettings().CollegeName; got != "State University" {
		t.Errorf("settings changed to %q", got)
	}
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	if err := f.d.Dispatch(context.Background(), "nope", Args{}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Dispatch(nope) = %v", err)
	}
	if len(f.d.Actions()) != 20 {
		t.Errorf("registered %d actions", len(f.d.Actions()))
	}
	if err := f.d.Dispatch(context.Background(), ActionReload, Args{}); err != nil {
		t.Errorf("Dispatch(reload) = %v", err)
	}
	if !f.d.Store().Loaded() {
		t.Error("reload did not load the snapshot")
	}
}
