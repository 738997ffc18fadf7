package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/studysync/internal/fakeapi"
	"github.com/marcus/studysync/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 5*time.Second, zerolog.Nop())
	c.RetryDelay = time.Millisecond
	return c
}

func TestDecodeNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"success", 200, `{"success": true}`, ""},
		{"bare array", 200, `[]`, ""},
		{"error in ok body", 200, `{"error": "AI not configured"}`, "AI not configured"},
		{"success false", 200, `{"success": false}`, "Unknown error"},
		{"error status with body", 500, `{"error": "boom"}`, "boom"},
		{"error status plain", 502, `bad gateway`, "HTTP 502: bad gateway"},
		{"error status empty", 503, ``, "HTTP 503: Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decode(tt.status, []byte(tt.body), nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decode() = %v, want nil", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("decode() = %v, want *APIError", err)
			}
			if apiErr.Message != tt.wantErr {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantErr)
			}
		})
	}
}

func TestNotFoundUnwraps(t *testing.T) {
	err := decode(http.StatusNotFound, []byte(`{"error":"Assignment not found"}`), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(%v, ErrNotFound) = false", err)
	}
}

func TestAssignmentsRoundTrip(t *testing.T) {
	fake := fakeapi.New()
	fake.AddAssignment(models.Assignment{ID: "a2", Title: "Essay", DueAt: "2026-11-02T10:00:00", CourseName: "English"})
	fake.AddAssignment(models.Assignment{ID: "a1", Title: "Lab", DueAt: "2026-11-01T10:00:00", CourseName: "Biology"})
	c := newTestClient(t, fake.Handler())
	ctx := context.Background()

	list, err := c.ListAssignments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "a1" {
		t.Fatalf("ListAssignments = %+v, want a1 first", list)
	}

	if err := c.UpdateAssignment(ctx, "a1", map[string]any{"status": "Completed"}); err != nil {
		t.Fatal(err)
	}
	if a, _ := fake.Assignment("a1"); a.Status != models.StatusCompleted {
		t.Errorf("status = %q after update", a.Status)
	}

	n, err := c.BulkUpdate(ctx, []string{"a1", "a2", "missing"}, map[string]any{"priority": "High"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("BulkUpdate updated %d, want 2", n)
	}

	if err := c.DeleteAssignment(ctx, "a2"); err != nil {
		t.Fatal(err)
	}
	deleted, err := c.ListDeleted(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0].ID != "a2" {
		t.Fatalf("ListDeleted = %+v", deleted)
	}

	err = c.AddReminder(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddReminder(missing) = %v, want ErrNotFound", err)
	}
}

func TestGetRetriesThenFails(t *testing.T) {
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
		}
	})
	c := newTestClient(t, h)

	if _, err := c.ListCourses(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
	if calls != 1+c.RetryCount {
		t.Errorf("calls = %d, want %d", calls, 1+c.RetryCount)
	}
}

func TestPostIsNotRetried(t *testing.T) {
	fake := fakeapi.New()
	fake.Fail("/api/assignments/generate-ai-summary", http.StatusOK, "AI not configured")
	c := newTestClient(t, fake.Handler())

	err := c.GenerateAISummary(context.Background(), "a1")
	if err == nil || err.Error() != "AI not configured" {
		t.Fatalf("GenerateAISummary = %v", err)
	}
	if got := fake.Calls("/api/assignments/generate-ai-summary"); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestInsights(t *testing.T) {
	fake := fakeapi.New()
	c := newTestClient(t, fake.Handler())
	ctx := context.Background()

	if _, err := c.Insights(ctx, "2026-12-01", false); err == nil {
		t.Fatal("expected error without insights configured")
	}

	fake.SetInsights(&models.Insights{SummaryReport: "Busy month"})
	res, err := c.Insights(ctx, "2026-12-01", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Insights.SummaryReport != "Busy month" || res.Cached {
		t.Errorf("Insights = %+v", res)
	}

	st, err := c.InsightsStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Exists || st.EndDate != "2026-12-01" {
		t.Errorf("InsightsStatus = %+v", st)
	}
}

func TestCourseMapping(t *testing.T) {
	fake := fakeapi.New()
	c := newTestClient(t, fake.Handler())
	ctx := context.Background()

	if err := c.SetCourseMapping(ctx, "Physics 101", "Physics"); err != nil {
		t.Fatal(err)
	}
	list, err := c.CourseMapping(ctx, "Physics 101")
	if err != nil {
		t.Fatal(err)
	}
	if list != "Physics" {
		t.Errorf("CourseMapping = %q", list)
	}

	err = c.SetCourseMapping(ctx, "Physics 101", "")
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Errorf("SetCourseMapping(empty) = %v", err)
	}
}
