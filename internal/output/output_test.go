package output

import (
	"strings"
	"testing"
	"time"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
)

var now = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func TestFormatDue(t *testing.T) {
	tests := []struct {
		name    string
		a       models.Assignment
		want    string
		overdue bool
	}{
		{"no due date", models.Assignment{}, "no due date", false},
		{"future", models.Assignment{DueAt: "2026-02-20T12:00:00Z"}, "2 days from now", false},
		{"past open", models.Assignment{DueAt: "2026-02-17T12:00:00Z"}, "1 day ago", true},
		{"past completed", models.Assignment{DueAt: "2026-02-17T12:00:00Z", Status: models.StatusCompleted}, "1 day ago", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDue(&tt.a, now)
			if !strings.Contains(got, tt.want) {
				t.Errorf("FormatDue() = %q, want it to contain %q", got, tt.want)
			}
			if strings.Contains(got, "overdue") != tt.overdue {
				t.Errorf("FormatDue() = %q, overdue = %v", got, tt.overdue)
			}
		})
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		a    models.Assignment
		want string
	}{
		{models.Assignment{}, ""},
		{models.Assignment{ReminderAdded: true}, "⏰"},
		{models.Assignment{AINotes: "x"}, "✦"},
		{models.Assignment{ReminderAdded: true, AINotes: "x"}, "⏰ ✦"},
	}
	for _, tt := range tests {
		if got := Badges(&tt.a); got != tt.want {
			t.Errorf("Badges(%+v) = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestFormatAssignmentLong(t *testing.T) {
	est, conf := 3.5, 85
	a := &models.Assignment{
		ID: "a1", Title: "Essay", CourseName: "English", ReminderList: "English HW",
		DueAt: "2026-02-20T12:00:00Z", Description: "Five paragraphs",
		AINotes: "Outline first.", TimeEstimate: &est, AIConfidence: &conf,
		AIConfidenceExplanation: "clear rubric", UserNotes: "ask TA",
	}
	out := FormatAssignmentLong(a, now)
	for _, want := range []string{"Essay", "English HW", "DESCRIPTION:", "AI SUMMARY:", "Outline first.", "3.5 hours", "85%", "clear rubric", "NOTES:", "ask TA"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	bare := FormatAssignmentLong(&models.Assignment{ID: "b", Title: "Quiz"}, now)
	if strings.Contains(bare, "AI SUMMARY") || !strings.Contains(bare, "Reminder list: -") {
		t.Errorf("bare output:\n%s", bare)
	}
}

func TestIndentString(t *testing.T) {
	if got := IndentString("a\nb", 2); got != "  a\n  b" {
		t.Errorf("IndentString = %q", got)
	}
	if got := IndentString("", 4); got != "" {
		t.Errorf("IndentString(empty) = %q", got)
	}
}

func TestControlsTable(t *testing.T) {
	out := ControlsTable(gate.ComputeControls(gate.State{SyncInProgress: true}, 0))
	for _, id := range gate.AllControls {
		if !strings.Contains(out, string(id)) {
			t.Errorf("table missing %s:\n%s", id, out)
		}
	}
	if !strings.Contains(out, "Sync in progress") {
		t.Errorf("table missing reason:\n%s", out)
	}
}

func TestCoursesTableHidesDisabledList(t *testing.T) {
	id := int64(1)
	out := CoursesTable([]models.Course{
		{ID: &id, Name: "Math", ReminderList: "Math HW", Enabled: true},
		{Name: "Art", ReminderList: "Secret List"},
	})
	if !strings.Contains(out, "Math HW") {
		t.Errorf("enabled list missing:\n%s", out)
	}
	if strings.Contains(out, "Secret List") {
		t.Errorf("disabled list shown:\n%s", out)
	}
	if !strings.Contains(out, "manual") || !strings.Contains(out, "synced") {
		t.Errorf("source column wrong:\n%s", out)
	}
}

func TestInsightsMarkdown(t *testing.T) {
	conf := 70
	r := &models.InsightsResult{
		Cached:      true,
		GeneratedAt: "2026-02-18T10:00:00Z",
		Insights: &models.Insights{
			SummaryReport:     "Heavy week ahead.",
			SummaryConfidence: &conf,
			WorkloadAnalysis: models.WorkloadAnalysis{
				TotalHoursEstimated:        12.5,
				CourseDifficultyComparison: map[string]string{"Math": "hard", "Art": "easy"},
			},
			PriorityRecommendations: []models.PriorityRecommendation{
				{AssignmentTitle: "Essay", UrgencyLevel: "high", Reason: "due first"},
			},
			ConflictDetection: models.ConflictDetection{OverlappingDeadlines: []string{"Feb 20"}},
		},
	}
	md := InsightsMarkdown(r, "2026-03-18")
	for _, want := range []string{"through 2026-03-18", "Cached result", "Heavy week ahead.", "Confidence 70%", "12.5", "| Art | easy |", "1. **Essay** (high)", "Overlapping deadlines"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "| Art") > strings.Index(md, "| Math") {
		t.Error("difficulty rows not sorted")
	}
	if InsightsMarkdown(nil, "x") != "" {
		t.Error("nil result should render empty")
	}
}

func TestRenderMarkdownWithWidth(t *testing.T) {
	out, err := RenderMarkdownWithWidth("# Title\n\nbody text", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Title") || strings.HasSuffix(out, "\n") {
		t.Errorf("rendered = %q", out)
	}
	if out, _ := RenderMarkdownWithWidth("   ", 80); out != "" {
		t.Errorf("blank input rendered %q", out)
	}
}
