package output

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/marcus/studysync/internal/models"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// RenderMarkdown renders markdown using Glamour with terminal-aware wrapping.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultMarkdownWidth))
}

// RenderMarkdownWithWidth renders markdown using Glamour with explicit wrapping.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(rendered, "\n"), nil
}

// InsightsMarkdown lays out AI insights as markdown for RenderMarkdown.
func InsightsMarkdown(r *models.InsightsResult, endDate string) string {
	if r == nil || r.Insights == nil {
		return ""
	}
	in := r.Insights
	var sb strings.Builder

	fmt.Fprintf(&sb, "# AI insights through %s\n\n", endDate)
	if r.Cached && r.GeneratedAt != "" {
		fmt.Fprintf(&sb, "_Cached result generated %s._\n\n", r.GeneratedAt)
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(strings.TrimSpace(in.SummaryReport) + "\n")
	writeConfidence(&sb, in.SummaryConfidence, in.SummaryConfidenceExplanation)

	w := in.WorkloadAnalysis
	sb.WriteString("\n## Workload\n\n")
	if w.OverallAssessment != "" {
		sb.WriteString(w.OverallAssessment + "\n\n")
	}
	if w.TotalHoursEstimated > 0 {
		fmt.Fprintf(&sb, "**Estimated hours:** %s\n\n", humanize.Ftoa(w.TotalHoursEstimated))
	}
	writeList(&sb, "Busy periods", w.BusyPeriods)
	if w.RiskAssessment != "" {
		fmt.Fprintf(&sb, "**Risk:** %s\n\n", w.RiskAssessment)
	}
	if len(w.CourseDifficultyComparison) > 0 {
		courses := make([]string, 0, len(w.CourseDifficultyComparison))
		for c := range w.CourseDifficultyComparison {
			courses = append(courses, c)
		}
		sort.Strings(courses)
		sb.WriteString("| Course | Difficulty |\n|---|---|\n")
		for _, c := range courses {
			fmt.Fprintf(&sb, "| %s | %s |\n", c, w.CourseDifficultyComparison[c])
		}
		sb.WriteString("\n")
	}
	writeConfidence(&sb, in.WorkloadConfidence, in.WorkloadConfidenceExpl)

	if len(in.PriorityRecommendations) > 0 {
		sb.WriteString("\n## Priorities\n\n")
		for i, p := range in.PriorityRecommendations {
			fmt.Fprintf(&sb, "%d. **%s** (%s)", i+1, p.AssignmentTitle, p.UrgencyLevel)
			if p.SuggestedStartDate != "" {
				fmt.Fprintf(&sb, ", start by %s", p.SuggestedStartDate)
			}
			if p.Reason != "" {
				fmt.Fprintf(&sb, ": %s", p.Reason)
			}
			sb.WriteString("\n")
		}
		writeConfidence(&sb, in.PriorityConfidence, in.PriorityConfidenceExpl)
	}

	c := in.ConflictDetection
	if len(c.OverlappingDeadlines)+len(c.SchedulingConflicts)+len(c.EarlyStartRecommendations) > 0 {
		sb.WriteString("\n## Conflicts\n\n")
		writeList(&sb, "Overlapping deadlines", c.OverlappingDeadlines)
		writeList(&sb, "Scheduling conflicts", c.SchedulingConflicts)
		writeList(&sb, "Start early", c.EarlyStartRecommendations)
		writeConfidence(&sb, in.ConflictConfidence, in.ConflictConfidenceExpl)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
	sb.WriteString("\n")
}

func writeConfidence(sb *strings.Builder, conf *int, why string) {
	if conf == nil {
		return
	}
	fmt.Fprintf(sb, "\n_Confidence %d%%", *conf)
	if why != "" {
		fmt.Fprintf(sb, ": %s", why)
	}
	sb.WriteString("_\n")
}
