package models

// Insights is the AI workload analysis for a date range.
type Insights struct {
	SummaryReport                string                   `json:"summary_report"`
	SummaryConfidence            *int                     `json:"summary_confidence,omitempty"`
	SummaryConfidenceExplanation string                   `json:"summary_confidence_explanation,omitempty"`
	WorkloadAnalysis             WorkloadAnalysis         `json:"workload_analysis"`
	WorkloadConfidence           *int                     `json:"workload_confidence,omitempty"`
	WorkloadConfidenceExpl       string                   `json:"workload_confidence_explanation,omitempty"`
	PriorityRecommendations      []PriorityRecommendation `json:"priority_recommendations"`
	PriorityConfidence           *int                     `json:"priority_confidence,omitempty"`
	PriorityConfidenceExpl       string                   `json:"priority_confidence_explanation,omitempty"`
	ConflictDetection            ConflictDetection        `json:"conflict_detection"`
	ConflictConfidence           *int                     `json:"conflict_confidence,omitempty"`
	ConflictConfidenceExpl       string                   `json:"conflict_confidence_explanation,omitempty"`
}

// WorkloadAnalysis summarizes expected effort.
type WorkloadAnalysis struct {
	OverallAssessment          string            `json:"overall_assessment"`
	TotalHoursEstimated        float64           `json:"total_hours_estimated"`
	BusyPeriods                []string          `json:"busy_periods"`
	RiskAssessment             string            `json:"risk_assessment"`
	CourseDifficultyComparison map[string]string `json:"course_difficulty_comparison"`
}

// PriorityRecommendation is one suggested ordering entry.
type PriorityRecommendation struct {
	AssignmentTitle    string `json:"assignment_title"`
	UrgencyLevel       string `json:"urgency_level"`
	Reason             string `json:"reason"`
	SuggestedStartDate string `json:"suggested_start_date"`
}

// ConflictDetection lists scheduling problems.
type ConflictDetection struct {
	OverlappingDeadlines      []string `json:"overlapping_deadlines"`
	SchedulingConflicts       []string `json:"scheduling_conflicts"`
	EarlyStartRecommendations []string `json:"early_start_recommendations"`
}

// InsightsResult is the envelope returned by the insights endpoint.
type InsightsResult struct {
	Insights    *Insights `json:"insights"`
	Cached      bool      `json:"cached"`
	GeneratedAt string    `json:"generated_at,omitempty"`
}

// InsightsStatus reports whether cached insights exist.
type InsightsStatus struct {
	Exists  bool   `json:"exists"`
	EndDate string `json:"end_date,omitempty"`
}
