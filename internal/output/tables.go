package output

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/models"
)

var bold = color.New(color.Bold)

// ControlsTable lists every control with its state and reason.
func ControlsTable(c gate.Controls) string {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Control"), bold.Sprint("State"), bold.Sprint("Reason"))
	for _, id := range gate.AllControls {
		ctl := c[id]
		state := "enabled"
		if ctl.Disabled {
			state = "disabled"
		}
		tbl.AddRow(string(id), state, ctl.Reason)
	}
	return tbl.String()
}

// GateTable shows the raw in-progress flags.
func GateTable(s gate.State) string {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Flag"), bold.Sprint("Value"))
	tbl.AddRow("syncInProgress", fmt.Sprint(s.SyncInProgress))
	tbl.AddRow("addReminderRequests", fmt.Sprint(s.AddReminderRequests))
	tbl.AddRow("insightsLoading", fmt.Sprint(s.InsightsLoading))
	tbl.AddRow("aiSummaryRequests", fmt.Sprint(s.AISummaryRequests))
	tbl.AddRow("addAssignmentWorkflow", fmt.Sprint(s.AddAssignmentWorkflow))
	return tbl.String()
}

// CoursesTable lists courses with their reminder lists. A disabled course's
// list is hidden, matching the settings screen.
func CoursesTable(courses []models.Course) string {
	sorted := append([]models.Course(nil), courses...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("Class"), bold.Sprint("Enabled"), bold.Sprint("Reminder list"), bold.Sprint("Source"))
	for _, c := range sorted {
		list := ""
		if c.Enabled {
			list = orDash(c.ReminderList)
		}
		source := "synced"
		if c.IsManual() {
			source = "manual"
		}
		tbl.AddRow(c.Name, yesNo(bool(c.Enabled)), list, source)
	}
	return tbl.String()
}

// SettingsTable shows the global settings.
func SettingsTable(s *models.Settings) string {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Setting"), bold.Sprint("Value"))
	tbl.AddRow("college_name", orDash(s.CollegeName))
	tbl.AddRow("auto_sync_reminders", yesNo(s.AutoSync()))
	tbl.AddRow("ai_summary_enabled", yesNo(s.AIEnabled()))
	return tbl.String()
}

// KeyValueTable renders sorted key/value pairs.
func KeyValueTable(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, k := range keys {
		tbl.AddRow(k, fmt.Sprint(values[k]))
	}
	return tbl.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
