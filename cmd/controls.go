package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/gate"
	"github.com/marcus/studysync/internal/output"
)

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Show which controls a given gate state disables",
	Long: `Compute control state for a hypothetical set of pending operations.

This runs the same rules the client applies while operations are pending,
without touching the backend.

Examples:
  studysync controls --sync
  studysync controls --reminders 2 --ai-summaries 1
  studysync controls --assignments 0
  studysync controls --check insights --insights`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var s gate.State
		s.SyncInProgress, _ = f.GetBool("sync")
		s.AddReminderRequests, _ = f.GetInt("reminders")
		s.InsightsLoading, _ = f.GetBool("insights")
		s.AISummaryRequests, _ = f.GetInt("ai-summaries")
		s.AddAssignmentWorkflow, _ = f.GetBool("adding")
		count, _ := f.GetInt("assignments")
		check, _ := f.GetString("check")

		var denied *gate.BlockedError
		if check != "" {
			op, ok := opByName(check)
			if !ok {
				err := fmt.Errorf("unknown operation %q", check)
				output.Error("%v", err)
				return err
			}
			denied = gate.Evaluate(op, s)
		}
		controls := gate.ComputeControls(s, count)

		if jsonOutput {
			out := map[string]any{"state": s, "controls": controls}
			if check != "" {
				out["allowed"] = denied == nil
				if denied != nil {
					out["reason"] = denied.Reason
				}
			}
			return output.JSON(out)
		}

		fmt.Println(output.GateTable(s))
		fmt.Println()
		fmt.Println(output.ControlsTable(controls))
		if check != "" {
			fmt.Println()
			if denied == nil {
				output.Success("%s would start", check)
			} else {
				output.Info("%s", denied.Reason)
			}
		}
		return nil
	},
}

func opByName(name string) (gate.Op, bool) {
	for _, op := range gate.Ops() {
		if op.Name == name {
			return op, true
		}
	}
	return gate.Op{}, false
}

func init() {
	f := controlsCmd.Flags()
	f.Bool("sync", false, "A sync is running")
	f.Int("reminders", 0, "Pending reminder requests")
	f.Bool("insights", false, "Insights are loading")
	f.Int("ai-summaries", 0, "Pending AI summary requests")
	f.Bool("adding", false, "A manual assignment is being added")
	f.Int("assignments", 1, "Number of loaded assignments")
	f.String("check", "", "Also evaluate this operation (sync, reminder.add, insights, ...)")
	rootCmd.AddCommand(controlsCmd)
}
