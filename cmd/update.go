package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/output"
)

// fieldsFromFlags collects the assignment fields set on cmd.
func fieldsFromFlags(cmd *cobra.Command) (map[string]any, error) {
	fields := make(map[string]any)
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		s, err := models.ParseStatus(v)
		if err != nil {
			return nil, err
		}
		fields["status"] = string(s)
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		p, err := models.ParsePriority(v)
		if err != nil {
			return nil, err
		}
		fields["priority"] = string(p)
	}
	if f := cmd.Flags().Lookup("notes"); f != nil && f.Changed {
		fields["user_notes"] = f.Value.String()
	}
	if f := cmd.Flags().Lookup("list"); f != nil && f.Changed {
		fields["reminder_list"] = f.Value.String()
	}
	return fields, nil
}

var updateCmd = &cobra.Command{
	Use:     "update <assignment-id>",
	Aliases: []string{"edit"},
	Short:   "Change status, priority or notes of an assignment",
	Long: `Change status, priority or notes of an assignment.

Examples:
  studysync update manual_1234 --status in-progress
  studysync update 98765 --priority high --notes "ask TA about part 2"`,
	GroupID: "assignments",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		fields, err := fieldsFromFlags(cmd)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(fields) == 0 {
			err := errors.New("nothing to update: pass --status, --priority or --notes")
			output.Error("%v", err)
			return err
		}
		if err := a.disp.Update(cmd.Context(), args[0], fields); err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]any{"id": args[0], "fields": fields})
		}
		fmt.Printf("UPDATED %s\n", args[0])
		return nil
	}),
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update <assignment-id...>",
	Short: "Change status, priority or reminder list of many assignments",
	Long: `Change status, priority or reminder list of many assignments at once.

Examples:
  studysync bulk-update 101 102 103 --status completed
  studysync bulk-update --course "Math 101" --list "Math HW"`,
	GroupID: "assignments",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		fields, err := fieldsFromFlags(cmd)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		ids := args
		if course, _ := cmd.Flags().GetString("course"); course != "" {
			if err := a.disp.Reload(ctx); err != nil {
				return err
			}
			ids = append(ids, a.disp.Store().ByCourse(course)...)
		}
		if len(ids) == 0 {
			err := errors.New("no assignments given: pass ids or --course")
			output.Error("%v", err)
			return err
		}
		n, err := a.disp.BulkUpdate(ctx, ids, fields)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]int{"updated": n})
		}
		return nil
	}),
}

func init() {
	updateCmd.Flags().StringP("status", "s", "", "New status (not-started, in-progress, completed)")
	updateCmd.Flags().StringP("priority", "p", "", "New priority (low, medium, high)")
	updateCmd.Flags().StringP("notes", "n", "", "Personal notes")

	bulkUpdateCmd.Flags().StringP("status", "s", "", "New status (not-started, in-progress, completed)")
	bulkUpdateCmd.Flags().StringP("priority", "p", "", "New priority (low, medium, high)")
	bulkUpdateCmd.Flags().StringP("list", "l", "", "New reminder list")
	bulkUpdateCmd.Flags().StringP("course", "c", "", "Select every assignment of this class")

	rootCmd.AddCommand(updateCmd, bulkUpdateCmd)
}
