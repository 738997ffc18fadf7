package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/internal/snapshot"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List assignments ordered by due date",
	Long: `List assignments ordered by due date.

Examples:
  studysync list                     # Open assignments
  studysync list --course "Math 101" # One class
  studysync list --all               # Include completed
  studysync list --cached            # Last synced snapshot, no network`,
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		course, _ := cmd.Flags().GetString("course")
		all, _ := cmd.Flags().GetBool("all")
		cached, _ := cmd.Flags().GetBool("cached")

		if _, err := a.loadSnapshot(cmd.Context(), cached); err != nil {
			return err
		}
		list := a.disp.Store().Select(snapshot.Filter{Course: course, ShowCompleted: all})

		if jsonOutput {
			return output.JSON(list)
		}
		if len(list) == 0 {
			if a.disp.Store().Len() == 0 {
				fmt.Println("No assignments. Run 'studysync sync' to fetch them.")
			} else {
				fmt.Println("No matching assignments")
			}
			return nil
		}
		now := time.Now()
		for i := range list {
			fmt.Println(output.FormatAssignmentShort(&list[i], now))
		}
		return nil
	}),
}

func init() {
	listCmd.Flags().StringP("course", "c", "", "Only show this class")
	listCmd.Flags().BoolP("all", "a", false, "Include completed assignments")
	listCmd.Flags().Bool("cached", false, "Read from the local cache instead of the backend")
	rootCmd.AddCommand(listCmd)
}
