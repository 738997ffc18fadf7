package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/output"
)

var showCmd = &cobra.Command{
	Use:     "show <assignment-id...>",
	Aliases: []string{"view", "get"},
	Short:   "Display full details of one or more assignments",
	GroupID: "core",
	Args:    cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		cached, _ := cmd.Flags().GetBool("cached")
		if _, err := a.loadSnapshot(cmd.Context(), cached); err != nil {
			return err
		}

		var found []models.Assignment
		for _, id := range args {
			as, ok := a.disp.Store().Assignment(id)
			if !ok {
				output.Error("%s: %v", id, actions.ErrAssignmentNotFound)
				continue
			}
			found = append(found, as)
		}
		if len(found) == 0 {
			return actions.ErrAssignmentNotFound
		}

		if jsonOutput {
			if len(found) == 1 {
				return output.JSON(found[0])
			}
			return output.JSON(found)
		}
		now := time.Now()
		for i := range found {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(output.FormatAssignmentLong(&found[i], now))
		}
		return nil
	}),
}

func init() {
	showCmd.Flags().Bool("cached", false, "Read from the local cache instead of the backend")
	rootCmd.AddCommand(showCmd)
}
