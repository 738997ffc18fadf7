package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <assignment-id...>",
	Aliases: []string{"rm"},
	Short:   "Soft-delete one or more assignments",
	GroupID: "assignments",
	Args:    cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var firstErr error
		for _, id := range args {
			if err := a.disp.Delete(cmd.Context(), id); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if !jsonOutput {
				fmt.Printf("DELETED %s\n", id)
			}
		}
		return firstErr
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore <assignment-id...>",
	Short: "Restore soft-deleted assignments",
	Long: `Restore soft-deleted assignments.

Restoring is refused when the assignment's class has been removed; purge it instead.`,
	GroupID: "assignments",
	Args:    cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var firstErr error
		for _, id := range args {
			if err := a.disp.Restore(cmd.Context(), id, ""); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if !jsonOutput {
				fmt.Printf("RESTORED %s\n", id)
			}
		}
		return firstErr
	}),
}

var purgeCmd = &cobra.Command{
	Use:     "purge <assignment-id...>",
	Short:   "Permanently delete assignments",
	GroupID: "assignments",
	Args:    cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var firstErr error
		for _, id := range args {
			if err := a.disp.Purge(cmd.Context(), id); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if !jsonOutput {
				fmt.Printf("PURGED %s\n", id)
			}
		}
		return firstErr
	}),
}

var deletedCmd = &cobra.Command{
	Use:     "deleted",
	Aliases: []string{"trash"},
	Short:   "List soft-deleted assignments",
	GroupID: "assignments",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		list, err := a.disp.Deleted(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No deleted assignments")
			return nil
		}
		now := time.Now()
		for i := range list {
			fmt.Println(output.FormatDeleted(&list[i], now))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(deleteCmd, restoreCmd, purgeCmd, deletedCmd)
}
