package cmd

import (
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"ai"},
	Short:   "Generate or remove AI summaries",
	GroupID: "assignments",
}

var summaryGenerateCmd = &cobra.Command{
	Use:   "generate <assignment-id>",
	Short: "Generate an AI summary for an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.GenerateAISummary(cmd.Context(), args[0])
	}),
}

var summaryRemoveCmd = &cobra.Command{
	Use:     "remove <assignment-id>",
	Aliases: []string{"rm"},
	Short:   "Remove an assignment's AI summary",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.RemoveAISummary(cmd.Context(), args[0])
	}),
}

var remindCmd = &cobra.Command{
	Use:     "remind",
	Aliases: []string{"reminder"},
	Short:   "Add or remove reminders",
	GroupID: "assignments",
}

var remindAddCmd = &cobra.Command{
	Use:   "add <assignment-id>",
	Short: "Add an assignment to its reminder list",
	Long: `Add an assignment to its reminder list.

If the assignment's class has no reminder list yet, the setup form is shown
(on a terminal) and the reminder is added once it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		err := a.disp.AddReminder(ctx, args[0])
		return a.finishSetup(ctx, err)
	}),
}

var remindRemoveCmd = &cobra.Command{
	Use:     "remove <assignment-id>",
	Aliases: []string{"rm"},
	Short:   "Remove an assignment's reminder",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.RemoveReminder(cmd.Context(), args[0])
	}),
}

func init() {
	summaryCmd.AddCommand(summaryGenerateCmd, summaryRemoveCmd)
	remindCmd.AddCommand(remindAddCmd, remindRemoveCmd)
	rootCmd.AddCommand(summaryCmd, remindCmd)
}
