package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/output"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Show or change backend settings",
	GroupID: "courses",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		s, err := a.disp.Settings(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(s)
		}
		fmt.Println(output.SettingsTable(s))
		return nil
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change backend settings",
	Long: `Change backend settings. Unset flags keep their current value.

Examples:
  studysync settings set --college "State University"
  studysync settings set --auto-sync=false --ai=true`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		// Refuse early so nothing is fetched while an operation is pending.
		if err := a.disp.OpenSettings(); err != nil {
			return err
		}
		s, err := a.disp.Settings(ctx)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("college") {
			s.CollegeName, _ = f.GetString("college")
		}
		if f.Changed("auto-sync") {
			on, _ := f.GetBool("auto-sync")
			s.SetAutoSync(on)
		}
		if f.Changed("ai") {
			on, _ := f.GetBool("ai")
			s.SetAIEnabled(on)
		}
		return a.disp.SaveSettings(ctx, *s)
	}),
}

func init() {
	settingsSetCmd.Flags().String("college", "", "College or university name")
	settingsSetCmd.Flags().Bool("auto-sync", false, "Add reminders automatically after sync")
	settingsSetCmd.Flags().Bool("ai", false, "Generate AI summaries")
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
