package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/forms"
	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set institution, preferences and reminder lists",
	Long: `Set the institution name, sync preferences and a reminder list for every
enabled class.

On a terminal an interactive form is shown. Otherwise pass values as flags:
  studysync setup --college "State University" --list "Math 101=Math HW"`,
	GroupID: "courses",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		form, err := a.disp.SetupForm(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if flagsGiven(cmd, "college", "auto-sync", "ai", "list") || !interactive() {
			if err := applySetupFlags(cmd, form); err != nil {
				output.Error("%v", err)
				return err
			}
		} else if err := forms.RunSetup(ctx, form); err != nil {
			output.Error("%v", err)
			return err
		}

		_, err = a.disp.CompleteSetup(ctx, form)
		return err
	}),
}

var setupCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether setup is complete",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		required, err := setup.IsSetupRequired(ctx, a.api)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		var missing []string
		if courses, err := a.api.ListCourses(ctx); err == nil {
			missing = setup.MissingLists(courses)
		}
		if jsonOutput {
			return output.JSON(map[string]any{"setup_required": required, "missing_lists": missing})
		}
		if !required {
			output.Success("Setup is complete")
			return nil
		}
		fmt.Println("Setup is required.")
		if len(missing) > 0 {
			fmt.Printf("Classes without a reminder list: %s\n", strings.Join(missing, ", "))
		}
		return nil
	}),
}

func flagsGiven(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// applySetupFlags fills form from --college, --auto-sync, --ai and --list
// "Class=List" pairs. A listed class is enabled.
func applySetupFlags(cmd *cobra.Command, form *setup.Form) error {
	f := cmd.Flags()
	if f.Changed("college") {
		form.InstitutionName, _ = f.GetString("college")
	}
	if f.Changed("auto-sync") {
		form.AutoSyncReminders, _ = f.GetBool("auto-sync")
	}
	if f.Changed("ai") {
		form.AISummaryEnabled, _ = f.GetBool("ai")
	}
	pairs, _ := f.GetStringArray("list")
	for _, p := range pairs {
		name, list, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid --list %q (want Class=List)", p)
		}
		found := false
		for i := range form.Courses {
			if form.Courses[i].Name == strings.TrimSpace(name) {
				form.Courses[i].ReminderList = strings.TrimSpace(list)
				form.Courses[i].Enabled = true
				found = true
			}
		}
		if !found {
			return errors.New("unknown class " + name)
		}
	}
	return nil
}

func init() {
	setupCmd.Flags().String("college", "", "College or university name")
	setupCmd.Flags().Bool("auto-sync", false, "Add reminders automatically after sync")
	setupCmd.Flags().Bool("ai", true, "Generate AI summaries")
	setupCmd.Flags().StringArray("list", nil, "Reminder list for a class, as Class=List (repeatable)")
	setupCmd.AddCommand(setupCheckCmd)
	rootCmd.AddCommand(setupCmd)
}
