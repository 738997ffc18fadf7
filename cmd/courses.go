package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/forms"
	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/internal/snapshot"
)

var coursesCmd = &cobra.Command{
	Use:     "courses",
	Aliases: []string{"classes", "course"},
	Short:   "List and configure classes",
	GroupID: "courses",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if _, err := a.loadSnapshot(cmd.Context(), false); err != nil {
			return err
		}
		courses := a.disp.Store().Courses()
		if jsonOutput {
			return output.JSON(courses)
		}
		if len(courses) == 0 {
			fmt.Println("No classes. Run 'studysync sync' or 'studysync courses add <name>'.")
			return nil
		}
		fmt.Println(output.CoursesTable(courses))
		return nil
	}),
}

var coursesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a manual class",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.AddCourse(cmd.Context(), args[0])
	}),
}

var coursesDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a manual class",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.DeleteCourse(cmd.Context(), args[0])
	}),
}

var coursesEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Include a class in syncs",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.SetCourseEnabled(cmd.Context(), args[0], true)
	}),
}

var coursesDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Exclude a class from syncs",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.SetCourseEnabled(cmd.Context(), args[0], false)
	}),
}

var coursesSetListCmd = &cobra.Command{
	Use:   "set-list <name> <reminder-list>",
	Short: "Set the reminder list of a class",
	Long: `Set the reminder list of a class. The class's existing assignments are
moved onto the new list.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return a.disp.SetReminderList(cmd.Context(), args[0], args[1])
	}),
}

var coursesEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit every class interactively",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		if !interactive() {
			err := errors.New("courses edit needs a terminal; use enable, disable or set-list")
			output.Error("%v", err)
			return err
		}
		if err := a.disp.Reload(ctx); err != nil {
			return err
		}
		editor := snapshot.NewCourseEditor(a.disp.Store().Courses())
		f := forms.NewCourses(editor)
		if err := f.Form().RunWithContext(ctx); err != nil {
			return err
		}
		if err := f.Stage(); err != nil {
			output.Warning("%v", err)
			return err
		}
		if !editor.Dirty() {
			fmt.Println("No changes")
			return nil
		}
		return a.disp.ApplyCourseChanges(ctx, editor)
	}),
}

func init() {
	coursesCmd.AddCommand(coursesAddCmd, coursesDeleteCmd, coursesEnableCmd,
		coursesDisableCmd, coursesSetListCmd, coursesEditCmd)
	rootCmd.AddCommand(coursesCmd)
}
