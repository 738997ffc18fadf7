package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/dateparse"
	"github.com/marcus/studysync/internal/forms"
	"github.com/marcus/studysync/internal/output"
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create", "new"},
	Short:   "Add a manual assignment",
	Long: `Add a manual assignment. Without --title an interactive form is shown.

With --ai and a description the backend generates an AI summary; the command
waits for it up to ai_summary.poll_timeout.

Examples:
  studysync add --title "Essay draft" --course "English 201" --due "friday 17:00"
  studysync add --title "Lab 3" --due 2026-03-02T09:00 --description "..." --ai`,
	GroupID: "assignments",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		in, err := assignmentInput(cmd, a)
		if err != nil {
			if !errors.Is(err, errFormAborted) {
				output.Error("%v", err)
			}
			return err
		}

		res, err := a.disp.AddAssignment(ctx, in)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(res)
		}
		fmt.Printf("CREATED %s\n", res.ID)
		return nil
	}),
}

var errFormAborted = errors.New("aborted")

func assignmentInput(cmd *cobra.Command, a *app) (actions.NewAssignment, error) {
	loc := a.cfg.Insights.Location
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		if !interactive() {
			return actions.NewAssignment{}, errors.New("--title is required when not running in a terminal")
		}
		return assignmentForm(cmd, a)
	}

	dueStr, _ := cmd.Flags().GetString("due")
	due, err := dateparse.ParseDue(dueStr, time.Now(), loc)
	if err != nil {
		return actions.NewAssignment{}, err
	}
	in := actions.NewAssignment{Title: title, Due: due}
	in.Description, _ = cmd.Flags().GetString("description")
	in.Course, _ = cmd.Flags().GetString("course")
	in.ReminderList, _ = cmd.Flags().GetString("list")
	in.UseAI, _ = cmd.Flags().GetBool("ai")
	return in, nil
}

func assignmentForm(cmd *cobra.Command, a *app) (actions.NewAssignment, error) {
	ctx := cmd.Context()
	var names []string
	aiEnabled := false
	if err := a.disp.Reload(ctx); err == nil {
		for _, c := range a.disp.Store().Courses() {
			if c.Enabled {
				names = append(names, c.Name)
			}
		}
	}
	if s, err := a.disp.Settings(ctx); err == nil {
		aiEnabled = s.AIEnabled()
	}

	f := forms.NewAssignment(names, aiEnabled)
	if err := f.Form(a.cfg.Insights.Location).RunWithContext(ctx); err != nil {
		return actions.NewAssignment{}, errFormAborted
	}
	return f.Result(time.Now(), a.cfg.Insights.Location)
}

func init() {
	f := addCmd.Flags()
	f.StringP("title", "t", "", "Assignment title")
	f.StringP("due", "d", "", "Due date and time (2026-03-01 17:00, friday, +3d 09:00)")
	f.StringP("course", "c", "Other", "Class name")
	f.StringP("list", "l", "", "Reminder list (default: the class's list)")
	f.String("description", "", "Description")
	f.Bool("ai", false, "Generate an AI summary from the description")
	rootCmd.AddCommand(addCmd)
}
