package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/actions"
	"github.com/marcus/studysync/internal/models"
	"github.com/marcus/studysync/internal/output"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync assignments from the backend",
	Long: `Stream a sync from the backend, printing progress as assignments arrive.

If setup is incomplete, the setup form is shown first (on a terminal) and the
sync resumes once it is saved.`,
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		res, err := a.disp.Sync(ctx, printProgress)
		if err != nil {
			if err = a.finishSetup(ctx, err); err != nil {
				return err
			}
			// Resumed sync already reported through the banner.
			return nil
		}
		if jsonOutput {
			return output.JSON(res)
		}
		printSyncResult(res)
		return nil
	}),
}

func printProgress(ev models.SyncEvent) {
	if jsonOutput || ev.Type != models.SyncProgress {
		return
	}
	msg := ev.Message
	if ev.Assignment != nil {
		msg = fmt.Sprintf("%s (%s)", ev.Assignment.Title, ev.Assignment.CourseName)
	}
	if msg == "" {
		return
	}
	fmt.Printf("  [%3d%%] %s\n", ev.Progress, msg)
}

func printSyncResult(res *actions.SyncResult) {
	if res == nil || len(res.AddedByCourse) == 0 {
		return
	}
	names := make([]string, 0, len(res.AddedByCourse))
	for name := range res.AddedByCourse {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, res.AddedByCourse[name])
	}
	if res.NewCoursesNeedSetup {
		output.Info("New classes need reminder lists: run 'studysync courses' to review.")
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
