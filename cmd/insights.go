package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/dateparse"
	"github.com/marcus/studysync/internal/output"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "AI workload insights for upcoming assignments",
	Long: `Show AI workload insights for assignments due up to a date.

The default range ends one month from today. Cached insights are reused
unless --refresh is given.

Examples:
  studysync insights
  studysync insights --until +2w
  studysync insights --until 2026-05-01 --refresh
  studysync insights --status`,
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()

		if st, _ := cmd.Flags().GetBool("status"); st {
			res, err := a.disp.InsightsStatus(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return output.JSON(res)
			}
			if !res.Exists {
				fmt.Println("No cached insights")
				return nil
			}
			fmt.Printf("Cached insights through %s\n", res.EndDate)
			return nil
		}

		endDate := ""
		if until, _ := cmd.Flags().GetString("until"); until != "" {
			var err error
			endDate, err = dateparse.ParseDateFrom(until, time.Now().In(a.cfg.Insights.Location))
			if err != nil {
				output.Error("%v", err)
				return err
			}
		}
		refresh, _ := cmd.Flags().GetBool("refresh")

		res, err := a.disp.Insights(ctx, endDate, refresh)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(res)
		}
		if endDate == "" {
			endDate = a.disp.DefaultEndDate()
		}
		md := output.InsightsMarkdown(res, endDate)
		rendered, err := output.RenderMarkdown(md)
		if err != nil {
			a.log.Debug().Err(err).Msg("render insights")
			rendered = md
		}
		fmt.Print(rendered)
		return nil
	}),
}

func init() {
	insightsCmd.Flags().StringP("until", "u", "", "End of the range (2026-05-01, +2w, friday)")
	insightsCmd.Flags().Bool("refresh", false, "Regenerate instead of using cached insights")
	insightsCmd.Flags().Bool("status", false, "Only report whether cached insights exist")
	rootCmd.AddCommand(insightsCmd)
}
