package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/studysync/internal/output"
	"github.com/marcus/studysync/pkg/monitor"
	"github.com/marcus/studysync/pkg/monitor/keymap"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"ui", "tui"},
	Short:   "Interactive assignment dashboard",
	Long: `Launch a live-updating dashboard of your assignments.

Sync, AI summaries, reminders and insights run in the background. While one
is running, controls it conflicts with are disabled and the footer shows why.

Key bindings (override with monitor.keys.<command> in the config file):
  j/k, ↑/↓       Move selection
  Enter          Open assignment details
  Esc            Close details / dismiss banner
  S              Sync from the LMS
  a / A          Generate / remove AI summary
  m / M          Add / remove reminder
  i              Insights
  s              Cycle status
  c              Show or hide completed
  x              Delete
  r              Refresh
  ?              Toggle help
  q              Quit`,
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Banners are drawn by the dashboard, not printed.
		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		reg := keymap.NewRegistry()
		keymap.RegisterDefaults(reg)
		if err := keymap.ApplyOverrides(reg, a.cfg.Monitor.Keys); err != nil {
			output.Warning("monitor.keys: %v", err)
			a.log.Warn().Err(err).Msg("invalid key overrides")
		}

		interval := a.cfg.Monitor.Interval
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}
		if interval > 0 && interval < 5*time.Second {
			interval = 5 * time.Second
		}

		model := monitor.NewModel(cmd.Context(), a.disp, reg, interval)
		defer model.Close()

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			output.Error("%v", err)
			return fmt.Errorf("error running monitor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().Duration("interval", 30*time.Second, "Reload interval, 0 disables (default monitor.interval, minimum 5s)")
}
