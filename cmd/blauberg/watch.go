package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blauberg/internal/tui"
)

var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Time between polls")
	rootCmd.AddCommand(watchCmd)
}

// watchCmd opens the live monitor
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor a fan live",
	Long: `Open a full screen monitor showing the state of one fan, refreshed at a
fixed interval.

Keys: r refreshes now, p toggles power, s cycles the speed preset,
? shows help and q quits.`,
	Example: `  blauberg watch --fan bathroom

  # Poll every second
  blauberg watch --fan bathroom --interval 1s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveTarget()
		if err != nil {
			return err
		}
		profile, err := t.profile(cmd.Context())
		if err != nil {
			return err
		}
		m := tui.NewWatchModel(t.name, t.client.Addr(), t.client, profile, watchInterval)
		m.Timeout = t.client.Timeout() + time.Second
		return tui.Run(m)
	},
}
