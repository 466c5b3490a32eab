package commands

import (
	"fmt"

	"comunio-manager/internal/synchronizer"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Logs in and records today's players and finances, unless today is already recorded.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := state.refresh(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch res.Status {
		case synchronizer.StatusOffline:
			fmt.Fprintf(out, "could not reach comunio, nothing recorded for %s\n", res.Date)
		case synchronizer.StatusAlreadyRecorded:
			fmt.Fprintf(out, "%s is already recorded\n", res.Date)
		case synchronizer.StatusRecorded:
			fmt.Fprintf(
				out,
				"recorded %s: %d players, %d bought, %d sold\n",
				res.Date, res.Snapshots, res.Opened, res.Closed,
			)
		}
		return nil
	},
}
