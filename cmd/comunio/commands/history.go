package commands

import (
	"fmt"
	"strings"

	"comunio-manager/internal/historian"
	"comunio-manager/internal/statistics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const suggestionCount = 3

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <player name>",
	Short: "Shows every recorded day of a player, newest first.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		name := strings.Join(args, " ")
		hist := state.historian()

		var snapshots []historian.Snapshot
		for snap, err := range hist.HistoryFor(ctx, name) {
			if err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
		}

		if len(snapshots) == 0 {
			fmt.Fprintf(out, "no history for %q\n", name)
			suggestions, err := hist.SuggestNames(ctx, name, suggestionCount)
			if err != nil {
				return err
			}
			if len(suggestions) > 0 {
				fmt.Fprintf(out, "did you mean: %s\n", strings.Join(suggestions, ", "))
			}
			return nil
		}

		t := newTable(out)
		t.SetTitle(name)
		t.AppendHeader(table.Row{"Date", "Position", "Value", "Points", "Change"})
		for i, snap := range snapshots {
			change := statistics.Delta{}
			// snapshots are newest first, the previous recorded day follows
			if i+1 < len(snapshots) {
				change = statistics.Delta{
					Value:     snap.Value - snapshots[i+1].Value,
					Available: true,
				}
			}
			t.AppendRow(table.Row{
				snap.Date,
				snap.Position,
				formatMoney(snap.Value),
				snap.Points,
				formatDelta(change),
			})
		}
		t.Render()
		return nil
	},
}
