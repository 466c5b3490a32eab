package commands

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/historian"
	"comunio-manager/internal/statistics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var summaryRefresh bool

func init() {
	summaryCmd.Flags().BoolVar(&summaryRefresh, "refresh", false, "Record today before summarizing.")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--refresh]",
	Short: "Shows the latest finances and today's players with their value changes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if summaryRefresh {
			_, err := state.refresh(ctx)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		hist := state.historian()
		calc := state.calculator()

		fin, found, err := hist.LastKnownFinancials(ctx)
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(out, "nothing recorded yet, run `comunio refresh` first")
			return nil
		}
		balance, err := calc.TotalAssetsDelta(ctx)
		if err != nil && !errors.Is(err, statistics.ErrNoFinancials) {
			return err
		}
		renderFinancials(out, fin, balance)

		deltas, err := calc.PlayerDeltas(ctx)
		if err != nil {
			return err
		}
		tendencies, err := calc.Tendencies(ctx)
		if err != nil {
			return err
		}
		if len(deltas) == 0 {
			fmt.Fprintf(out, "no players recorded for %s\n", chrono.Today(state.time))
			return nil
		}
		renderPlayers(out, deltas, tendencies)
		return nil
	},
}

func renderFinancials(out io.Writer, fin historian.Financials, balance int64) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("Finances on %s", fin.Date))
	t.AppendRows([]table.Row{
		{"Cash", formatMoney(fin.Cash)},
		{"Team value", formatMoney(fin.TeamValue)},
		{"Balance", formatChange(balance)},
	})
	t.Render()
}

// renderPlayers expects deltas and tendencies to list the same players in the
// same order.
func renderPlayers(out io.Writer, deltas, tendencies []statistics.PlayerDelta) {
	type row struct {
		player   historian.Snapshot
		delta    statistics.Delta
		tendency statistics.Delta
	}
	rows := make([]row, len(deltas))
	for i := range deltas {
		rows[i] = row{
			player:   deltas[i].Player,
			delta:    deltas[i].Delta,
			tendency: tendencies[i].Delta,
		}
	}
	slices.SortStableFunc(rows, func(a, b row) int {
		return cmp.Or(
			cmp.Compare(a.player.Position.Order(), b.player.Position.Order()),
			cmp.Compare(a.player.Name, b.player.Name),
		)
	})

	t := newTable(out)
	t.AppendHeader(table.Row{"Name", "Position", "Value", "Points", "Since bought", "Since yesterday"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.player.Name,
			r.player.Position,
			formatMoney(r.player.Value),
			r.player.Points,
			formatDelta(r.delta),
			formatDelta(r.tendency),
		})
	}
	t.Render()
}
