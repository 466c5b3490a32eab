package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Lists every player ever owned with what they were bought and sold for.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		entries, err := state.historian().Ledger(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "no players owned yet")
			return nil
		}

		var profit int64
		t := newTable(out)
		t.AppendHeader(table.Row{"Name", "Bought for", "Sold for", "Profit"})
		for _, e := range entries {
			if !e.Sold {
				t.AppendRow(table.Row{e.Name, formatMoney(e.BuyValue), "owned", ""})
				continue
			}
			profit += e.SellValue - e.BuyValue
			t.AppendRow(table.Row{
				e.Name,
				formatMoney(e.BuyValue),
				formatMoney(e.SellValue),
				formatChange(e.SellValue - e.BuyValue),
			})
		}
		t.AppendFooter(table.Row{"", "", "Total", formatChange(profit)})
		t.Render()
		return nil
	},
}
