package commands

import (
	"io"

	"comunio-manager/internal/statistics"

	"github.com/Rhymond/go-money"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

const currency = money.EUR

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// formatMoney renders a whole euro amount, the site never deals in cents.
func formatMoney(amount int64) string {
	cur := money.GetCurrency(currency)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromInt(amount).Mul(factor)
	return money.New(minor.IntPart(), currency).Display()
}

// formatChange is formatMoney with an explicit sign for gains.
func formatChange(amount int64) string {
	if amount > 0 {
		return "+" + formatMoney(amount)
	}
	return formatMoney(amount)
}

func formatDelta(delta statistics.Delta) string {
	if !delta.Available {
		return "n/a"
	}
	return formatChange(delta.Value)
}
