// Package historian answers read-only questions about what the ledger
// recorded: who was owned on a day, what a player was worth over time and
// what the manager's finances looked like.
package historian

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"slices"

	"comunio-manager/internal/components/assert"
	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/db"
	"comunio-manager/internal/source"

	"github.com/antzucaro/matchr"
)

const (
	report_db_query = "db.query"
	report_decode   = "decode"
)

// ErrInvalidQuery is returned for questions that cannot have an answer,
// like asking for a day that has not happened yet.
var ErrInvalidQuery = errors.New("invalid query")

type Snapshot struct {
	Name     string
	Position source.Position
	Value    int64
	Points   int64
	Date     chrono.Date
}

type Financials struct {
	Date      chrono.Date
	Cash      int64
	TeamValue int64
}

// LedgerEntry is one ownership span of a player, SellValue is only
// meaningful when Sold is set.
type LedgerEntry struct {
	Name      string
	BuyValue  int64
	SellValue int64
	Sold      bool
}

type Historian struct {
	qry  *db.Queries
	time chrono.TimeAPI
	tel  telemetry.API
}

func NewHistorian(qry *db.Queries, time chrono.TimeAPI, tel telemetry.API) Historian {
	assert.NotNil(qry)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Historian{
		qry:  qry,
		time: time,
		tel:  telemetry.NewScopedAPI("historian", tel),
	}
}

func (h Historian) decode(row db.Player) (Snapshot, error) {
	position, err := source.ParsePosition(row.Position)
	if err != nil {
		h.tel.ReportBroken(report_decode, err, row)
		return Snapshot{}, err
	}
	date, err := chrono.ParseDate(row.Date)
	if err != nil {
		h.tel.ReportBroken(report_decode, err, row)
		return Snapshot{}, err
	}
	return Snapshot{
		Name:     row.Name,
		Position: position,
		Value:    row.Value,
		Points:   row.Points,
		Date:     date,
	}, nil
}

// PlayersOn returns the snapshots of every player owned on date, ordered by
// name.
func (h Historian) PlayersOn(ctx context.Context, date chrono.Date) ([]Snapshot, error) {
	today := chrono.Today(h.time)
	if date.After(today) {
		return nil, fmt.Errorf("%w: %s is after today (%s)", ErrInvalidQuery, date, today)
	}

	rows, err := h.qry.GetPlayerSnapshotsOn(ctx, date.String())
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "GetPlayerSnapshotsOn", date)
		return nil, err
	}
	out := make([]Snapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := h.decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (h Historian) PlayerOn(ctx context.Context, name string, date chrono.Date) (snap Snapshot, found bool, err error) {
	param := db.GetPlayerSnapshotParams{
		Name: name,
		Date: date.String(),
	}
	row, err := h.qry.GetPlayerSnapshot(ctx, param)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "GetPlayerSnapshot", param)
		return Snapshot{}, false, err
	}
	snap, err = h.decode(row)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// OpenBuyValues maps every currently owned player to what was paid for them.
func (h Historian) OpenBuyValues(ctx context.Context) (map[string]int64, error) {
	entries, err := h.qry.GetOpenLedgerEntries(ctx)
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "GetOpenLedgerEntries")
		return nil, err
	}
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		out[e.Name] = e.BuyValue
	}
	return out, nil
}

// LastKnownFinancials returns the most recently recorded daily stats,
// found is false if nothing was recorded yet.
func (h Historian) LastKnownFinancials(ctx context.Context) (fin Financials, found bool, err error) {
	row, err := h.qry.GetLatestManagerStats(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Financials{}, false, nil
	}
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "GetLatestManagerStats")
		return Financials{}, false, err
	}
	date, err := chrono.ParseDate(row.Date)
	if err != nil {
		h.tel.ReportBroken(report_decode, err, row)
		return Financials{}, false, err
	}
	return Financials{
		Date:      date,
		Cash:      row.Cash,
		TeamValue: row.TeamValue,
	}, true, nil
}

// HistoryFor yields the snapshots of name from today backwards. Days without
// a snapshot are skipped, the walk ends once it passes the player's first
// recorded day. Each call of the returned sequence walks again from the
// start, an error is yielded once and ends the walk.
func (h Historian) HistoryFor(ctx context.Context, name string) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		first, err := h.qry.GetFirstSnapshotDate(ctx, name)
		if err != nil {
			h.tel.ReportBroken(report_db_query, err, "GetFirstSnapshotDate", name)
			yield(Snapshot{}, err)
			return
		}
		if !first.Valid {
			return
		}
		earliest, err := chrono.ParseDate(first.String)
		if err != nil {
			h.tel.ReportBroken(report_decode, err, first.String)
			yield(Snapshot{}, err)
			return
		}

		for day := chrono.Today(h.time); !day.Before(earliest); day = day.AddDays(-1) {
			if err := ctx.Err(); err != nil {
				yield(Snapshot{}, err)
				return
			}
			snap, found, err := h.PlayerOn(ctx, name, day)
			if err != nil {
				yield(Snapshot{}, err)
				return
			}
			if !found {
				continue
			}
			if !yield(snap, nil) {
				return
			}
		}
	}
}

// Ledger returns every ownership span in the order they were opened.
func (h Historian) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	entries, err := h.qry.ListLedgerEntries(ctx)
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "ListLedgerEntries")
		return nil, err
	}
	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntry{
			Name:      e.Name,
			BuyValue:  e.BuyValue,
			SellValue: e.SellValue.Int64,
			Sold:      e.SellValue.Valid,
		}
	}
	return out, nil
}

// SuggestNames returns up to limit recorded player names most similar to
// name, best match first.
func (h Historian) SuggestNames(ctx context.Context, name string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	names, err := h.qry.ListPlayerNames(ctx)
	if err != nil {
		h.tel.ReportBroken(report_db_query, err, "ListPlayerNames")
		return nil, err
	}

	type candidate struct {
		name       string
		similarity float64
	}
	candidates := make([]candidate, 0, len(names))
	for _, n := range names {
		similarity := matchr.JaroWinkler(name, n, false)
		if similarity > 0 {
			candidates = append(candidates, candidate{name: n, similarity: similarity})
		}
	}
	// stable so equally similar names keep their alphabetical order
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.similarity > b.similarity:
			return -1
		case a.similarity < b.similarity:
			return 1
		}
		return 0
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.name)
	}
	return out, nil
}
