package historian

import (
	"context"
	"testing"
	"time"

	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/db"
	"comunio-manager/internal/source"
	"comunio-manager/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (Historian, *db.Queries, *testutil.Clock) {
	qry := db.New(testutil.SetupDB(t))
	clock := testutil.NewClock(time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC))
	return NewHistorian(qry, clock, telemetry.SlogAPI{}), qry, clock
}

func insertSnapshot(t *testing.T, qry *db.Queries, snap Snapshot) {
	t.Helper()
	err := qry.CreatePlayerSnapshot(context.Background(), db.CreatePlayerSnapshotParams{
		Name:     snap.Name,
		Position: string(snap.Position),
		Value:    snap.Value,
		Points:   snap.Points,
		Date:     snap.Date.String(),
	})
	require.NoError(t, err)
}

func TestPlayerOnRoundTrip(t *testing.T) {
	h, qry, _ := setup(t)
	ctx := context.Background()

	expected := Snapshot{
		Name:     "X",
		Position: source.Attack,
		Value:    5_000_000,
		Points:   12,
		Date:     "2024-05-01",
	}
	insertSnapshot(t, qry, expected)

	snap, found, err := h.PlayerOn(ctx, "X", "2024-05-01")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, expected, snap)

	_, found, err = h.PlayerOn(ctx, "X", "2024-05-02")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = h.PlayerOn(ctx, "Y", "2024-05-01")
	require.NoError(t, err)
	require.False(t, found)
}

func TestPlayersOn(t *testing.T) {
	h, qry, _ := setup(t)
	ctx := context.Background()

	insertSnapshot(t, qry, Snapshot{Name: "B", Position: source.Defense, Value: 2, Points: 1, Date: "2024-05-10"})
	insertSnapshot(t, qry, Snapshot{Name: "A", Position: source.Goalkeeper, Value: 1, Points: 0, Date: "2024-05-10"})
	insertSnapshot(t, qry, Snapshot{Name: "A", Position: source.Goalkeeper, Value: 1, Points: 0, Date: "2024-05-09"})

	players, err := h.PlayersOn(ctx, "2024-05-10")
	require.NoError(t, err)
	require.Equal(t, []Snapshot{
		{Name: "A", Position: source.Goalkeeper, Value: 1, Points: 0, Date: "2024-05-10"},
		{Name: "B", Position: source.Defense, Value: 2, Points: 1, Date: "2024-05-10"},
	}, players)

	players, err = h.PlayersOn(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Empty(t, players)

	_, err = h.PlayersOn(ctx, "2024-05-11")
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestOpenBuyValues(t *testing.T) {
	h, qry, _ := setup(t)
	ctx := context.Background()

	for _, e := range []db.OpenLedgerEntryParams{
		{Name: "A", BuyValue: 1_000_000},
		{Name: "B", BuyValue: 2_000_000},
		{Name: "C", BuyValue: 3_000_000},
	} {
		_, err := qry.OpenLedgerEntry(ctx, e)
		require.NoError(t, err)
	}
	_, err := qry.CloseLedgerEntry(ctx, db.CloseLedgerEntryParams{Name: "B", SellValue: 2_500_000})
	require.NoError(t, err)

	values, err := h.OpenBuyValues(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"A": 1_000_000, "C": 3_000_000}, values)

	ledger, err := h.Ledger(ctx)
	require.NoError(t, err)
	require.Equal(t, []LedgerEntry{
		{Name: "A", BuyValue: 1_000_000},
		{Name: "B", BuyValue: 2_000_000, SellValue: 2_500_000, Sold: true},
		{Name: "C", BuyValue: 3_000_000},
	}, ledger)
}

func TestLastKnownFinancials(t *testing.T) {
	h, qry, _ := setup(t)
	ctx := context.Background()

	_, found, err := h.LastKnownFinancials(ctx)
	require.NoError(t, err)
	require.False(t, found)

	for _, s := range []db.CreateManagerStatsParams{
		{Date: "2024-05-02", Cash: 1, TeamValue: 2},
		{Date: "2024-05-08", Cash: 25_000_000, TeamValue: 20_000_000},
		{Date: "2024-05-05", Cash: 3, TeamValue: 4},
	} {
		require.NoError(t, qry.CreateManagerStats(ctx, s))
	}

	fin, found, err := h.LastKnownFinancials(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, Financials{Date: "2024-05-08", Cash: 25_000_000, TeamValue: 20_000_000}, fin)
}

func collect(t *testing.T, h Historian, name string) []Snapshot {
	t.Helper()
	var out []Snapshot
	for snap, err := range h.HistoryFor(context.Background(), name) {
		require.NoError(t, err)
		out = append(out, snap)
	}
	return out
}

func TestHistoryFor(t *testing.T) {
	h, qry, clock := setup(t)

	for _, snap := range []Snapshot{
		{Name: "A", Position: source.Midfield, Value: 100, Points: 1, Date: "2024-05-03"},
		{Name: "A", Position: source.Midfield, Value: 110, Points: 3, Date: "2024-05-04"},
		{Name: "A", Position: source.Midfield, Value: 130, Points: 9, Date: "2024-05-09"},
		{Name: "B", Position: source.Attack, Value: 999, Points: 0, Date: "2024-05-01"},
	} {
		insertSnapshot(t, qry, snap)
	}

	expected := []Snapshot{
		{Name: "A", Position: source.Midfield, Value: 130, Points: 9, Date: "2024-05-09"},
		{Name: "A", Position: source.Midfield, Value: 110, Points: 3, Date: "2024-05-04"},
		{Name: "A", Position: source.Midfield, Value: 100, Points: 1, Date: "2024-05-03"},
	}
	if diff := cmp.Diff(expected, collect(t, h, "A")); diff != "" {
		t.Fatal("history (-want +got)\n", diff)
	}

	// the sequence can be walked again
	require.Len(t, collect(t, h, "A"), 3)

	// snapshots after today are not part of the walk
	clock.AdvanceDays(-2)
	require.Equal(t, chrono.Date("2024-05-08"), chrono.Today(clock))
	require.Equal(t, expected[1:], collect(t, h, "A"))
}

func TestHistoryForNeverOwned(t *testing.T) {
	h, _, _ := setup(t)
	require.Empty(t, collect(t, h, "NeverOwned"))
}

func TestHistoryForStopsEarly(t *testing.T) {
	h, qry, _ := setup(t)
	for _, date := range []chrono.Date{"2024-05-10", "2024-05-09", "2024-05-08"} {
		insertSnapshot(t, qry, Snapshot{Name: "A", Position: source.Attack, Value: 1, Points: 1, Date: date})
	}

	var got []chrono.Date
	for snap, err := range h.HistoryFor(context.Background(), "A") {
		require.NoError(t, err)
		got = append(got, snap.Date)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []chrono.Date{"2024-05-10", "2024-05-09"}, got)
}

func TestHistoryForCanceled(t *testing.T) {
	h, qry, _ := setup(t)
	insertSnapshot(t, qry, Snapshot{Name: "A", Position: source.Attack, Value: 1, Points: 1, Date: "2024-05-01"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range h.HistoryFor(ctx, "A") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], context.Canceled)
}

func TestSuggestNames(t *testing.T) {
	h, qry, _ := setup(t)
	ctx := context.Background()

	for _, name := range []string{"Max Kruse", "Mats Hummels", "Manuel Neuer", "Toni Kroos"} {
		insertSnapshot(t, qry, Snapshot{Name: name, Position: source.Attack, Value: 1, Points: 1, Date: "2024-05-01"})
	}

	names, err := h.SuggestNames(ctx, "Max Krus", 2)
	require.NoError(t, err)
	require.Len(t, names, 2)
	require.Equal(t, "Max Kruse", names[0])

	names, err = h.SuggestNames(ctx, "Max Kruse", 0)
	require.NoError(t, err)
	require.Empty(t, names)
}
