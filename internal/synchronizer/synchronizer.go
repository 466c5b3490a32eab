// Package synchronizer records one day of the manager's account into the
// ledger: player snapshots, daily stats and the ownership spans inferred
// from transfers.
package synchronizer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"comunio-manager/internal/components/assert"
	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/db"
	"comunio-manager/internal/source"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	tracer = otel.Tracer("internal/synchronizer")
	meter  = otel.Meter("internal/synchronizer")
)

const (
	report_db_query       = "db.query"
	report_run            = "run"
	report_ledger_open    = "ledger.open"
	report_ledger_close   = "ledger.close"
	report_run_instrument = "run.instrument"
)

// LookbackDays is how many days (today included) are searched for the last
// known value of a player that left the roster.
const LookbackDays = 15

// ErrIntegrityViolation is returned when the ledger rejected a write because
// the day was already recorded, nothing of the run is persisted.
var ErrIntegrityViolation = errors.New("ledger integrity violation")

type Status string

const (
	// StatusOffline means the source could not supply today's data, nothing was written.
	StatusOffline Status = "offline"
	// StatusAlreadyRecorded means today was recorded by an earlier run, nothing was written.
	StatusAlreadyRecorded Status = "already_recorded"
	StatusRecorded        Status = "recorded"
)

type Result struct {
	Status    Status
	Date      chrono.Date
	Snapshots int
	Opened    int
	Closed    int
}

type Synchronizer struct {
	makeTx db.MakeTx
	source source.API
	time   chrono.TimeAPI
	tel    telemetry.API
	runs   metric.Int64Counter
}

func NewSynchronizer(
	makeTx db.MakeTx,
	src source.API,
	time chrono.TimeAPI,
	tel telemetry.API,
) Synchronizer {
	assert.NotNil(makeTx)
	assert.NotNil(src)
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("synchronizer", tel)

	runs, err := meter.Int64Counter(
		"synchronizer.runs",
		metric.WithDescription("Synchronizer runs by outcome."),
	)
	if err != nil {
		tel.ReportBroken(report_run_instrument, err)
		runs = noop.Int64Counter{}
	}

	return Synchronizer{
		makeTx: makeTx,
		source: src,
		time:   time,
		tel:    tel,
		runs:   runs,
	}
}

// Run records today unless the source is offline or today is already
// recorded. Every write of a run happens in one transaction.
func (s Synchronizer) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	today := chrono.Today(s.time)
	span.SetAttributes(attribute.String("date", today.String()))

	res, err := s.run(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
		return Result{Date: today}, err
	}

	span.SetAttributes(
		attribute.String("status", string(res.Status)),
		attribute.Int("snapshots", res.Snapshots),
		attribute.Int("opened", res.Opened),
		attribute.Int("closed", res.Closed),
	)
	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(res.Status))))
	return res, nil
}

func (s Synchronizer) run(ctx context.Context, today chrono.Date) (Result, error) {
	res := Result{Date: today}

	if !s.source.Connected() {
		s.tel.ReportDebug("source offline, skipping", today)
		res.Status = StatusOffline
		return res, nil
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return res, err
	}
	defer discard()

	recorded, err := s.alreadyRecorded(ctx, tx, today)
	if err != nil {
		return res, err
	}
	if recorded {
		s.tel.ReportDebug("already recorded", today)
		res.Status = StatusAlreadyRecorded
		return res, nil
	}

	roster := s.source.Roster()

	res.Snapshots, err = s.recordSnapshots(ctx, tx, today, roster)
	if err != nil {
		return res, err
	}
	err = s.recordStats(ctx, tx, today)
	if err != nil {
		return res, err
	}

	opened, closed, err := s.applyTransfers(ctx, tx, s.source.TodayTransfers())
	if err != nil {
		return res, err
	}
	res.Opened += opened
	res.Closed += closed

	closed, err = s.closeMissing(ctx, tx, today, roster)
	if err != nil {
		return res, err
	}
	res.Closed += closed

	opened, err = s.openUnregistered(ctx, tx, roster)
	if err != nil {
		return res, err
	}
	res.Opened += opened

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return res, err
	}

	res.Status = StatusRecorded
	s.tel.ReportDebug(
		"recorded",
		today,
		telemetry.KV{Key: "snapshots", Value: res.Snapshots},
		telemetry.KV{Key: "opened", Value: res.Opened},
		telemetry.KV{Key: "closed", Value: res.Closed},
	)
	return res, nil
}

// alreadyRecorded is the once per day guard, it runs inside the run's
// transaction.
func (s Synchronizer) alreadyRecorded(ctx context.Context, tx *db.Queries, today chrono.Date) (bool, error) {
	snapshots, err := tx.CountPlayerSnapshotsOn(ctx, today.String())
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CountPlayerSnapshotsOn", today)
		return false, err
	}
	if snapshots > 0 {
		return true, nil
	}

	// a day with an empty roster only leaves a stats row behind
	stats, err := tx.CountManagerStatsOn(ctx, today.String())
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CountManagerStatsOn", today)
		return false, err
	}
	return stats > 0, nil
}

func (s Synchronizer) recordSnapshots(ctx context.Context, tx *db.Queries, today chrono.Date, roster []source.Player) (int, error) {
	for _, p := range roster {
		param := db.CreatePlayerSnapshotParams{
			Name:     p.Name,
			Position: string(p.Position),
			Value:    p.Value,
			Points:   p.Points,
			Date:     today.String(),
		}
		err := tx.CreatePlayerSnapshot(ctx, param)
		if db.IsConstraintViolation(err) {
			err = fmt.Errorf("%w: snapshot of %q on %s: %w", ErrIntegrityViolation, p.Name, today, err)
			s.tel.ReportBroken(report_run, err)
			return 0, err
		}
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "CreatePlayerSnapshot", param)
			return 0, err
		}
	}
	return len(roster), nil
}

func (s Synchronizer) recordStats(ctx context.Context, tx *db.Queries, today chrono.Date) error {
	param := db.CreateManagerStatsParams{
		Date:      today.String(),
		Cash:      s.source.Cash(),
		TeamValue: s.source.TeamValue(),
	}
	err := tx.CreateManagerStats(ctx, param)
	if db.IsConstraintViolation(err) {
		err = fmt.Errorf("%w: stats on %s: %w", ErrIntegrityViolation, today, err)
		s.tel.ReportBroken(report_run, err)
		return err
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateManagerStats", param)
		return err
	}
	return nil
}

// applyTransfers applies the transfers announced in the news, their amounts
// are the actual prices paid so they take precedence over inferred values.
func (s Synchronizer) applyTransfers(ctx context.Context, tx *db.Queries, transfers []source.Transfer) (opened, closed int, err error) {
	for _, t := range transfers {
		switch t.Type {
		case source.Bought:
			ok, err := s.open(ctx, tx, t.Name, t.Amount)
			if err != nil {
				return opened, closed, err
			}
			if ok {
				opened++
			}
		case source.Sold:
			ok, err := s.close(ctx, tx, t.Name, t.Amount)
			if err != nil {
				return opened, closed, err
			}
			if ok {
				closed++
			} else {
				s.tel.ReportWarning(report_ledger_close, fmt.Errorf("sold %q without an open entry", t.Name))
			}
		default:
			s.tel.ReportWarning(report_run, fmt.Errorf("unknown transfer type %q", t.Type), t)
		}
	}
	return opened, closed, nil
}

// closeMissing closes the open entries of players no longer on the roster at
// their last known value.
func (s Synchronizer) closeMissing(ctx context.Context, tx *db.Queries, today chrono.Date, roster []source.Player) (int, error) {
	entries, err := tx.GetOpenLedgerEntries(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetOpenLedgerEntries")
		return 0, err
	}

	owned := rosterNames(roster)
	closed := 0
	for _, entry := range entries {
		if _, ok := owned[entry.Name]; ok {
			continue
		}
		value, err := s.lastKnownValue(ctx, tx, entry.Name, today, entry.BuyValue)
		if err != nil {
			return closed, err
		}
		ok, err := s.close(ctx, tx, entry.Name, value)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// lastKnownValue walks back from today one day at a time looking for a
// snapshot of name, fallback is used when none is found within the lookback.
func (s Synchronizer) lastKnownValue(ctx context.Context, tx *db.Queries, name string, today chrono.Date, fallback int64) (int64, error) {
	for i := range LookbackDays {
		param := db.GetPlayerSnapshotParams{
			Name: name,
			Date: today.AddDays(-i).String(),
		}
		snap, err := tx.GetPlayerSnapshot(ctx, param)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "GetPlayerSnapshot", param)
			return 0, err
		}
		return snap.Value, nil
	}
	s.tel.ReportDebug(
		"no recent snapshot, using buy value",
		telemetry.KV{Key: "name", Value: name},
		telemetry.KV{Key: "buy_value", Value: fallback},
	)
	return fallback, nil
}

// openUnregistered opens an entry for every roster player that is not owned
// according to the ledger. The purchase price is unknown so today's market
// value is used.
func (s Synchronizer) openUnregistered(ctx context.Context, tx *db.Queries, roster []source.Player) (int, error) {
	entries, err := tx.GetOpenLedgerEntries(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetOpenLedgerEntries")
		return 0, err
	}
	registered := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		registered[entry.Name] = struct{}{}
	}

	opened := 0
	for _, p := range roster {
		if _, ok := registered[p.Name]; ok {
			continue
		}
		ok, err := s.open(ctx, tx, p.Name, p.Value)
		if err != nil {
			return opened, err
		}
		if ok {
			opened++
			registered[p.Name] = struct{}{}
		}
	}
	return opened, nil
}

func (s Synchronizer) open(ctx context.Context, tx *db.Queries, name string, buyValue int64) (bool, error) {
	param := db.OpenLedgerEntryParams{
		Name:     name,
		BuyValue: buyValue,
	}
	rows, err := tx.OpenLedgerEntry(ctx, param)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "OpenLedgerEntry", param)
		return false, err
	}
	if rows == 0 {
		s.tel.ReportWarning(report_ledger_open, fmt.Errorf("%q is already open", name))
		return false, nil
	}
	return true, nil
}

func (s Synchronizer) close(ctx context.Context, tx *db.Queries, name string, sellValue int64) (bool, error) {
	param := db.CloseLedgerEntryParams{
		SellValue: sellValue,
		Name:      name,
	}
	rows, err := tx.CloseLedgerEntry(ctx, param)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CloseLedgerEntry", param)
		return false, err
	}
	return rows > 0, nil
}

func rosterNames(roster []source.Player) map[string]struct{} {
	names := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		names[p.Name] = struct{}{}
	}
	return names
}
