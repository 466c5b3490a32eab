package db

import (
	"context"
	"database/sql"
)

const createPlayerSnapshot = `-- name: CreatePlayerSnapshot :exec
INSERT INTO players (name, position, value, points, date) VALUES (?, ?, ?, ?, ?)
`

type CreatePlayerSnapshotParams struct {
	Name     string
	Position string
	Value    int64
	Points   int64
	Date     string
}

func (q *Queries) CreatePlayerSnapshot(ctx context.Context, arg CreatePlayerSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createPlayerSnapshot,
		arg.Name,
		arg.Position,
		arg.Value,
		arg.Points,
		arg.Date,
	)
	return err
}

const countPlayerSnapshotsOn = `-- name: CountPlayerSnapshotsOn :one
SELECT COUNT(*) FROM players WHERE date = ?
`

func (q *Queries) CountPlayerSnapshotsOn(ctx context.Context, date string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlayerSnapshotsOn, date)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getPlayerSnapshotsOn = `-- name: GetPlayerSnapshotsOn :many
SELECT name, position, value, points, date FROM players
WHERE date = ?
ORDER BY name
`

func (q *Queries) GetPlayerSnapshotsOn(ctx context.Context, date string) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, getPlayerSnapshotsOn, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.Name,
			&i.Position,
			&i.Value,
			&i.Points,
			&i.Date,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPlayerSnapshot = `-- name: GetPlayerSnapshot :one
SELECT name, position, value, points, date FROM players
WHERE name = ? AND date = ?
`

type GetPlayerSnapshotParams struct {
	Name string
	Date string
}

func (q *Queries) GetPlayerSnapshot(ctx context.Context, arg GetPlayerSnapshotParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerSnapshot, arg.Name, arg.Date)
	var i Player
	err := row.Scan(
		&i.Name,
		&i.Position,
		&i.Value,
		&i.Points,
		&i.Date,
	)
	return i, err
}

const getFirstSnapshotDate = `-- name: GetFirstSnapshotDate :one
SELECT MIN(date) FROM players WHERE name = ?
`

func (q *Queries) GetFirstSnapshotDate(ctx context.Context, name string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, getFirstSnapshotDate, name)
	var min sql.NullString
	err := row.Scan(&min)
	return min, err
}

const listPlayerNames = `-- name: ListPlayerNames :many
SELECT DISTINCT name FROM players ORDER BY name
`

func (q *Queries) ListPlayerNames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createManagerStats = `-- name: CreateManagerStats :exec
INSERT INTO manager_stats (date, cash, team_value) VALUES (?, ?, ?)
`

type CreateManagerStatsParams struct {
	Date      string
	Cash      int64
	TeamValue int64
}

func (q *Queries) CreateManagerStats(ctx context.Context, arg CreateManagerStatsParams) error {
	_, err := q.db.ExecContext(ctx, createManagerStats, arg.Date, arg.Cash, arg.TeamValue)
	return err
}

const countManagerStatsOn = `-- name: CountManagerStatsOn :one
SELECT COUNT(*) FROM manager_stats WHERE date = ?
`

func (q *Queries) CountManagerStatsOn(ctx context.Context, date string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countManagerStatsOn, date)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getLatestManagerStats = `-- name: GetLatestManagerStats :one
SELECT date, cash, team_value FROM manager_stats
ORDER BY date DESC
LIMIT 1
`

func (q *Queries) GetLatestManagerStats(ctx context.Context) (ManagerStat, error) {
	row := q.db.QueryRowContext(ctx, getLatestManagerStats)
	var i ManagerStat
	err := row.Scan(&i.Date, &i.Cash, &i.TeamValue)
	return i, err
}

// opening a player that is already open is ignored, the returned row count
// tells the caller whether a row was inserted.
const openLedgerEntry = `-- name: OpenLedgerEntry :execrows
INSERT INTO player_info (name, buy_value, sell_value)
SELECT ?, ?, NULL
WHERE NOT EXISTS (
    SELECT 1 FROM player_info WHERE name = ? AND sell_value IS NULL
)
`

type OpenLedgerEntryParams struct {
	Name     string
	BuyValue int64
}

func (q *Queries) OpenLedgerEntry(ctx context.Context, arg OpenLedgerEntryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, openLedgerEntry, arg.Name, arg.BuyValue, arg.Name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const closeLedgerEntry = `-- name: CloseLedgerEntry :execrows
UPDATE player_info SET sell_value = ?
WHERE name = ? AND sell_value IS NULL
`

type CloseLedgerEntryParams struct {
	SellValue int64
	Name      string
}

func (q *Queries) CloseLedgerEntry(ctx context.Context, arg CloseLedgerEntryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, closeLedgerEntry, arg.SellValue, arg.Name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getOpenLedgerEntries = `-- name: GetOpenLedgerEntries :many
SELECT id, name, buy_value, sell_value FROM player_info
WHERE sell_value IS NULL
ORDER BY id
`

func (q *Queries) GetOpenLedgerEntries(ctx context.Context) ([]PlayerInfo, error) {
	return q.listPlayerInfo(ctx, getOpenLedgerEntries)
}

const listLedgerEntries = `-- name: ListLedgerEntries :many
SELECT id, name, buy_value, sell_value FROM player_info
ORDER BY id
`

func (q *Queries) ListLedgerEntries(ctx context.Context) ([]PlayerInfo, error) {
	return q.listPlayerInfo(ctx, listLedgerEntries)
}

func (q *Queries) listPlayerInfo(ctx context.Context, query string) ([]PlayerInfo, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerInfo
	for rows.Next() {
		var i PlayerInfo
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.BuyValue,
			&i.SellValue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
