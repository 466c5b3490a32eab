// Package statistics derives the numbers shown in the summary from what the
// historian recorded.
package statistics

import (
	"context"
	"errors"
	"fmt"

	"comunio-manager/internal/components/assert"
	"comunio-manager/internal/components/chrono"
	"comunio-manager/internal/historian"
)

// StartingCapital is what every manager starts the season with.
const StartingCapital int64 = 40_000_000

// ErrNoFinancials is returned when no daily stats were recorded yet.
var ErrNoFinancials = errors.New("no financials recorded yet")

// History is the part of the historian the calculator reads from.
type History interface {
	PlayersOn(ctx context.Context, date chrono.Date) ([]historian.Snapshot, error)
	PlayerOn(ctx context.Context, name string, date chrono.Date) (historian.Snapshot, bool, error)
	OpenBuyValues(ctx context.Context) (map[string]int64, error)
	LastKnownFinancials(ctx context.Context) (historian.Financials, bool, error)
}

// Delta is a difference that may not be computable, for example when the day
// before was never recorded. Value is zero when Available is false.
type Delta struct {
	Value     int64
	Available bool
}

func available(value int64) Delta {
	return Delta{Value: value, Available: true}
}

var unavailable = Delta{}

type PlayerDelta struct {
	Player historian.Snapshot
	Delta  Delta
}

type Calculator struct {
	history History
	time    chrono.TimeAPI
}

func NewCalculator(history History, time chrono.TimeAPI) Calculator {
	assert.NotNil(history)
	assert.NotNil(time)
	return Calculator{history: history, time: time}
}

// TotalAssetsDelta is the manager's cash plus team value minus the starting
// capital, as of the last recorded day.
func (c Calculator) TotalAssetsDelta(ctx context.Context) (int64, error) {
	fin, found, err := c.history.LastKnownFinancials(ctx)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNoFinancials
	}
	return fin.Cash + fin.TeamValue - StartingCapital, nil
}

// PlayerDeltas compares today's value of each owned player with what was
// paid for them.
func (c Calculator) PlayerDeltas(ctx context.Context) ([]PlayerDelta, error) {
	today := chrono.Today(c.time)
	players, err := c.history.PlayersOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("players on %s: %w", today, err)
	}
	buyValues, err := c.history.OpenBuyValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("buy values: %w", err)
	}

	out := make([]PlayerDelta, len(players))
	for i, p := range players {
		out[i] = PlayerDelta{Player: p, Delta: unavailable}
		buyValue, ok := buyValues[p.Name]
		if ok {
			out[i].Delta = available(p.Value - buyValue)
		}
	}
	return out, nil
}

// Tendencies compares today's value of each owned player with yesterday's.
func (c Calculator) Tendencies(ctx context.Context) ([]PlayerDelta, error) {
	today := chrono.Today(c.time)
	yesterday := today.AddDays(-1)

	players, err := c.history.PlayersOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("players on %s: %w", today, err)
	}

	out := make([]PlayerDelta, len(players))
	for i, p := range players {
		out[i] = PlayerDelta{Player: p, Delta: unavailable}
		before, found, err := c.history.PlayerOn(ctx, p.Name, yesterday)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", p.Name, yesterday, err)
		}
		if found {
			out[i].Delta = available(p.Value - before.Value)
		}
	}
	return out, nil
}
