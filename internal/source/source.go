// Package source defines what the synchronizer needs from the fantasy
// football site: today's roster, the manager's finances and the transfers
// announced in today's news.
package source

import (
	"fmt"
	"strings"
)

// API is the snapshot source consumed by the synchronizer. Implementations
// fetch everything up front, the getters never block.
type API interface {
	// Connected is false when the source could not supply today's data,
	// every other method returns zero values in that case.
	Connected() bool
	Roster() []Player
	Cash() int64
	TeamValue() int64
	TodayTransfers() []Transfer
}

type Position string

const (
	Goalkeeper Position = "Goalkeeper"
	Defense    Position = "Defense"
	Midfield   Position = "Midfield"
	Attack     Position = "Attack"
)

// Positions lists every position in lineup order.
var Positions = []Position{Goalkeeper, Defense, Midfield, Attack}

var positionLabels = map[string]Position{
	"goalkeeper": Goalkeeper,
	"torhüter":   Goalkeeper,
	"torwart":    Goalkeeper,
	"defense":    Defense,
	"abwehr":     Defense,
	"midfield":   Midfield,
	"mittelfeld": Midfield,
	"attack":     Attack,
	"sturm":      Attack,
}

// ParsePosition accepts both the site's german labels and the english names.
func ParsePosition(label string) (Position, error) {
	position, ok := positionLabels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("unknown position %q", label)
	}
	return position, nil
}

// Order returns the index of the position in lineup order, unknown positions sort last.
func (p Position) Order() int {
	for i, known := range Positions {
		if p == known {
			return i
		}
	}
	return len(Positions)
}

type Player struct {
	Name     string
	Position Position
	Value    int64
	Points   int64
}

type TransferType string

const (
	Bought TransferType = "bought"
	Sold   TransferType = "sold"
)

type Transfer struct {
	Name   string
	Amount int64
	Type   TransferType
}
