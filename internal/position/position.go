// Package position resolves drafted players to their positional category.
package position

import (
	"strings"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

// Pair is one row of a position list.
type Pair struct {
	Name     string
	Position string
}

// Map is an immutable player → position lookup. The zero value resolves
// every player to Unknown.
type Map struct {
	byName map[string]model.Position
}

// New builds a Map from position list rows. Later rows for the same name win.
// Positions outside QB/RB/WR/TE are stored as Unknown.
func New(pairs []Pair) Map {
	m := make(map[string]model.Position, len(pairs))
	for _, p := range pairs {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		m[name] = Parse(p.Position)
	}
	return Map{byName: m}
}

// Parse classifies a raw position label.
func Parse(s string) model.Position {
	switch model.Position(strings.ToUpper(strings.TrimSpace(s))) {
	case model.PosQB:
		return model.PosQB
	case model.PosRB:
		return model.PosRB
	case model.PosWR:
		return model.PosWR
	case model.PosTE:
		return model.PosTE
	default:
		return model.PosUnknown
	}
}

// Resolve returns the mapped position for player, or Unknown.
func (m Map) Resolve(player string) model.Position {
	if pos, ok := m.byName[player]; ok {
		return pos
	}
	return model.PosUnknown
}

// ResolveAll maps each pick of an entry to its position.
func (m Map) ResolveAll(players [model.PickCount]string) [model.PickCount]model.Position {
	var out [model.PickCount]model.Position
	for i, p := range players {
		out[i] = m.Resolve(p)
	}
	return out
}

// Len is the number of mapped players.
func (m Map) Len() int { return len(m.byName) }
