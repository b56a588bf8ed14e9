// Package roles assigns an entry's picks to draft roles.
package roles

import "github.com/pable/go-dawgbowl-metrics/internal/model"

const (
	maxRB = 1
	maxWR = 2
)

// Assign maps pick slots to the QB, RB1, WR1, WR2, TE and Flex roles.
//
// Pass 1 walks slots 1→6 and gives each slot to at most one primary role.
// A second QB matches nothing and stays out of role accounting for good.
// Pass 2 gives Flex to the first slot still unused whose position is RB, WR or TE.
func Assign(positions [model.PickCount]model.Position) model.Roles {
	var r model.Roles
	rbCount, wrCount := 0, 0

	for i, pos := range positions {
		slot := model.Slot(i + 1)
		switch {
		case pos == model.PosQB && !r.QB.Assigned():
			r.QB = slot
		case pos == model.PosRB && rbCount < maxRB:
			r.RB1 = slot
			rbCount++
		case pos == model.PosWR && wrCount < maxWR:
			if !r.WR1.Assigned() {
				r.WR1 = slot
			} else {
				r.WR2 = slot
			}
			wrCount++
		case pos == model.PosTE && !r.TE.Assigned():
			r.TE = slot
		}
	}

	for i, pos := range positions {
		slot := model.Slot(i + 1)
		if !r.Used(slot) && pos.IsSkill() {
			r.Flex = slot
			break
		}
	}
	return r
}
