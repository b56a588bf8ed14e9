// Package hitrate measures how over-represented players and player pairs are
// among elite entries compared with a reference population.
//
// Two elite policies exist and are kept separate on purpose:
//
//   - TierElite selects by the per-week rounded percentile flags.
//   - TopFraction selects the floor(fraction*N) best ranks of one batch.
//
// They produce different subsets for the same data and must not be swapped.
package hitrate

import (
	"math"
	"sort"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

// DefaultTopFraction is the share of a batch the trait scanner treats as elite.
const DefaultTopFraction = 0.01

// TierElite returns the entries flagged for t.
func TierElite(entries []model.Entry, t model.Tier) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Tiers.Has(t) {
			out = append(out, e)
		}
	}
	return out
}

// CutoffCount is max(1, floor(fraction*n)).
func CutoffCount(n int, fraction float64) int {
	c := int(math.Floor(fraction * float64(n)))
	if c < 1 {
		return 1
	}
	return c
}

// TopFraction returns the CutoffCount entries with the smallest place.
// Equal places keep their input order. An empty batch yields nothing.
func TopFraction(entries []model.Entry, fraction float64) []model.Entry {
	if len(entries) == 0 {
		return nil
	}
	sorted := make([]model.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Place < sorted[j].Place
	})
	n := CutoffCount(len(entries), fraction)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// counter accumulates counts while remembering first-seen order.
type counter[K comparable] struct {
	counts map[K]int
	order  []K
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) add(k K) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

// Players counts each pick across all six slots in pop and elite and returns
// one row per player seen in pop. Rows are ordered by hit rate descending,
// then population count descending, then first appearance in pop.
func Players(pop, elite []model.Entry) []model.PlayerHitRate {
	popCounts := newCounter[string]()
	for _, e := range pop {
		for _, p := range e.Players {
			popCounts.add(p)
		}
	}
	eliteCounts := newCounter[string]()
	for _, e := range elite {
		for _, p := range e.Players {
			eliteCounts.add(p)
		}
	}

	rows := make([]model.PlayerHitRate, 0, len(popCounts.order))
	for _, p := range popCounts.order {
		pc := popCounts.counts[p]
		if pc == 0 {
			continue
		}
		ec := eliteCounts.counts[p]
		rows = append(rows, model.PlayerHitRate{
			Player:          p,
			PopulationCount: pc,
			EliteCount:      ec,
			HitRate:         rate(ec, pc),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].HitRate != rows[j].HitRate {
			return rows[i].HitRate > rows[j].HitRate
		}
		return rows[i].PopulationCount > rows[j].PopulationCount
	})
	return rows
}

type pairKey struct{ a, b string }

// PairsOf returns the 15 unordered pick pairs of one entry. Picks are sorted
// first, so each pair has a <= b. A player picked twice yields a self-pair.
func PairsOf(players [model.PickCount]string) [][2]string {
	sorted := players
	sort.Strings(sorted[:])
	out := make([][2]string, 0, model.PickCount*(model.PickCount-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			out = append(out, [2]string{sorted[i], sorted[j]})
		}
	}
	return out
}

// Pairs is Players for unordered pick pairs. Ordering rules are the same.
func Pairs(pop, elite []model.Entry) []model.PairHitRate {
	popCounts := newCounter[pairKey]()
	for _, e := range pop {
		for _, p := range PairsOf(e.Players) {
			popCounts.add(pairKey{p[0], p[1]})
		}
	}
	eliteCounts := newCounter[pairKey]()
	for _, e := range elite {
		for _, p := range PairsOf(e.Players) {
			eliteCounts.add(pairKey{p[0], p[1]})
		}
	}

	rows := make([]model.PairHitRate, 0, len(popCounts.order))
	for _, k := range popCounts.order {
		pc := popCounts.counts[k]
		if pc == 0 {
			continue
		}
		ec := eliteCounts.counts[k]
		rows = append(rows, model.PairHitRate{
			PlayerA:         k.a,
			PlayerB:         k.b,
			PopulationCount: pc,
			EliteCount:      ec,
			HitRate:         rate(ec, pc),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].HitRate != rows[j].HitRate {
			return rows[i].HitRate > rows[j].HitRate
		}
		return rows[i].PopulationCount > rows[j].PopulationCount
	})
	return rows
}

func rate(elite, pop int) float64 {
	return 100 * float64(elite) / float64(pop)
}
