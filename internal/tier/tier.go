// Package tier tags entries with elite percentile tiers inside their week.
package tier

import (
	"math"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

// Thresholds are the inclusive rank cutoffs for one group.
type Thresholds struct {
	Top01 int
	Top05 int
	Top1  int
}

// Threshold returns max(1, round(fraction*n)). Halves round to even, so a
// field of 500 gets a 0.5% cutoff of 2, not 3.
func Threshold(fraction float64, n int) int {
	t := int(math.RoundToEven(fraction * float64(n)))
	if t < 1 {
		return 1
	}
	return t
}

// For computes the three tier cutoffs for a group of n entries.
func For(n int) Thresholds {
	return Thresholds{
		Top01: Threshold(model.Tier01.Fraction(), n),
		Top05: Threshold(model.Tier05.Fraction(), n),
		Top1:  Threshold(model.Tier1.Fraction(), n),
	}
}

// Flags tags a single rank against th. The comparison is inclusive, so tied
// ranks at the cutoff all pass.
func (th Thresholds) Flags(rank int) model.TierFlags {
	return model.TierFlags{
		Elite01: rank <= th.Top01,
		Elite05: rank <= th.Top05,
		Elite1:  rank <= th.Top1,
	}
}

// Classify tags every rank of one group. out[i] belongs to ranks[i].
func Classify(ranks []int) []model.TierFlags {
	th := For(len(ranks))
	out := make([]model.TierFlags, len(ranks))
	for i, r := range ranks {
		out[i] = th.Flags(r)
	}
	return out
}

// Group is the row indices sharing one week key, in input order.
type Group struct {
	Week    string
	Indices []int
}

// GroupByWeek partitions row indices by week, groups in first-seen order.
func GroupByWeek(weeks []string) []Group {
	pos := make(map[string]int)
	var groups []Group
	for i, w := range weeks {
		g, ok := pos[w]
		if !ok {
			g = len(groups)
			pos[w] = g
			groups = append(groups, Group{Week: w})
		}
		groups[g].Indices = append(groups[g].Indices, i)
	}
	return groups
}

// ClassifyByWeek tags ranks[i] using only the rows whose weeks[i] matches.
// weeks and ranks must have equal length.
func ClassifyByWeek(weeks []string, ranks []int) []model.TierFlags {
	out := make([]model.TierFlags, len(ranks))
	for _, g := range GroupByWeek(weeks) {
		groupRanks := make([]int, len(g.Indices))
		for j, idx := range g.Indices {
			groupRanks[j] = ranks[idx]
		}
		for j, f := range Classify(groupRanks) {
			out[g.Indices[j]] = f
		}
	}
	return out
}
