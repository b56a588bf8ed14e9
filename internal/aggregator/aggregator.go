package aggregator

import (
	"sort"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/position"
	"github.com/pable/go-dawgbowl-metrics/internal/roles"
	"github.com/pable/go-dawgbowl-metrics/internal/tier"
)

// Enrich runs the pipeline positions → roles → tiers over every batch and
// returns the entries in batch order. Tiers are cut per week, so two files
// carrying the same week label share one cutoff.
func Enrich(batches []model.Batch, positions position.Map) []model.Entry {
	var entries []model.Entry
	for _, b := range batches {
		for _, raw := range b.Entries {
			if raw.Week == "" {
				raw.Week = b.Week
			}
			e := model.Entry{RawEntry: raw}
			e.Positions = positions.ResolveAll(raw.Players)
			e.Roles = roles.Assign(e.Positions)
			entries = append(entries, e)
		}
	}

	weeks := make([]string, len(entries))
	ranks := make([]int, len(entries))
	totals := make(map[string]int)
	for i, e := range entries {
		weeks[i] = e.Week
		ranks[i] = e.Place
		totals[e.Username]++
	}
	for i, f := range tier.ClassifyByWeek(weeks, ranks) {
		entries[i].Tiers = f
		entries[i].TotalEntries = totals[entries[i].Username]
	}
	return entries
}

// ForWeek restricts entries to one week. AllWeeks returns entries unchanged.
func ForWeek(entries []model.Entry, week string) []model.Entry {
	if week == "" || week == model.AllWeeks {
		return entries
	}
	var out []model.Entry
	for _, e := range entries {
		if e.Week == week {
			out = append(out, e)
		}
	}
	return out
}

// WeekOptions returns AllWeeks followed by the sorted distinct week labels.
func WeekOptions(entries []model.Entry) []string {
	seen := make(map[string]struct{})
	var weeks []string
	for _, e := range entries {
		if _, ok := seen[e.Week]; ok {
			continue
		}
		seen[e.Week] = struct{}{}
		weeks = append(weeks, e.Week)
	}
	sort.Strings(weeks)
	return append([]string{model.AllWeeks}, weeks...)
}

// UnknownPlayers lists players whose position did not resolve, most picked first.
func UnknownPlayers(entries []model.Entry) []string {
	counts := make(map[string]int)
	for _, e := range entries {
		for i, p := range e.Positions {
			if p == model.PosUnknown {
				counts[e.Players[i]]++
			}
		}
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// RoundPositions counts, for entries of week flagged for t, how often each
// position was taken in each round (pick slot). Rows are ordered by round,
// then by model.Positions order; zero counts are omitted.
func RoundPositions(entries []model.Entry, week string, t model.Tier) []model.RoundPositionCount {
	type key struct {
		round int
		pos   model.Position
	}
	counts := make(map[key]int)
	for _, e := range ForWeek(entries, week) {
		if !e.Tiers.Has(t) {
			continue
		}
		for i, p := range e.Positions {
			counts[key{i + 1, p}]++
		}
	}

	var rows []model.RoundPositionCount
	for round := 1; round <= model.PickCount; round++ {
		for _, p := range model.Positions {
			if c := counts[key{round, p}]; c > 0 {
				rows = append(rows, model.RoundPositionCount{Round: round, Position: p, Count: c})
			}
		}
	}
	return rows
}
