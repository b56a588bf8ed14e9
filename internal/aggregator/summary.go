package aggregator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

// SortMode selects the ordering of the user summary.
type SortMode string

const (
	SortByCount SortMode = "count"
	SortByRate  SortMode = "rate"
)

// ErrUnknownSortMode is returned by ParseSortMode.
var ErrUnknownSortMode = errors.New("unknown sort mode")

// ParseSortMode accepts "count" or "rate".
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortByCount:
		return SortByCount, nil
	case SortByRate:
		return SortByRate, nil
	}
	return "", fmt.Errorf("%w: %q (want count or rate)", ErrUnknownSortMode, s)
}

// Summarize rolls entries of week up per username. Rows come back ordered by
// username.
func Summarize(entries []model.Entry, week string) []model.UserSummary {
	byUser := make(map[string]*model.UserSummary)
	for _, e := range ForWeek(entries, week) {
		s, ok := byUser[e.Username]
		if !ok {
			s = &model.UserSummary{Username: e.Username}
			byUser[e.Username] = s
		}
		s.TotalEntries++
		if e.Tiers.Elite01 {
			s.Count01++
		}
		if e.Tiers.Elite05 {
			s.Count05++
		}
		if e.Tiers.Elite1 {
			s.Count1++
		}
	}

	rows := make([]model.UserSummary, 0, len(byUser))
	for _, s := range byUser {
		total := float64(s.TotalEntries)
		s.Rate01 = float64(s.Count01) / total
		s.Rate05 = float64(s.Count05) / total
		s.Rate1 = float64(s.Count1) / total
		rows = append(rows, *s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Username < rows[j].Username })
	return rows
}

// SummaryFilter narrows a user summary. The zero value keeps every row.
type SummaryFilter struct {
	MinEntries int    // keep TotalEntries >= MinEntries
	Username   string // case-insensitive exact match when non-empty
}

// Filter applies f to rows without modifying them.
func Filter(rows []model.UserSummary, f SummaryFilter) []model.UserSummary {
	var out []model.UserSummary
	for _, r := range rows {
		if r.TotalEntries < f.MinEntries {
			continue
		}
		if f.Username != "" && !strings.EqualFold(r.Username, f.Username) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort orders rows descending by the three tier counts or rates, most
// selective tier first. Rows that tie on all three keep their incoming order,
// which is by username when rows come from Summarize.
func Sort(rows []model.UserSummary, mode SortMode) {
	key := func(r model.UserSummary) [3]float64 {
		if mode == SortByRate {
			return [3]float64{r.Rate01, r.Rate05, r.Rate1}
		}
		return [3]float64{float64(r.Count01), float64(r.Count05), float64(r.Count1)}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] > b[k]
			}
		}
		return false
	})
}

// MaxTotalEntries is the largest per-user entry count across all weeks.
func MaxTotalEntries(entries []model.Entry) int {
	max := 0
	for _, e := range entries {
		if e.TotalEntries > max {
			max = e.TotalEntries
		}
	}
	return max
}

// Breakdown collects one user's entries, matched case-insensitively.
// ok is false when the user has no entries.
func Breakdown(entries []model.Entry, username string) (model.UserBreakdown, bool) {
	var b model.UserBreakdown
	var points float64
	for _, e := range entries {
		if !strings.EqualFold(e.Username, username) {
			continue
		}
		b.Entries = append(b.Entries, e)
		points += e.Points
		if e.Tiers.Elite01 {
			b.Count01++
		}
		if e.Tiers.Elite05 {
			b.Count05++
		}
		if e.Tiers.Elite1 {
			b.Count1++
		}
	}
	if len(b.Entries) == 0 {
		return b, false
	}
	b.Username = b.Entries[0].Username
	b.TotalEntries = len(b.Entries)
	b.AvgPoints = points / float64(b.TotalEntries)
	sort.SliceStable(b.Entries, func(i, j int) bool {
		if b.Entries[i].Week != b.Entries[j].Week {
			return b.Entries[i].Week < b.Entries[j].Week
		}
		return b.Entries[i].Place < b.Entries[j].Place
	})
	return b, true
}
