package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

// PrintUserSummary prints the per-user elite finish table.
// If focusUser is non-empty, that user's row is marked with ">".
func PrintUserSummary(w io.Writer, rows []model.UserSummary, focusUser string) {
	table := newTable(w)
	table.Header(" ", "USERNAME", "TOP 0.1%", "TOP 0.5%", "TOP 1%", "ENTRIES",
		"0.1% RATE", "0.5% RATE", "1% RATE")

	for _, r := range rows {
		marker := " "
		if focusUser != "" && strings.EqualFold(r.Username, focusUser) {
			marker = ">"
		}
		table.Append(
			marker,
			r.Username,
			strconv.Itoa(r.Count01),
			strconv.Itoa(r.Count05),
			strconv.Itoa(r.Count1),
			strconv.Itoa(r.TotalEntries),
			pct(r.Rate01),
			pct(r.Rate05),
			pct(r.Rate1),
		)
	}
	table.Render()
}

// PrintTraitHeader prints the week heading of a trait scan.
func PrintTraitHeader(w io.Writer, r hitrate.Report) {
	fmt.Fprintf(w, "\n=== %s ===\n\n", r.Week)
	fmt.Fprintf(w, "  Total entries : %d\n", r.TotalEntries)
	fmt.Fprintf(w, "  Elite cutoff  : top %d entries\n\n", r.Cutoff)
}

// PrintPlayerHitRates prints the player hit-rate table. limit <= 0 prints all rows.
// CI95 is the Wilson interval on elite/population; SAMPLE flags thin populations.
func PrintPlayerHitRates(w io.Writer, rows []model.PlayerHitRate, limit int) {
	table := newTable(w)
	table.Header("PLAYER", "ELITE", "ALL", "HIT RATE", "CI95", "SAMPLE")
	for i, r := range rows {
		if limit > 0 && i >= limit {
			break
		}
		lo, hi := wilsonCI(r.EliteCount, r.PopulationCount)
		table.Append(
			r.Player,
			strconv.Itoa(r.EliteCount),
			strconv.Itoa(r.PopulationCount),
			fmt.Sprintf("%.2f", r.HitRate),
			fmt.Sprintf("%.1f–%.1f", lo*100, hi*100),
			sampleFlag(r.PopulationCount),
		)
	}
	table.Render()
	printTruncated(w, len(rows), limit)
}

// PrintPairHitRates prints the pair hit-rate table. limit <= 0 prints all rows.
func PrintPairHitRates(w io.Writer, rows []model.PairHitRate, limit int) {
	table := newTable(w)
	table.Header("PLAYER A", "PLAYER B", "ELITE", "ALL", "HIT RATE", "CI95", "SAMPLE")
	for i, r := range rows {
		if limit > 0 && i >= limit {
			break
		}
		lo, hi := wilsonCI(r.EliteCount, r.PopulationCount)
		table.Append(
			r.PlayerA,
			r.PlayerB,
			strconv.Itoa(r.EliteCount),
			strconv.Itoa(r.PopulationCount),
			fmt.Sprintf("%.2f", r.HitRate),
			fmt.Sprintf("%.1f–%.1f", lo*100, hi*100),
			sampleFlag(r.PopulationCount),
		)
	}
	table.Render()
	printTruncated(w, len(rows), limit)
}

func printTruncated(w io.Writer, total, limit int) {
	if limit > 0 && total > limit {
		fmt.Fprintf(w, "(%d of %d rows)\n", limit, total)
	}
}

// PrintRoundPositions prints a Round × Position count grid for one tier.
func PrintRoundPositions(w io.Writer, title string, rows []model.RoundPositionCount) {
	fmt.Fprintf(w, "\n--- %s ---\n\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no entries in this tier)")
		return
	}

	counts := make(map[int]map[model.Position]int)
	present := make(map[model.Position]bool)
	for _, r := range rows {
		if counts[r.Round] == nil {
			counts[r.Round] = make(map[model.Position]int)
		}
		counts[r.Round][r.Position] = r.Count
		present[r.Position] = true
	}
	var cols []model.Position
	for _, p := range model.Positions {
		if present[p] {
			cols = append(cols, p)
		}
	}

	table := newTable(w)
	header := []any{"ROUND"}
	for _, p := range cols {
		header = append(header, string(p))
	}
	table.Header(header...)
	for round := 1; round <= model.PickCount; round++ {
		line := []any{strconv.Itoa(round)}
		for _, p := range cols {
			line = append(line, strconv.Itoa(counts[round][p]))
		}
		table.Append(line...)
	}
	table.Render()
}

// PrintUserBreakdown prints one user's totals followed by their entries.
func PrintUserBreakdown(w io.Writer, b model.UserBreakdown) {
	fmt.Fprintf(w, "\n=== Summary for %s ===\n\n", b.Username)
	fmt.Fprintf(w, "  Total entries     : %d\n", b.TotalEntries)
	fmt.Fprintf(w, "  Average points    : %.2f\n", b.AvgPoints)
	fmt.Fprintf(w, "  Top 0.1%% finishes : %d\n", b.Count01)
	fmt.Fprintf(w, "  Top 0.5%% finishes : %d\n", b.Count05)
	fmt.Fprintf(w, "  Top 1%% finishes   : %d\n\n", b.Count1)

	table := newTable(w)
	table.Header("WEEK", "PLACE", "POINTS", "QB", "RB1", "WR1", "WR2", "TE", "FLEX")
	for _, e := range b.Entries {
		table.Append(
			e.Week,
			strconv.Itoa(e.Place),
			fmt.Sprintf("%.2f", e.Points),
			e.Roles.QB.String(),
			e.Roles.RB1.String(),
			e.Roles.WR1.String(),
			e.Roles.WR2.String(),
			e.Roles.TE.String(),
			e.Roles.Flex.String(),
		)
	}
	table.Render()
}

func sampleFlag(n int) string {
	switch {
	case n >= 50:
		return "OK"
	case n >= 20:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}

// wilsonCI computes the 95% Wilson score confidence interval for a proportion.
// Returns (lo, hi) as fractions in [0, 1].
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
