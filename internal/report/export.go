package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteSummaryCSV writes a user summary with raw rates (fractions, not percent).
func WriteSummaryCSV(w io.Writer, rows []model.UserSummary) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Username,
			strconv.Itoa(r.Count01),
			strconv.Itoa(r.Count05),
			strconv.Itoa(r.Count1),
			strconv.Itoa(r.TotalEntries),
			formatFloat(r.Rate01),
			formatFloat(r.Rate05),
			formatFloat(r.Rate1),
		})
	}
	return writeAll(w, []string{
		"username", "Top_0.1%", "Top_0.5%", "Top_1%", "Total Entries",
		"Top 0.1% Rate", "Top 0.5% Rate", "Top 1% Rate",
	}, out)
}

// WritePlayerHitRatesCSV writes a player hit-rate table.
func WritePlayerHitRatesCSV(w io.Writer, week string, rows []model.PlayerHitRate) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			week, r.Player,
			strconv.Itoa(r.EliteCount),
			strconv.Itoa(r.PopulationCount),
			formatFloat(r.HitRate),
		})
	}
	return writeAll(w, []string{"Week", "Player", "Elite", "All Entries", "Elite Hit Rate (%)"}, out)
}

// WritePairHitRatesCSV writes a pair hit-rate table.
func WritePairHitRatesCSV(w io.Writer, week string, rows []model.PairHitRate) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			week, r.PlayerA, r.PlayerB,
			strconv.Itoa(r.EliteCount),
			strconv.Itoa(r.PopulationCount),
			formatFloat(r.HitRate),
		})
	}
	return writeAll(w, []string{"Week", "Player A", "Player B", "Elite", "All Entries", "Elite Hit Rate (%)"}, out)
}

// WriteEntriesCSV writes the enriched entry table. Unassigned roles are empty.
func WriteEntriesCSV(w io.Writer, entries []model.Entry) error {
	header := []string{"Week", "username", "place", "points"}
	for i := 1; i <= model.PickCount; i++ {
		header = append(header, "Player "+strconv.Itoa(i))
	}
	for i := 1; i <= model.PickCount; i++ {
		header = append(header, "Pos "+strconv.Itoa(i))
	}
	header = append(header,
		"QB Pick", "RB1 Pick", "WR1 Pick", "WR2 Pick", "TE Pick", "Flex Pick",
		"Top_0.1%", "Top_0.5%", "Top_1%", "Total Entries")

	slot := func(s model.Slot) string {
		if !s.Assigned() {
			return ""
		}
		return strconv.Itoa(int(s))
	}

	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.Week, e.Username, strconv.Itoa(e.Place), formatFloat(e.Points)}
		row = append(row, e.Players[:]...)
		for _, p := range e.Positions {
			row = append(row, string(p))
		}
		r := e.Roles
		row = append(row,
			slot(r.QB), slot(r.RB1), slot(r.WR1), slot(r.WR2), slot(r.TE), slot(r.Flex),
			strconv.FormatBool(e.Tiers.Elite01),
			strconv.FormatBool(e.Tiers.Elite05),
			strconv.FormatBool(e.Tiers.Elite1),
			strconv.Itoa(e.TotalEntries),
		)
		out = append(out, row)
	}
	return writeAll(w, header, out)
}
