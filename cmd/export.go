package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
)

var (
	exportOut        string
	exportMinEntries int
	exportSort       string
)

var exportCmd = &cobra.Command{
	Use:   "export [contest.csv...]",
	Short: "Write the enriched entries and derived tables as CSV files",
	Long: `Write CSV files into --out:

  entries.csv         every enriched entry (positions, role picks, tier flags)
  summary.csv         the user summary over all weeks, filtered and sorted
  summary_<week>.csv  the same restricted to each week
  players_<week>.csv  player hit rates of each week's trait scan
  pairs_<week>.csv    pair hit rates of each week's trait scan

Rates are written as fractions (0.25), hit rates as percentages.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "export", "output directory")
	exportCmd.Flags().IntVar(&exportMinEntries, "min-entries", 0, "minimum total entries (default from config)")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "count or rate (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}
	minEntries := cfg.MinEntries
	if cmd.Flags().Changed("min-entries") {
		minEntries = exportMinEntries
	}
	sortFlag := cfg.SortMode
	if exportSort != "" {
		sortFlag = exportSort
	}
	mode, err := aggregator.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}

	files, err := exportAll(exportOut, ds.Entries, aggregator.SummaryFilter{MinEntries: minEntries}, mode, cfg.TraitFraction)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(os.Stdout, "wrote %s\n", f)
	}
	log.Info("export complete", "dir", exportOut, "files", len(files))
	return nil
}

// exportAll writes every table into dir and returns the paths written.
func exportAll(dir string, entries []model.Entry, f aggregator.SummaryFilter, mode aggregator.SortMode, fraction float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	write := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		if err := writeCSVFile(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write("entries.csv", func(out *os.File) error {
		return report.WriteEntriesCSV(out, entries)
	}); err != nil {
		return written, err
	}

	for _, week := range aggregator.WeekOptions(entries) {
		rows := aggregator.Filter(aggregator.Summarize(entries, week), f)
		aggregator.Sort(rows, mode)
		name := "summary.csv"
		if week != model.AllWeeks {
			name = "summary_" + fileSafe(week) + ".csv"
		}
		if err := write(name, func(out *os.File) error {
			return report.WriteSummaryCSV(out, rows)
		}); err != nil {
			return written, err
		}
	}

	for _, week := range aggregator.WeekOptions(entries)[1:] {
		r := hitrate.Scan(week, aggregator.ForWeek(entries, week), fraction)
		if err := write("players_"+fileSafe(week)+".csv", func(out *os.File) error {
			return report.WritePlayerHitRatesCSV(out, week, r.Players)
		}); err != nil {
			return written, err
		}
		if err := write("pairs_"+fileSafe(week)+".csv", func(out *os.File) error {
			return report.WritePairHitRatesCSV(out, week, r.Pairs)
		}); err != nil {
			return written, err
		}
	}
	return written, nil
}

// fileSafe turns a week label into a file name fragment: "Week 3" -> "Week_3".
func fileSafe(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case ' ', '/', '\\', ':':
			out[i] = '_'
		}
	}
	return string(out)
}
