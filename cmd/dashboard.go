package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
)

var (
	dashWeek       string
	dashUser       string
	dashMinEntries int
	dashSort       string
	dashExport     string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [contest.csv...]",
	Short: "Per-user elite finish counts and rates",
	Long: `Summarize elite finishes per user for one week or all weeks.

Counts are entries in each tier; rates divide by the user's entries across
every loaded week. --min-entries keeps users with at least that many entries
and --user keeps a single user (case-insensitive).`,
	RunE: runDashboard,
}

func init() {
	f := dashboardCmd.Flags()
	f.StringVar(&dashWeek, "week", model.AllWeeks, `week to show, e.g. "Week 3"`)
	f.StringVar(&dashUser, "user", "", "show only this username")
	f.IntVar(&dashMinEntries, "min-entries", 0, "minimum total entries (default from config)")
	f.StringVar(&dashSort, "sort", "", "count or rate (default from config)")
	f.StringVar(&dashExport, "export", "", "also write the table to this CSV file")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}

	minEntries := cfg.MinEntries
	if cmd.Flags().Changed("min-entries") {
		minEntries = dashMinEntries
	}
	sortFlag := cfg.SortMode
	if dashSort != "" {
		sortFlag = dashSort
	}
	mode, err := aggregator.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}

	rows, err := dashboardRows(ds.Entries, dashWeek, aggregator.SummaryFilter{
		MinEntries: minEntries,
		Username:   dashUser,
	}, mode)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\n=== %s ===\n", dashWeek)
	fmt.Fprintf(os.Stdout, "  Min entries : %d (max %d)\n", minEntries, aggregator.MaxTotalEntries(ds.Entries))
	fmt.Fprintf(os.Stdout, "  Sorted by   : %s\n\n", mode)
	if len(rows) == 0 {
		if dashUser != "" {
			log.Warn("username not found", "user", dashUser, "week", dashWeek)
		}
		fmt.Fprintln(os.Stdout, "No users match the filters.")
		return nil
	}
	report.PrintUserSummary(os.Stdout, rows, dashUser)

	if dashExport != "" {
		if err := writeCSVFile(dashExport, func(f *os.File) error {
			return report.WriteSummaryCSV(f, rows)
		}); err != nil {
			return err
		}
		log.Info("summary exported", "path", dashExport, "rows", len(rows))
	}
	return nil
}

// dashboardRows computes the filtered, sorted user summary for week.
func dashboardRows(entries []model.Entry, week string, f aggregator.SummaryFilter, mode aggregator.SortMode) ([]model.UserSummary, error) {
	if err := checkWeek(entries, week); err != nil {
		return nil, err
	}
	rows := aggregator.Filter(aggregator.Summarize(entries, week), f)
	aggregator.Sort(rows, mode)
	return rows, nil
}

// checkWeek rejects a week label that is not among the loaded weeks.
func checkWeek(entries []model.Entry, week string) error {
	opts := aggregator.WeekOptions(entries)
	if slices.Contains(opts, week) {
		return nil
	}
	return fmt.Errorf("unknown week %q (have: %s)", week, strings.Join(opts, ", "))
}

func writeCSVFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
