package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query> [-- contest.csv...]",
	Short: "Run a SQL query against the loaded contest data",
	Long: `Load the contest files into an in-memory SQLite database and run a query
against it. Nothing is written to disk.

Schema overview:
  runs(run_id, started_at)
  batches(hash, source, week, entries)
  entries(week, username, place, points, player_1..player_6, pos_1..pos_6,
    qb_pick, rb1_pick, wr1_pick, wr2_pick, te_pick, flex_pick,
    top_0_1, top_0_5, top_1, total_entries)
  user_summary(week, username, top_0_1, top_0_5, top_1, total_entries,
    rate_0_1, rate_0_5, rate_1)            -- week 'All Weeks' holds the overall rollup
  player_hit_rates(week, player, population_count, elite_count, hit_rate)
  pair_hit_rates(week, player_a, player_b, population_count, elite_count, hit_rate)

Unassigned role picks are NULL. Example:
  dawgbowl sql "SELECT username, COUNT(*) FROM entries WHERE top_1 = 1 GROUP BY 1 ORDER BY 2 DESC"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := args[0]
	files := args[1:]
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		query = strings.Join(args[:dash], " ")
		files = args[dash:]
	}

	ds, err := load(files)
	if err != nil {
		return err
	}
	db, err := openStore(ds, cfg.TraitFraction)
	if err != nil {
		return err
	}
	defer db.Close()

	return printQuery(os.Stdout, db, query)
}

// openStore loads ds into a fresh in-memory database: entries, the user
// summary per week (and All Weeks) and the per-week trait tables.
func openStore(ds *dataset, fraction float64) (*storage.DB, error) {
	db, err := storage.Open(storage.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := populate(db, ds, fraction); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func populate(db *storage.DB, ds *dataset, fraction float64) error {
	if err := db.InsertRun(runID, time.Now()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if err := db.InsertBatches(ds.Batches); err != nil {
		return fmt.Errorf("insert batches: %w", err)
	}
	if err := db.InsertEntries(ds.Entries); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}
	for _, week := range aggregator.WeekOptions(ds.Entries) {
		if err := db.InsertUserSummaries(week, aggregator.Summarize(ds.Entries, week)); err != nil {
			return fmt.Errorf("insert user summary: %w", err)
		}
	}
	for _, week := range aggregator.WeekOptions(ds.Entries)[1:] {
		r := hitrate.Scan(week, aggregator.ForWeek(ds.Entries, week), fraction)
		if err := db.InsertPlayerHitRates(week, r.Players); err != nil {
			return fmt.Errorf("insert player hit rates: %w", err)
		}
		if err := db.InsertPairHitRates(week, r.Pairs); err != nil {
			return fmt.Errorf("insert pair hit rates: %w", err)
		}
	}
	return nil
}

// printQuery runs query and renders the result as a table.
func printQuery(w io.Writer, db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
	return nil
}
