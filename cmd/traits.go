package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
)

var (
	traitsFraction float64
	traitsLimit    int
	traitsTier     string
	traitsExport   string
)

var traitsCmd = &cobra.Command{
	Use:   "traits [contest.csv...]",
	Short: "Player and pair hit rates among elite entries, per file",
	Long: `For each contest file, take the best-placed entries as the elite set and
compare how often each player and each player pair appears there versus in the
whole file.

By default the elite set is the top --fraction of the file (at least one
entry, ties at the cutoff broken by file order). With --tier the per-week tier
flags are used instead (0.1, 0.5 or 1).`,
	RunE: runTraits,
}

func init() {
	f := traitsCmd.Flags()
	f.Float64Var(&traitsFraction, "fraction", 0, "elite fraction of each file (default from config)")
	f.IntVar(&traitsLimit, "limit", -1, "rows per table, 0 for all (default from config)")
	f.StringVar(&traitsTier, "tier", "", "use a week tier (0.1, 0.5, 1) instead of --fraction")
	f.StringVar(&traitsExport, "export", "", "directory to write per-week player and pair CSVs")
}

func runTraits(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}

	fraction := cfg.TraitFraction
	if cmd.Flags().Changed("fraction") {
		if traitsFraction <= 0 || traitsFraction > 1 {
			return fmt.Errorf("--fraction must be in (0, 1]")
		}
		fraction = traitsFraction
	}
	limit := cfg.TraitLimit
	if traitsLimit >= 0 {
		limit = traitsLimit
	}
	var tierSel *model.Tier
	if traitsTier != "" {
		t, err := parseTier(traitsTier)
		if err != nil {
			return err
		}
		tierSel = &t
	}

	for i, b := range ds.Batches {
		r := traitReport(b.Week, ds.Batch(i), fraction, tierSel)
		report.PrintTraitHeader(os.Stdout, r)
		fmt.Fprintln(os.Stdout, "Player hit rates:")
		report.PrintPlayerHitRates(os.Stdout, r.Players, limit)
		fmt.Fprintln(os.Stdout, "\nPair hit rates:")
		report.PrintPairHitRates(os.Stdout, r.Pairs, limit)

		if traitsExport != "" {
			if err := exportTraits(traitsExport, b, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// traitReport scans one batch with the flat fraction, or with tier flags when t is set.
func traitReport(week string, entries []model.Entry, fraction float64, t *model.Tier) hitrate.Report {
	if t != nil {
		return hitrate.ScanTier(week, entries, *t)
	}
	return hitrate.Scan(week, entries, fraction)
}

func parseTier(s string) (model.Tier, error) {
	switch strings.TrimSuffix(strings.TrimSpace(s), "%") {
	case "0.1":
		return model.Tier01, nil
	case "0.5":
		return model.Tier05, nil
	case "1":
		return model.Tier1, nil
	}
	return 0, fmt.Errorf("unknown tier %q (want 0.1, 0.5 or 1)", s)
}

func exportTraits(dir string, b model.Batch, r hitrate.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	base := fileSafe(b.Week) + "_" + b.Hash[:8]
	players := filepath.Join(dir, base+"_players.csv")
	pairs := filepath.Join(dir, base+"_pairs.csv")
	if err := writeCSVFile(players, func(f *os.File) error {
		return report.WritePlayerHitRatesCSV(f, r.Week, r.Players)
	}); err != nil {
		return err
	}
	if err := writeCSVFile(pairs, func(f *os.File) error {
		return report.WritePairHitRatesCSV(f, r.Week, r.Pairs)
	}); err != nil {
		return err
	}
	log.Info("trait tables exported", "week", r.Week, "players", players, "pairs", pairs)
	return nil
}
