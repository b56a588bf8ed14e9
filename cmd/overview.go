package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/tier"
)

// overviewCmd is the cobra command for a high-level overview of the loaded files.
var overviewCmd = &cobra.Command{
	Use:   "overview [contest.csv...]",
	Short: "Show a high-level overview of the loaded contest files",
	Long: `Display aggregate statistics about the loaded weeks: file and entry counts,
distinct users, the elite cutoffs per week and the players that had no
position mapping.`,
	RunE: runOverview,
}

func runOverview(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}
	db, err := openStore(ds, cfg.TraitFraction)
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := db.CountEntries()
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}
	batches, err := db.ListBatches()
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}
	users := aggregator.Summarize(ds.Entries, "")
	weeks := aggregator.WeekOptions(ds.Entries)[1:]

	fmt.Fprintf(os.Stdout, "\n=== Contest Overview ===\n\n")
	fmt.Fprintf(os.Stdout, "  Files loaded  : %d\n", len(batches))
	fmt.Fprintf(os.Stdout, "  Weeks         : %d\n", len(weeks))
	fmt.Fprintf(os.Stdout, "  Entries       : %d\n", stored)
	fmt.Fprintf(os.Stdout, "  Users         : %d\n", len(users))
	fmt.Fprintf(os.Stdout, "  Max entries   : %d (single user)\n", aggregator.MaxTotalEntries(ds.Entries))

	fmt.Fprintf(os.Stdout, "\n--- Weeks ---\n\n")
	wt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	wt.Header("WEEK", "ENTRIES", "TOP 0.1% ≤", "TOP 0.5% ≤", "TOP 1% ≤", "TOP 1% FLAGGED")
	for _, w := range weeks {
		entries := aggregator.ForWeek(ds.Entries, w)
		th := tier.For(len(entries))
		flagged := 0
		for _, e := range entries {
			if e.Tiers.Elite1 {
				flagged++
			}
		}
		wt.Append(w,
			strconv.Itoa(len(entries)),
			strconv.Itoa(th.Top01),
			strconv.Itoa(th.Top05),
			strconv.Itoa(th.Top1),
			strconv.Itoa(flagged),
		)
	}
	wt.Render()

	unknown := aggregator.UnknownPlayers(ds.Entries)
	fmt.Fprintf(os.Stdout, "\n--- Players without a position: %d ---\n", len(unknown))
	for i, name := range unknown {
		if i == 20 {
			fmt.Fprintf(os.Stdout, "  ... and %d more\n", len(unknown)-20)
			break
		}
		fmt.Fprintf(os.Stdout, "  %s\n", name)
	}
	return nil
}
