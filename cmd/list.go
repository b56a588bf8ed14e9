package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

var weeksCmd = &cobra.Command{
	Use:   "weeks [contest.csv...]",
	Short: "List the loaded contest files and week options",
	RunE:  runWeeks,
}

func runWeeks(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %8s  %s\n", "HASH", "WEEK", "ENTRIES", "FILE")
	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %8s  %s\n",
		"──────────────", "────────────", "────────", "────")
	for _, b := range ds.Batches {
		fmt.Fprintf(os.Stdout, "%-14s  %-12s  %8d  %s\n", b.Hash[:12], b.Week, len(b.Entries), b.Source)
	}

	fmt.Fprintln(os.Stdout, "\nWeek options:")
	for _, w := range aggregator.WeekOptions(ds.Entries) {
		marker := " "
		if w == model.AllWeeks {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "  %s %s\n", marker, w)
	}
	return nil
}
