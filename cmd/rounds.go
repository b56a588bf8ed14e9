package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
)

var roundsWeek string

// roundsCmd shows which positions elite entries took in each draft round.
var roundsCmd = &cobra.Command{
	Use:   "rounds [contest.csv...]",
	Short: "Draft position frequency by round for each elite tier",
	RunE:  runRounds,
}

func init() {
	roundsCmd.Flags().StringVar(&roundsWeek, "week", model.AllWeeks, `week to show, e.g. "Week 3"`)
}

func runRounds(cmd *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}
	if err := checkWeek(ds.Entries, roundsWeek); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\n=== Weekly Draft Position Frequency: %s ===\n", roundsWeek)
	for _, t := range model.Tiers {
		rows := aggregator.RoundPositions(ds.Entries, roundsWeek, t)
		report.PrintRoundPositions(os.Stdout, t.String(), rows)
	}
	return nil
}
