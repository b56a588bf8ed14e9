package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
)

var userCmd = &cobra.Command{
	Use:   "user <username> [contest.csv...]",
	Short: "Drill into one user's entries across all weeks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUser,
}

func runUser(cmd *cobra.Command, args []string) error {
	ds, err := load(args[1:])
	if err != nil {
		return err
	}
	b, ok := aggregator.Breakdown(ds.Entries, args[0])
	if !ok {
		log.Warn("username not found", "user", args[0])
		fmt.Fprintf(os.Stderr, "No entries found for %q\n", args[0])
		return nil
	}
	report.PrintUserBreakdown(os.Stdout, b)
	return nil
}
