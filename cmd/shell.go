package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/hitrate"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/report"
	"github.com/pable/go-dawgbowl-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell [contest.csv...]",
	Short: "Start an interactive REPL session",
	Long:  "Load the contest files once and explore them interactively. Type 'help' for available commands.",
	RunE:  runShell,
}

// shellSession is the state of one REPL: the loaded data and its scratch store.
type shellSession struct {
	ds         *dataset
	db         *storage.DB
	fraction   float64
	limit      int
	minEntries int
	mode       aggregator.SortMode
	out        io.Writer
	errOut     io.Writer
}

func runShell(_ *cobra.Command, args []string) error {
	ds, err := load(args)
	if err != nil {
		return err
	}
	db, err := openStore(ds, cfg.TraitFraction)
	if err != nil {
		return err
	}
	defer db.Close()

	mode, err := aggregator.ParseSortMode(cfg.SortMode)
	if err != nil {
		return err
	}
	s := &shellSession{
		ds:         ds,
		db:         db,
		fraction:   cfg.TraitFraction,
		limit:      cfg.TraitLimit,
		minEntries: cfg.MinEntries,
		mode:       mode,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}

	cGreeting.Println("dawgbowl shell")
	cMuted.Printf("%d entries across %d week(s); type 'help' or 'exit'\n",
		len(ds.Entries), len(aggregator.WeekOptions(ds.Entries))-1)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("dawgbowl")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		if !s.exec(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// exec runs one REPL line. It returns false when the session should end.
func (s *shellSession) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		s.help()
	case "weeks":
		for _, w := range aggregator.WeekOptions(s.ds.Entries) {
			fmt.Fprintf(s.out, "  %s\n", w)
		}
	case "summary":
		week := model.AllWeeks
		if rest != "" {
			week = rest
		}
		s.summary(week)
	case "traits":
		if rest == "" {
			cError.Fprintln(s.errOut, `usage: traits <week>   e.g. traits Week 3`)
			return true
		}
		s.traits(rest)
	case "user":
		if rest == "" {
			cError.Fprintln(s.errOut, "usage: user <username>")
			return true
		}
		s.user(rest)
	case "sql":
		if rest == "" {
			cError.Fprintln(s.errOut, "usage: sql <query>")
			return true
		}
		if err := printQuery(s.out, s.db, rest); err != nil {
			cError.Fprintf(s.errOut, "error: %v\n", err)
		}
	default:
		cWarn.Fprintf(s.errOut, "unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func (s *shellSession) help() {
	fmt.Fprintln(s.out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"weeks", "list the week options"},
		{"summary [week]", "user summary, all weeks by default"},
		{"traits <week>", "player and pair hit rates for one week"},
		{"user <username>", "drill into one user's entries"},
		{"sql <query>", "query the loaded tables"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(s.out, "  ")
		cCmd.Fprintf(s.out, "%-24s", r.cmd)
		fmt.Fprintln(s.out, r.desc)
	}
	fmt.Fprintln(s.out)
}

func (s *shellSession) summary(week string) {
	rows, err := dashboardRows(s.ds.Entries, week, aggregator.SummaryFilter{MinEntries: s.minEntries}, s.mode)
	if err != nil {
		cError.Fprintf(s.errOut, "error: %v\n", err)
		return
	}
	cHeader.Fprintf(s.out, "\n--- %s ---\n", week)
	report.PrintUserSummary(s.out, rows, "")
}

func (s *shellSession) traits(week string) {
	if err := checkWeek(s.ds.Entries, week); err != nil || week == model.AllWeeks {
		cError.Fprintf(s.errOut, "unknown week %q, type 'weeks'\n", week)
		return
	}
	r := hitrate.Scan(week, aggregator.ForWeek(s.ds.Entries, week), s.fraction)
	report.PrintTraitHeader(s.out, r)
	cHeader.Fprintln(s.out, "Player hit rates:")
	report.PrintPlayerHitRates(s.out, r.Players, s.limit)
	cHeader.Fprintln(s.out, "\nPair hit rates:")
	report.PrintPairHitRates(s.out, r.Pairs, s.limit)
}

func (s *shellSession) user(name string) {
	b, ok := aggregator.Breakdown(s.ds.Entries, name)
	if !ok {
		cWarn.Fprintf(s.errOut, "no entries found for %q\n", name)
		return
	}
	report.PrintUserBreakdown(s.out, b)
}
