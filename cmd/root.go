package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pable/go-dawgbowl-metrics/internal/config"
	"github.com/pable/go-dawgbowl-metrics/internal/logger"
	"github.com/pable/go-dawgbowl-metrics/internal/metrics"
)

var (
	cfgPath       string
	positionsPath string
	logLevel      string
	metricsPath   string
	weeksGlob     string

	cfg   *config.Config
	log   *slog.Logger
	rec   *metrics.Recorder
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "dawgbowl",
	Short: "Fantasy contest draft analytics",
	Long: `Load weekly contest result CSVs, tag elite finishers per week and report
which users, players and player pairs show up among them.

Weekly files are named like Contest_Week_3_results.csv; the label after _Week_
becomes the week. Files can be passed as arguments or matched with --weeks.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: flushMetrics,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "YAML config file (falls back to $DAWGBOWL_CONFIG)")
	pf.StringVar(&positionsPath, "positions", "", "player position list (.xlsx or .csv with Name, Position)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&metricsPath, "metrics-file", "", "write run metrics here in Prometheus textfile format")
	pf.StringVar(&weeksGlob, "weeks", "", "glob for weekly contest CSVs when no files are given")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(traitsCmd)
	rootCmd.AddCommand(roundsCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// setup loads config, applies explicit flags on top and builds the logger
// and metrics recorder shared by every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	pf := cmd.Flags()
	if pf.Changed("positions") {
		c.PositionsFile = positionsPath
	}
	if pf.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if pf.Changed("metrics-file") {
		c.MetricsFile = metricsPath
	}
	if pf.Changed("weeks") {
		c.WeeksGlob = weeksGlob
	}
	if err := c.Validate(); err != nil {
		return err
	}

	runID = uuid.NewString()
	l, err := logger.New(os.Stderr, c.LogLevel, runID)
	if err != nil {
		return err
	}
	cfg, log, rec = c, l, metrics.New()
	log.Debug("config loaded", "config_file", cfgPath, "positions", cfg.PositionsFile, "weeks_glob", cfg.WeeksGlob)
	return nil
}

func flushMetrics(_ *cobra.Command, _ []string) error {
	if cfg == nil || cfg.MetricsFile == "" {
		return nil
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.Debug("metrics written", "path", cfg.MetricsFile)
	return nil
}
