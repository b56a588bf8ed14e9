package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/metrics"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
	"github.com/pable/go-dawgbowl-metrics/internal/parser"
	"github.com/pable/go-dawgbowl-metrics/internal/position"
)

// errNoContestFiles is returned when neither arguments nor the weeks glob
// name any file.
var errNoContestFiles = errors.New("no contest files: pass CSV paths or set --weeks")

// dataset is one loaded and enriched set of weekly files.
type dataset struct {
	Batches []model.Batch
	Entries []model.Entry
	// spans[i] holds the entries of Batches[i].
	spans [][]model.Entry
}

// Batch returns the enriched entries of batch i.
func (d *dataset) Batch(i int) []model.Entry { return d.spans[i] }

// contestPaths returns args, or the files matched by glob when args is empty.
func contestPaths(args []string, glob string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if glob == "" {
		return nil, errNoContestFiles
	}
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("weeks glob %q: %w", glob, err)
	}
	if len(matches) == 0 {
		return nil, errNoContestFiles
	}
	sort.Strings(matches)
	return matches, nil
}

// loadPositions reads the position list, or returns the empty map (every
// pick Unknown) when no file is configured.
func loadPositions(l *slog.Logger, path string) (position.Map, error) {
	if path == "" {
		l.Warn("no position list configured; every pick resolves to Unknown")
		return position.Map{}, nil
	}
	m, err := parser.ParsePositions(path)
	if err != nil {
		return position.Map{}, fmt.Errorf("load positions: %w", err)
	}
	l.Info("positions loaded", "path", path, "players", m.Len())
	return m, nil
}

// loadDataset parses the contest files, enriches them and records run metrics.
// Files that fail to parse are logged and skipped; it fails only when none load.
func loadDataset(l *slog.Logger, r *metrics.Recorder, paths []string, positionsFile string) (*dataset, error) {
	batches, err := parser.LoadBatches(paths)
	if err != nil {
		skipped := 1
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			skipped = len(joined.Unwrap())
			for _, e := range joined.Unwrap() {
				l.Warn("contest file skipped", "err", e)
			}
		} else {
			l.Warn("contest file skipped", "err", err)
		}
		r.BatchesSkipped(skipped)
	}
	r.BatchesLoaded(len(batches))
	if len(batches) == 0 {
		return nil, fmt.Errorf("no contest file could be loaded from %d path(s)", len(paths))
	}
	for _, b := range batches {
		l.Debug("contest file loaded", "source", b.Source, "week", b.Week, "entries", len(b.Entries), "hash", b.Hash[:12])
	}

	positions, err := loadPositions(l, positionsFile)
	if err != nil {
		return nil, err
	}

	entries := aggregator.Enrich(batches, positions)
	ds := &dataset{Batches: batches, Entries: entries}
	off := 0
	for _, b := range batches {
		ds.spans = append(ds.spans, entries[off:off+len(b.Entries)])
		off += len(b.Entries)
	}

	recordEntries(r, entries)
	if unknown := aggregator.UnknownPlayers(entries); len(unknown) > 0 {
		sample := unknown
		if len(sample) > 10 {
			sample = sample[:10]
		}
		l.Info("players without a position", "count", len(unknown), "most_picked", sample)
	}
	l.Info("entries enriched", "files", len(batches), "entries", len(entries),
		"weeks", len(aggregator.WeekOptions(entries))-1)
	return ds, nil
}

func recordEntries(r *metrics.Recorder, entries []model.Entry) {
	r.EntriesEnriched(len(entries))
	r.Weeks(len(aggregator.WeekOptions(entries)) - 1)
	unknown := 0
	elite := make(map[model.Tier]int)
	for _, e := range entries {
		for _, p := range e.Positions {
			if p == model.PosUnknown {
				unknown++
			}
		}
		for _, t := range model.Tiers {
			if e.Tiers.Has(t) {
				elite[t]++
			}
		}
	}
	r.UnknownPicks(unknown)
	for _, t := range model.Tiers {
		r.EliteEntries(t.String(), elite[t])
	}
}

// load resolves the contest files for a subcommand and returns the enriched dataset.
func load(args []string) (*dataset, error) {
	paths, err := contestPaths(args, cfg.WeeksGlob)
	if err != nil {
		return nil, err
	}
	return loadDataset(log, rec, paths, cfg.PositionsFile)
}
