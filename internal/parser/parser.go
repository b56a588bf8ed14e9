package parser

import (
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

var (
	// ErrNoWeekLabel means the file name carries no _Week_<label>_ marker.
	ErrNoWeekLabel = errors.New("no week label in file name")
	// ErrBadHeader means a required column is missing.
	ErrBadHeader = errors.New("missing required column")
)

const weekMarker = "_Week_"

// WeekLabel extracts "Week <label>" from names like contest_Week_3_final.csv.
// The label is the text between _Week_ and the next underscore.
func WeekLabel(path string) (string, error) {
	name := filepath.Base(path)
	_, rest, ok := strings.Cut(name, weekMarker)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNoWeekLabel)
	}
	label, _, _ := strings.Cut(rest, "_")
	label = strings.TrimSuffix(label, filepath.Ext(label))
	if label == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNoWeekLabel)
	}
	return "Week " + label, nil
}

// normalizeHeader folds "Player 1", "player_1" and "PLAYER 1" to "player 1".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, "_", " ")
}

type contestColumns struct {
	username, place, points int
	players                 [model.PickCount]int
}

func contestHeader(header []string) (contestColumns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	var c contestColumns
	var ok bool
	if c.username, ok = idx["username"]; !ok {
		return c, fmt.Errorf("%w: username", ErrBadHeader)
	}
	if c.place, ok = idx["place"]; !ok {
		return c, fmt.Errorf("%w: place", ErrBadHeader)
	}
	if c.points, ok = idx["points"]; !ok {
		c.points = -1
	}
	for i := range c.players {
		col := fmt.Sprintf("player %d", i+1)
		if c.players[i], ok = idx[col]; !ok {
			return c, fmt.Errorf("%w: %s", ErrBadHeader, col)
		}
	}
	return c, nil
}

// parsePlace accepts integers and integral floats such as "12.0".
func parsePlace(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("place %d is not positive", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid place %q", s)
	}
	if f < 1 {
		return 0, fmt.Errorf("place %q is not positive", s)
	}
	return int(f), nil
}

// ParseContest reads a contest CSV. Every row is tagged with week. Any bad
// row fails the whole read.
func ParseContest(r io.Reader, week string) ([]model.RawEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := contestHeader(header)
	if err != nil {
		return nil, err
	}

	var entries []model.RawEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}
		place, err := parsePlace(rec[cols.place])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e := model.RawEntry{
			Username: strings.TrimSpace(rec[cols.username]),
			Place:    place,
			Week:     week,
		}
		if cols.points >= 0 {
			if s := strings.TrimSpace(rec[cols.points]); s != "" {
				if e.Points, err = strconv.ParseFloat(s, 64); err != nil {
					return nil, fmt.Errorf("line %d: invalid points %q", line, s)
				}
			}
		}
		for i, c := range cols.players {
			e.Players[i] = strings.TrimSpace(rec[c])
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseContestFile reads one weekly contest file into a Batch.
func ParseContestFile(path string) (model.Batch, error) {
	week, err := WeekLabel(path)
	if err != nil {
		return model.Batch{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Batch{}, fmt.Errorf("open contest file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	entries, err := ParseContest(io.TeeReader(f, h), week)
	if err != nil {
		return model.Batch{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	// Drain what the csv reader left unread so the hash covers the whole file.
	if _, err := io.Copy(h, f); err != nil {
		return model.Batch{}, fmt.Errorf("hash contest file: %w", err)
	}
	return model.Batch{
		Source:  path,
		Hash:    fmt.Sprintf("%x", h.Sum(nil)),
		Week:    week,
		Entries: entries,
	}, nil
}

// LoadBatches parses every path. A file that fails to parse, or repeats the
// contents of one already loaded, is skipped and its error joined into err;
// the remaining files are still returned.
func LoadBatches(paths []string) ([]model.Batch, error) {
	var batches []model.Batch
	var errs []error
	seen := make(map[string]string)
	for _, p := range paths {
		b, err := ParseContestFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, dup := seen[b.Hash]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate of %s", filepath.Base(p), filepath.Base(prev)))
			continue
		}
		seen[b.Hash] = p
		batches = append(batches, b)
	}
	return batches, errors.Join(errs...)
}
