package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-dawgbowl-metrics/internal/position"
)

// ParsePositions loads a Name/Position list from a workbook (first sheet) or
// a CSV file, chosen by extension.
func ParsePositions(path string) (position.Map, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readSheetRows(path)
	}
	if err != nil {
		return position.Map{}, err
	}
	pairs, err := positionPairs(rows)
	if err != nil {
		return position.Map{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return position.New(pairs), nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open position list: %w", err)
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read position list: %w", err)
		}
		rows = append(rows, rec)
	}
}

func readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open position workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("position workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// positionPairs finds the Name and Position columns in the first row and
// returns every following row that has a name. Short rows are tolerated
// because spreadsheets drop trailing empty cells.
func positionPairs(rows [][]string) ([]position.Pair, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty position list", ErrBadHeader)
	}
	nameCol, posCol := -1, -1
	for i, h := range rows[0] {
		switch normalizeHeader(h) {
		case "name":
			nameCol = i
		case "position":
			posCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: Name", ErrBadHeader)
	}
	if posCol < 0 {
		return nil, fmt.Errorf("%w: Position", ErrBadHeader)
	}

	var pairs []position.Pair
	for _, row := range rows[1:] {
		if nameCol >= len(row) || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}
		p := position.Pair{Name: row[nameCol]}
		if posCol < len(row) {
			p.Position = row[posCol]
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
