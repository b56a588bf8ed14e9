package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-dawgbowl-metrics/internal/aggregator"
	"github.com/pable/go-dawgbowl-metrics/internal/logger"
	"github.com/pable/go-dawgbowl-metrics/internal/metrics"
	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

const header = "username,place,points,Player 1,Player 2,Player 3,Player 4,Player 5,Player 6\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// fixture writes two weeks of contest files, one broken file and a position
// list. Week 1 has ten entries: alice wins, bob and carol alternate below her
// with an unmapped sixth pick "x". Week 2 has three entries won by bob.
func fixture(t *testing.T) (dir string, contests []string, positions string) {
	t.Helper()
	dir = t.TempDir()

	var w1 strings.Builder
	w1.WriteString(header)
	for i := 1; i <= 10; i++ {
		switch {
		case i == 1:
			fmt.Fprintf(&w1, "alice,%d,%d,q1,r1,w1,w2,t1,r2\n", i, 200-i)
		case i%2 == 0:
			fmt.Fprintf(&w1, "bob,%d,%d,q1,r1,w1,w2,t1,x\n", i, 200-i)
		default:
			fmt.Fprintf(&w1, "carol,%d,%d,q1,r1,w1,w2,t1,x\n", i, 200-i)
		}
	}
	w2 := header +
		"bob,1,150,q1,r1,w1,w2,t1,r2\n" +
		"alice,2,140,q1,r1,w1,w2,t1,r2\n" +
		"carol,3,130,q1,r1,w1,w2,t1,r2\n"

	contests = []string{
		writeFile(t, dir, "DawgBowl_Week_1_results.csv", w1.String()),
		writeFile(t, dir, "DawgBowl_Week_2_results.csv", w2),
		writeFile(t, dir, "DawgBowl_Week_3_results.csv", header+"dave,first,1,a,b,c,d,e,f\n"),
	}
	positions = writeFile(t, dir, "positions.csv",
		"Name,Position\nq1,QB\nr1,RB\nr2,RB\nw1,WR\nw2,WR\nt1,TE\n")
	return dir, contests, positions
}

func loadFixture(t *testing.T) (*dataset, *metrics.Recorder) {
	t.Helper()
	_, contests, positions := fixture(t)
	r := metrics.New()
	ds, err := loadDataset(logger.Discard(), r, contests, positions)
	require.NoError(t, err)
	return ds, r
}

func TestContestPaths(t *testing.T) {
	dir, contests, _ := fixture(t)

	got, err := contestPaths([]string{"a.csv"}, "ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, got)

	got, err = contestPaths(nil, filepath.Join(dir, "*_Week_*.csv"))
	require.NoError(t, err)
	assert.Equal(t, contests, got)

	_, err = contestPaths(nil, filepath.Join(dir, "nothing_*.csv"))
	assert.ErrorIs(t, err, errNoContestFiles)
	_, err = contestPaths(nil, "")
	assert.ErrorIs(t, err, errNoContestFiles)
}

func TestLoadDataset(t *testing.T) {
	ds, r := loadFixture(t)

	require.Len(t, ds.Batches, 2)
	assert.Len(t, ds.Batch(0), 10)
	assert.Len(t, ds.Batch(1), 3)
	assert.Len(t, ds.Entries, 13)

	first := ds.Batch(0)[0]
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "Week 1", first.Week)
	assert.Equal(t, 2, first.TotalEntries)
	assert.True(t, first.Tiers.Elite01)
	assert.Equal(t, model.Roles{QB: 1, RB1: 2, WR1: 3, WR2: 4, TE: 5, Flex: 6}, first.Roles)

	second := ds.Batch(0)[1]
	assert.False(t, second.Tiers.Elite1)
	assert.Equal(t, model.PosUnknown, second.Positions[5])
	assert.Equal(t, model.Unassigned, second.Roles.Flex)

	expected := `
# HELP dawgbowl_batches_loaded_total Weekly contest files parsed successfully.
# TYPE dawgbowl_batches_loaded_total counter
dawgbowl_batches_loaded_total 2
# HELP dawgbowl_batches_skipped_total Weekly contest files skipped because they failed to parse.
# TYPE dawgbowl_batches_skipped_total counter
dawgbowl_batches_skipped_total 1
# HELP dawgbowl_unknown_picks_total Picks whose player had no position mapping.
# TYPE dawgbowl_unknown_picks_total counter
dawgbowl_unknown_picks_total 9
`
	assert.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected),
		"dawgbowl_batches_loaded_total", "dawgbowl_batches_skipped_total", "dawgbowl_unknown_picks_total"))
}

func TestLoadDataset_NothingLoads(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "results.csv", header)
	_, err := loadDataset(logger.Discard(), metrics.New(), []string{bad}, "")
	assert.Error(t, err)
}

func TestDashboardRows(t *testing.T) {
	ds, _ := loadFixture(t)

	rows, err := dashboardRows(ds.Entries, model.AllWeeks, aggregator.SummaryFilter{}, aggregator.SortByCount)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, usernames(rows))
	assert.Equal(t, 1, rows[0].Count1)
	assert.InDelta(t, 0.5, rows[0].Rate1, 1e-9)

	rows, err = dashboardRows(ds.Entries, model.AllWeeks, aggregator.SummaryFilter{MinEntries: 5}, aggregator.SortByRate)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, usernames(rows))

	rows, err = dashboardRows(ds.Entries, "Week 2", aggregator.SummaryFilter{Username: "BOB"}, aggregator.SortByCount)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Count01)

	_, err = dashboardRows(ds.Entries, "Week 9", aggregator.SummaryFilter{}, aggregator.SortByCount)
	assert.Error(t, err)
}

func usernames(rows []model.UserSummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Username
	}
	return out
}

func TestShellSession(t *testing.T) {
	ds, _ := loadFixture(t)
	db, err := openStore(ds, 0.01)
	require.NoError(t, err)
	defer db.Close()

	var out, errOut bytes.Buffer
	s := &shellSession{
		ds: ds, db: db, fraction: 0.01, limit: 10,
		mode: aggregator.SortByCount, out: &out, errOut: &errOut,
	}

	assert.True(t, s.exec("weeks"))
	assert.Contains(t, out.String(), "Week 2")

	out.Reset()
	assert.True(t, s.exec("sql SELECT COUNT(*) AS n FROM entries WHERE week = 'Week 1'"))
	assert.Contains(t, out.String(), "10")
	assert.Contains(t, out.String(), "(1 rows)")

	out.Reset()
	assert.True(t, s.exec("traits Week 1"))
	assert.Contains(t, out.String(), "Total entries : 10")
	assert.Contains(t, out.String(), "top 1 entries")

	out.Reset()
	assert.True(t, s.exec("user ALICE"))
	assert.Contains(t, out.String(), "Summary for alice")

	out.Reset()
	assert.True(t, s.exec("summary Week 2"))
	assert.Contains(t, out.String(), "carol")

	assert.True(t, s.exec("traits"))
	assert.Contains(t, errOut.String(), "usage: traits")
	assert.True(t, s.exec("traits Week 9"))
	assert.Contains(t, errOut.String(), `unknown week "Week 9"`)
	assert.True(t, s.exec("bogus"))
	assert.Contains(t, errOut.String(), `unknown command "bogus"`)
	assert.True(t, s.exec("   "))

	assert.False(t, s.exec("exit"))
	assert.False(t, s.exec("quit"))
}

func TestStoreTables(t *testing.T) {
	ds, _ := loadFixture(t)
	db, err := openStore(ds, 0.01)
	require.NoError(t, err)
	defer db.Close()

	_, rows, err := db.QueryRaw(`SELECT week, COUNT(*) FROM user_summary GROUP BY week ORDER BY week`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"All Weeks", "3"}, {"Week 1", "3"}, {"Week 2", "3"}}, rows)

	_, rows, err = db.QueryRaw(`SELECT hit_rate FROM player_hit_rates WHERE week = 'Week 1' AND player = 'r2'`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"100"}}, rows)
}

func TestExportAll(t *testing.T) {
	ds, _ := loadFixture(t)
	dir := filepath.Join(t.TempDir(), "out")

	files, err := exportAll(dir, ds.Entries, aggregator.SummaryFilter{}, aggregator.SortByCount, 0.01)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
		assert.FileExists(t, f)
	}
	assert.ElementsMatch(t, []string{
		"entries.csv",
		"summary.csv", "summary_Week_1.csv", "summary_Week_2.csv",
		"players_Week_1.csv", "pairs_Week_1.csv",
		"players_Week_2.csv", "pairs_Week_2.csv",
	}, names)

	body, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "alice,1,1,1,2,0.5"))
}

func TestBuildAnalyzeContext(t *testing.T) {
	ds, _ := loadFixture(t)

	var doc struct {
		Week  string `json:"week"`
		Users []struct {
			Username string  `json:"username"`
			Rate1Pct float64 `json:"top_1_rate_pct"`
		} `json:"users"`
		Scans []struct {
			Week    string `json:"week"`
			Entries int    `json:"entries"`
			Cutoff  int    `json:"elite_cutoff"`
			Players []struct {
				Player string `json:"player"`
			} `json:"players"`
		} `json:"trait_scans"`
	}

	js, err := buildAnalyzeContext(ds.Entries, model.AllWeeks, aggregator.SortByCount, 0, 0.01, 2)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(js), &doc))
	require.Len(t, doc.Users, 2)
	assert.Equal(t, "alice", doc.Users[0].Username)
	assert.Equal(t, 50.0, doc.Users[0].Rate1Pct)
	require.Len(t, doc.Scans, 2)
	assert.Equal(t, 10, doc.Scans[0].Entries)
	assert.Equal(t, 1, doc.Scans[0].Cutoff)
	assert.Len(t, doc.Scans[0].Players, 2)

	js, err = buildAnalyzeContext(ds.Entries, "Week 2", aggregator.SortByCount, 0, 0.01, 10)
	require.NoError(t, err)
	doc.Scans = nil
	require.NoError(t, json.Unmarshal([]byte(js), &doc))
	require.Len(t, doc.Scans, 1)
	assert.Equal(t, "Week 2", doc.Scans[0].Week)
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]model.Tier{"0.1": model.Tier01, "0.5%": model.Tier05, " 1 ": model.Tier1} {
		got, err := parseTier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseTier("2")
	assert.Error(t, err)
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "Week_3", fileSafe("Week 3"))
	assert.Equal(t, "Week_1_2", fileSafe("Week 1/2"))
}
