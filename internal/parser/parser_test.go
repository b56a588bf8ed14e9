package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pable/go-dawgbowl-metrics/internal/model"
)

const contestHeaderLine = "username,place,points,Player 1,Player 2,Player 3,Player 4,Player 5,Player 6\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestWeekLabel(t *testing.T) {
	cases := map[string]string{
		"DawgBowl_Week_3_results.csv":      "Week 3",
		"/tmp/x/Contest_Week_12_final.csv": "Week 12",
		"Contest_Week_7.csv":               "Week 7",
	}
	for in, want := range cases {
		got, err := WeekLabel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := WeekLabel("results.csv")
	assert.ErrorIs(t, err, ErrNoWeekLabel)
	_, err = WeekLabel("Contest_Week__x.csv")
	assert.ErrorIs(t, err, ErrNoWeekLabel)
}

func TestParseContest(t *testing.T) {
	body := contestHeaderLine +
		"alice,1,182.5,Josh Allen,Bijan Robinson,CeeDee Lamb,Puka Nacua,Sam LaPorta,Kyren Williams\n" +
		"bob,2.0,170,A,B,C,D,E,F\n" +
		"carol,3,,A,B,C,D,E,F\n"

	entries, err := ParseContest(strings.NewReader(body), "Week 1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	a := entries[0]
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, 1, a.Place)
	assert.Equal(t, 182.5, a.Points)
	assert.Equal(t, "Week 1", a.Week)
	assert.Equal(t, [model.PickCount]string{
		"Josh Allen", "Bijan Robinson", "CeeDee Lamb", "Puka Nacua", "Sam LaPorta", "Kyren Williams",
	}, a.Players)

	assert.Equal(t, 2, entries[1].Place)
	assert.Zero(t, entries[2].Points)
}

func TestParseContest_SnakeCaseHeader(t *testing.T) {
	body := "place,username,player_1,player_2,player_3,player_4,player_5,player_6,points\n" +
		"4,dave,a,b,c,d,e,f,99.1\n"
	entries, err := ParseContest(strings.NewReader(body), "Week 2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dave", entries[0].Username)
	assert.Equal(t, 4, entries[0].Place)
	assert.Equal(t, "f", entries[0].Players[5])
}

func TestParseContest_Errors(t *testing.T) {
	cases := map[string]string{
		"missing column": "username,place,points,Player 1\nalice,1,1,A\n",
		"bad place":      contestHeaderLine + "alice,first,1,A,B,C,D,E,F\n",
		"zero place":     contestHeaderLine + "alice,0,1,A,B,C,D,E,F\n",
		"bad points":     contestHeaderLine + "alice,1,lots,A,B,C,D,E,F\n",
		"short row":      contestHeaderLine + "alice,1,1,A,B\n",
		"empty":          "",
	}
	for name, body := range cases {
		_, err := ParseContest(strings.NewReader(body), "Week 1")
		assert.Error(t, err, name)
	}
	_, err := ParseContest(strings.NewReader("username,place\n"), "Week 1")
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestLoadBatches_SkipsBadFilesAndKeepsGoodOnes(t *testing.T) {
	dir := t.TempDir()
	good1 := writeFile(t, dir, "DB_Week_1_x.csv", contestHeaderLine+"alice,1,100,A,B,C,D,E,F\n")
	bad := writeFile(t, dir, "DB_Week_2_x.csv", contestHeaderLine+"alice,one,100,A,B,C,D,E,F\n")
	noWeek := writeFile(t, dir, "results.csv", contestHeaderLine+"alice,1,100,A,B,C,D,E,F\n")
	good3 := writeFile(t, dir, "DB_Week_3_x.csv", contestHeaderLine+"bob,1,90,A,B,C,D,E,F\nalice,2,80,A,B,C,D,E,G\n")
	dup := writeFile(t, dir, "DB_Week_1_copy.csv", contestHeaderLine+"alice,1,100,A,B,C,D,E,F\n")
	missing := filepath.Join(dir, "DB_Week_4_x.csv")

	batches, err := LoadBatches([]string{good1, bad, noWeek, good3, dup, missing})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWeekLabel)
	assert.Contains(t, err.Error(), "DB_Week_2_x.csv")
	assert.Contains(t, err.Error(), "duplicate")

	require.Len(t, batches, 2)
	assert.Equal(t, "Week 1", batches[0].Week)
	assert.Equal(t, "Week 3", batches[1].Week)
	assert.Len(t, batches[1].Entries, 2)
	assert.Len(t, batches[0].Hash, 64)
	assert.NotEqual(t, batches[0].Hash, batches[1].Hash)
}

func TestLoadBatches_Empty(t *testing.T) {
	batches, err := LoadBatches(nil)
	assert.NoError(t, err)
	assert.Empty(t, batches)
}

func TestParsePositions_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "positions.csv",
		"Name,Team,Position\nJosh Allen,BUF,QB\nSam LaPorta,DET,TE\n,,WR\nJustin Tucker,BAL,K\n")
	m, err := ParsePositions(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, model.PosQB, m.Resolve("Josh Allen"))
	assert.Equal(t, model.PosTE, m.Resolve("Sam LaPorta"))
	assert.Equal(t, model.PosUnknown, m.Resolve("Justin Tucker"))
}

func TestParsePositions_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"Name", "Position"},
		{"Bijan Robinson", "RB"},
		{"CeeDee Lamb", "WR"},
		{"No Position"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "positions.xlsx")
	require.NoError(t, f.SaveAs(path))

	m, err := ParsePositions(path)
	require.NoError(t, err)
	assert.Equal(t, model.PosRB, m.Resolve("Bijan Robinson"))
	assert.Equal(t, model.PosWR, m.Resolve("CeeDee Lamb"))
	assert.Equal(t, model.PosUnknown, m.Resolve("No Position"))
}

func TestParsePositions_MissingColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "positions.csv", "Player,Pos\nA,QB\n")
	_, err := ParsePositions(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}
