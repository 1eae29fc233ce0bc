package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

var groupedResult = models.Result{
	Points: []models.Point{
		{Name: "East", Values: map[string]float64{"A": 16, "B": 4.5}},
		{Name: "West", Values: map[string]float64{"A": 7}},
	},
	Series:  []string{"A", "B"},
	Grouped: true,
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func TestResultGrid(t *testing.T) {
	g := ResultGrid(groupedResult)
	assert.Equal(t, []string{"name", "A", "B"}, g.Header)
	assert.Equal(t, [][]string{
		{"East", "16", "4.5"},
		{"West", "7", ""},
	}, g.Rows)
}

func TestRowsGrid(t *testing.T) {
	rows := []models.Row{
		{"Id": int64(1), "day": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "note": nil},
	}
	g := RowsGrid([]string{"id", "day", "note"}, rows, "NULL")
	assert.Equal(t, [][]string{{"1", "2024-03-01", "NULL"}}, g.Rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	g := Grid{
		Header: []string{"name", "note"},
		Rows:   [][]string{{"East", `has, commas and "quotes"`}},
	}
	require.NoError(t, WriteCSV(&buf, g))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "note"}, {"East", `has, commas and "quotes"`}}, records)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, groupedResult))

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "\n  ")
	assert.JSONEq(t,
		`{"data":[{"name":"East","A":16,"B":4.5},{"name":"West","A":7}],"series":["A","B"],"grouped":true}`,
		buf.String())
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(ResultGrid(groupedResult), theme.DefaultTheme())
	for _, want := range []string{"name", "East", "West", "16", "4.5"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "West"))
}

func TestExportToFiles(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, ExportToCSV(ResultGrid(groupedResult), csvPath))
	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, ExportToJSON(groupedResult, jsonPath))
	info, err := os.Stat(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, true, parsed["grouped"])
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ResultGrid(models.Result{Series: []string{"value"}})))
	assert.Equal(t, "name,value\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestWriteErrors(t *testing.T) {
	err := WriteCSV(failingWriter{}, ResultGrid(groupedResult))
	require.ErrorIs(t, err, assert.AnError)

	err = WriteJSON(failingWriter{}, groupedResult)
	require.ErrorIs(t, err, assert.AnError)

	var buf bytes.Buffer
	assert.Nil(t, WriteCSV(&buf, ResultGrid(groupedResult)))
	assert.Nil(t, WriteJSON(&buf, groupedResult))
}
