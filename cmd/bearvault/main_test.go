package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunsu-Sulution/bear-vault/internal/dashboard"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/query"
	"github.com/Sunsu-Sulution/bear-vault/internal/export"
	"github.com/Sunsu-Sulution/bear-vault/internal/history"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
	"github.com/Sunsu-Sulution/bear-vault/internal/ui/theme"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	historyPath := filepath.Join(dir, "history.db")
	cfg := writeFile(t, dir, "config.yaml", "log:\n  level: error\nhistory:\n  path: "+historyPath+"\n")
	return cfg, historyPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseFilter(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want models.FilterRule
	}{
		{"amount:gt:5", models.FilterRule{Field: "amount", Operator: models.OpGreaterThan, Value: "5"}},
		{"note:blank", models.FilterRule{Field: "note", Operator: models.OpBlank}},
		{"ts:after:2024-01-01 10:00:00", models.FilterRule{Field: "ts", Operator: models.OpAfter, Value: "2024-01-01 10:00:00"}},
		{"day:BETWEEN:2024-01-01..2024-02-01", models.FilterRule{Field: "day", Operator: models.OpBetween, Value: "2024-01-01", Value2: "2024-02-01"}},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFilter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"amount", ":gt:1", "amount:near:1", "day:between:2024-01-01"} {
		t.Run(bad, func(t *testing.T) {
			_, err := parseFilter(bad)
			require.Error(t, err)
		})
	}
}

func TestReadRules(t *testing.T) {
	rules, err := readRules(strings.NewReader("- {field: amount, operator: gt, value: \"5\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.FilterRule{{Field: "amount", Operator: models.OpGreaterThan, Value: "5"}}, rules)

	rules, err = readRules(strings.NewReader("filters:\n  - field: region\n    operator: equals\n    value: East\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.FilterRule{{Field: "region", Operator: models.OpEquals, Value: "East"}}, rules)

	_, err = readRules(strings.NewReader("filters: ["))
	require.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	cfg, _ := writeConfig(t)
	rules := writeFile(t, t.TempDir(), "rules.yaml", "- {field: amount, operator: gt, value: \"5\"}\n")

	out, err := execute(t, "--config", cfg, "compile", rules,
		"--dialect", "mysql", "--table", "orders", "--limit", "10",
		"--filter", "name:contains:ab")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM `orders` WHERE `amount` > ? AND CAST(`name` AS CHAR) LIKE ? LIMIT 10\n"+
			"  ?1 = 5\n"+
			"  ?2 = %ab%\n",
		out)

	out, err = execute(t, "--config", cfg, "compile", rules, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dialect":"postgresql","sql":"WHERE \"amount\" > $1","params":[5]}`, out)

	out, err = execute(t, "--config", cfg, "compile", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dialect":"postgresql","sql":"","params":[]}`, out)

	_, err = execute(t, "--config", cfg, "compile", rules, "--dialect", "oracle")
	require.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	cfg, historyPath := writeConfig(t)

	store, err := history.NewStore(historyPath, 0)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, history.HistoryEntry{
		Dashboard: "sales", ChartID: "c1", ConnectionName: "shop", Dialect: "mysql",
		Query: "SELECT 1", Success: true, RowsReturned: 1,
	}))
	require.NoError(t, store.Add(ctx, history.HistoryEntry{
		Dashboard: "sales", ChartID: "c2", ConnectionName: "shop", Dialect: "mysql",
		Query: "SELECT region FROM orders", ErrorMessage: "boom",
	}))
	require.NoError(t, store.Close())

	out, err := execute(t, "--config", cfg, "history", "--format", "json")
	require.NoError(t, err)
	var entries []history.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)

	out, err = execute(t, "--config", cfg, "history", "--search", "region", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "boom")

	out, err = execute(t, "--config", cfg, "history", "--chart", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT 1")
	assert.NotContains(t, out, "boom")
}

func TestChartsCommand(t *testing.T) {
	cfg, _ := writeConfig(t)
	dash := writeFile(t, t.TempDir(), "sales.yaml", `
name: sales
charts:
  - id: by-region
    title: Revenue by region
    source: {connection: shop, table: orders}
    spec: {group_by_key: region, y_axis_key: amount}
  - id: raw
    title: Raw
    kind: table
    source: {connection: shop, sql: SELECT * FROM refunds}
    spec: {columns: [id]}
`)

	out, err := execute(t, "--config", cfg, "charts", dash, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t,
		"id,title,kind,connection,source\n"+
			"by-region,Revenue by region,bar,shop,orders\n"+
			"raw,Raw,table,shop,(sql)\n",
		out)

	out, err = execute(t, "--config", cfg, "charts", dash, "--search", "refunds", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "id,title,kind,connection,source\nraw,Raw,table,shop,(sql)\n", out)
}

func sampleOutputs() []*dashboard.Output {
	return []*dashboard.Output{
		{
			Chart:     dashboard.Chart{ID: "a", Title: "By region", Kind: dashboard.KindBar},
			Dialect:   models.PostgreSQL,
			Statement: query.Statement{SQL: `SELECT "region" FROM "orders" WHERE "amount" > $1`, Params: []any{5.0}},
			Result: &models.Result{
				Points: []models.Point{{Name: "East", Values: map[string]float64{"value": 16}}},
				Series: []string{"value"},
			},
		},
		{
			Chart:   dashboard.Chart{ID: "b", Title: "Raw", Kind: dashboard.KindTable, Spec: models.ChartSpec{Columns: []string{"id", "day"}}},
			Dialect: models.MySQL,
			Rows:    []models.Row{{"id": int64(7), "day": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		},
	}
}

func TestPrintOutputs(t *testing.T) {
	outputs := sampleOutputs()

	var buf bytes.Buffer
	require.NoError(t, printOutputs(&buf, export.FormatCSV, theme.DefaultTheme(), outputs[:1], true))
	assert.Equal(t,
		"-- SELECT \"region\" FROM \"orders\" WHERE \"amount\" > 5\nname,value\nEast,16\n",
		buf.String())

	buf.Reset()
	require.NoError(t, printOutputs(&buf, export.FormatCSV, theme.DefaultTheme(), outputs, false))
	assert.Equal(t, "# By region\nname,value\nEast,16\n\n# Raw\nid,day\n7,2024-03-01\n", buf.String())

	buf.Reset()
	require.NoError(t, printOutputs(&buf, export.FormatJSON, theme.DefaultTheme(), outputs, false))
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Contains(t, docs[0], "result")
	assert.NotContains(t, docs[0], "rows")
	assert.Contains(t, docs[1], "rows")

	buf.Reset()
	require.NoError(t, printOutputs(&buf, export.FormatTable, theme.DefaultTheme(), outputs[1:], false))
	assert.Contains(t, buf.String(), "2024-03-01")
}

func TestWriteOutputFile(t *testing.T) {
	dir := t.TempDir()
	outputs := sampleOutputs()

	require.Error(t, writeOutputFile(filepath.Join(dir, "all.csv"), export.FormatCSV, outputs))
	require.Error(t, writeOutputFile(filepath.Join(dir, "all.txt"), export.FormatTable, outputs))

	path := filepath.Join(dir, "nested", "one.csv")
	require.NoError(t, writeOutputFile(path, export.FormatCSV, outputs[:1]))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,value\nEast,16\n", string(data))

	path = filepath.Join(dir, "all.json")
	require.NoError(t, writeOutputFile(path, export.FormatJSON, outputs))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var docs []chartDocument
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Equal(t, "Raw", docs[1].Title)
}

func TestConnectionsGrid(t *testing.T) {
	g := connectionsGrid([]models.Connection{{
		ID:     "shop",
		Config: models.ConnectionConfig{Name: "shop", Driver: models.MySQL, Database: "sales"},
		State:  models.Disconnected,
	}})
	require.Len(t, g.Rows, 1)
	assert.Equal(t, []string{"shop", "mysql", "localhost:3306", "sales", "disconnected", ""}, g.Rows[0])
}

func TestOperatorsCommand(t *testing.T) {
	cfg, _ := writeConfig(t)

	out, err := execute(t, "--config", cfg, "operators", "number", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t,
		"type,operator,values,default\n"+
			"number,equals,1,*\n"+
			"number,gt,1,\n"+
			"number,lt,1,\n"+
			"number,blank,0,\n"+
			"number,not_blank,0,\n",
		out)

	out, err = execute(t, "--config", cfg, "operators", "--format", "json")
	require.NoError(t, err)
	var rows []operatorRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 8+5+11)
	assert.Equal(t, operatorRow{Type: models.TypeDate, Operator: models.OpBetween, Arity: 2}, rows[8+5+5])

	_, err = execute(t, "--config", cfg, "operators", "bool")
	require.Error(t, err)
}
