package filter

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

type parityRow struct {
	id        int64
	name      any
	amount    any
	createdAt any
	code      any
}

var parityRows = []parityRow{
	{1, "Alice", 50.0, time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), "007"},
	{2, "bob smith", 150.0, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "7.0"},
	{3, "", nil, time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC), "7"},
	{4, nil, 0.0, nil, nil},
	{5, "Carol", 100.0, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), "A7"},
	{6, "ALICE B", 99.5, time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC), ""},
}

// openParityDB loads parityRows into an in-memory SQLite database, which
// accepts the mysql dialect's backticks and ? placeholders.
func openParityDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE sales (id INTEGER PRIMARY KEY, name TEXT, amount REAL, created_at TIMESTAMP, code TEXT)`)
	require.NoError(t, err)
	for _, r := range parityRows {
		_, err := db.Exec(`INSERT INTO sales (id, name, amount, created_at, code) VALUES (?, ?, ?, ?, ?)`,
			r.id, r.name, r.amount, r.createdAt, r.code)
		require.NoError(t, err)
	}
	return db
}

func selectIDs(t *testing.T, db *sql.DB, c Clause) []int64 {
	t.Helper()

	query := "SELECT id FROM sales"
	if !c.Empty() {
		query += " " + c.String()
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, c.Params...)
	require.NoError(t, err, query)
	defer func() { _ = rows.Close() }()

	ids := []int64{}
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func evaluatedIDs(e *Evaluator, rules []models.FilterRule) []int64 {
	ids := []int64{}
	for _, r := range parityRows {
		row := models.Row{"id": r.id, "name": r.name, "amount": r.amount, "created_at": r.createdAt, "code": r.code}
		if e.Match(rules, row) {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func TestParity_SQLAndMemoryAgree(t *testing.T) {
	db := openParityDB(t)
	b := newTestBuilder(t, models.MySQL)
	e := newTestEvaluator()

	rules := []models.FilterRule{
		{Field: "name", Operator: models.OpEquals, Value: "Alice"},
		{Field: "name", Operator: models.OpNotEquals, Value: "Alice"},
		{Field: "name", Operator: models.OpContains, Value: "ali"},
		{Field: "name", Operator: models.OpNotContains, Value: "ali"},
		{Field: "name", Operator: models.OpBeginsWith, Value: "AL"},
		{Field: "name", Operator: models.OpEndsWith, Value: "smith"},
		{Field: "name", Operator: models.OpBlank},
		{Field: "name", Operator: models.OpNotBlank},
		{Field: "amount", Operator: models.OpEquals, Value: "150"},
		{Field: "amount", Operator: models.OpGreaterThan, Value: "99"},
		{Field: "amount", Operator: models.OpLessThan, Value: "100"},
		{Field: "amount", Operator: models.OpBlank},
		{Field: "amount", Operator: models.OpNotBlank},
		{Field: "created_at", Operator: models.OpToday},
		{Field: "created_at", Operator: models.OpThisWeek},
		{Field: "created_at", Operator: models.OpLastWeek},
		{Field: "created_at", Operator: models.OpBefore, Value: "2024-03-01"},
		{Field: "created_at", Operator: models.OpAfter, Value: "2024-03-10"},
		{Field: "created_at", Operator: models.OpAfter, Value: "today"},
		{Field: "created_at", Operator: models.OpBetween, Value: "2024-01-01", Value2: "2024-01-31"},
		{Field: "created_at", Operator: models.OpEquals, Value: "2024-03-11"},
		{Field: "created_at", Operator: models.OpLastDays, Value: "3"},
		{Field: "created_at", Operator: models.OpLastMonths, Value: "1"},
		{Field: "created_at", Operator: models.OpBlank},
		{Field: "created_at", Operator: models.OpLastDays, Value: "zero"},
		{Field: "code", Operator: models.OpEquals, Value: "7"},
		{Field: "code", Operator: models.OpEquals, Value: "7.00"},
		{Field: "code", Operator: models.OpNotEquals, Value: "7"},
		{Field: "code", Operator: models.OpContains, Value: "7"},
	}
	for _, rule := range rules {
		t.Run(fmt.Sprintf("%s/%s/%s", rule.Field, rule.Operator, rule.Value), func(t *testing.T) {
			single := []models.FilterRule{rule}
			require.Equal(t, selectIDs(t, db, b.Compile(single)), evaluatedIDs(e, single))
		})
	}

	t.Run("Combined", func(t *testing.T) {
		combined := []models.FilterRule{
			{Field: "name", Operator: models.OpNotBlank},
			{Field: "amount", Operator: models.OpGreaterThan, Value: "60"},
			{Field: "created_at", Operator: models.OpLastMonths, Value: "2"},
		}
		want := selectIDs(t, db, b.Compile(combined))
		require.Equal(t, []int64{2, 5, 6}, want)
		require.Equal(t, want, evaluatedIDs(e, combined))
	})

	t.Run("NumericLookingText", func(t *testing.T) {
		equals := []models.FilterRule{{Field: "code", Operator: models.OpEquals, Value: "7"}}
		require.Equal(t, []int64{3}, selectIDs(t, db, b.Compile(equals)))
		require.Equal(t, []int64{3}, evaluatedIDs(e, equals))

		notEquals := []models.FilterRule{{Field: "code", Operator: models.OpNotEquals, Value: "7"}}
		require.Equal(t, []int64{1, 2, 5, 6}, selectIDs(t, db, b.Compile(notEquals)))
		require.Equal(t, []int64{1, 2, 5, 6}, evaluatedIDs(e, notEquals))
	})
}
