package metadata

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cast"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/db/query"
	"github.com/Sunsu-Sulution/bear-vault/internal/filter"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// ColumnInfo describes a table column
type ColumnInfo struct {
	Name     string
	DataType string
}

// GetTableColumns retrieves column metadata for a table from information_schema.
// table may be schema qualified; otherwise the current schema or database is used.
func GetTableColumns(ctx context.Context, src connection.Source, table string) ([]ColumnInfo, error) {
	schema, name := splitTable(table)

	var q string
	var args []any
	switch src.Dialect() {
	case models.PostgreSQL:
		q = `
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = COALESCE($1, current_schema()) AND table_name = $2
			ORDER BY ordinal_position
		`
		args = []any{nullable(schema), name}
	default:
		q = `
			SELECT column_name AS column_name, data_type AS data_type
			FROM information_schema.columns
			WHERE table_schema = COALESCE(?, DATABASE()) AND table_name = ?
			ORDER BY ordinal_position
		`
		args = []any{nullable(schema), name}
	}

	res, err := src.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "get columns")
	}

	columns := make([]ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		columns = append(columns, ColumnInfo{
			Name:     cast.ToString(row.Get("column_name")),
			DataType: cast.ToString(row.Get("data_type")),
		})
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %q not found or has no columns", table)
	}
	return columns, nil
}

// ProbeColumns returns the column names of table by selecting zero rows
func ProbeColumns(ctx context.Context, src connection.Source, table string) ([]string, error) {
	stmt, err := query.BuildSelect(src.Dialect(), table, nil, filter.Clause{}, 0)
	if err != nil {
		return nil, err
	}
	res, err := src.Query(ctx, stmt.SQL+" LIMIT 0")
	if err != nil {
		return nil, errors.Wrapf(err, "probe columns of %q", table)
	}
	return res.Columns, nil
}

// Resolve maps each requested field onto the matching column name, exact
// match first then case-insensitive. Fields without a column are returned
// separately.
func Resolve(columns, fields []string) (resolved map[string]string, missing []string) {
	row := make(models.Row, len(columns))
	for _, c := range columns {
		row[c] = nil
	}
	resolved = make(map[string]string, len(fields))
	for _, f := range fields {
		if k, ok := row.ResolveKey(f); ok {
			resolved[f] = k
			continue
		}
		missing = append(missing, f)
	}
	return resolved, missing
}

func splitTable(table string) (schema, name string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
