package metadata

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/cast"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Table is a table or view a chart can read from
type Table struct {
	Schema string
	Name   string
	Type   string
}

// QualifiedName returns schema.name
func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ListTables returns the tables and views of schema. An empty schema means
// the current schema (PostgreSQL) or database (MySQL).
func ListTables(ctx context.Context, src connection.Source, schema string) ([]Table, error) {
	var q string
	switch src.Dialect() {
	case models.PostgreSQL:
		q = `
			SELECT table_schema, table_name, table_type
			FROM information_schema.tables
			WHERE table_schema = COALESCE($1, current_schema())
			ORDER BY table_name
		`
	default:
		q = `
			SELECT table_schema AS table_schema, table_name AS table_name, table_type AS table_type
			FROM information_schema.tables
			WHERE table_schema = COALESCE(?, DATABASE())
			ORDER BY table_name
		`
	}

	res, err := src.Query(ctx, q, nullable(schema))
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}

	tables := make([]Table, 0, len(res.Rows))
	for _, row := range res.Rows {
		tables = append(tables, Table{
			Schema: cast.ToString(row.Get("table_schema")),
			Name:   cast.ToString(row.Get("table_name")),
			Type:   cast.ToString(row.Get("table_type")),
		})
	}
	return tables, nil
}
