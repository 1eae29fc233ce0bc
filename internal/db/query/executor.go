package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/Sunsu-Sulution/bear-vault/internal/db/connection"
	"github.com/Sunsu-Sulution/bear-vault/internal/filter"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Statement is a rendered query with its bind values
type Statement struct {
	SQL    string
	Params []any
}

// Result is the outcome of executing a Statement
type Result struct {
	Statement Statement
	Columns   []string
	Rows      []models.Row
	Duration  time.Duration
	Error     error
}

// BuildSelect renders SELECT <columns> FROM <table> [WHERE ...] LIMIT n.
// A dotted table name is quoted per part; columns are quoted whole.
func BuildSelect(dialect models.Dialect, table string, columns []string, clause filter.Clause, limit int) (Statement, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Statement{}, errors.New("table name is required")
	}

	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = filter.QuoteIdentifier(dialect, c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, quoteTable(dialect, table))
	if w := clause.String(); w != "" {
		b.WriteString(" ")
		b.WriteString(w)
	}
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return Statement{SQL: b.String(), Params: clause.Params}, nil
}

// WrapSQL bounds a hand written query: SELECT * FROM (<sql>) AS src LIMIT n.
// A trailing semicolon is dropped.
func WrapSQL(query string, limit int) (Statement, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimSpace(strings.TrimRight(query, ";"))
	if query == "" {
		return Statement{}, errors.New("query is empty")
	}
	sql := "SELECT * FROM (" + query + ") AS src"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return Statement{SQL: sql}, nil
}

func quoteTable(dialect models.Dialect, table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = filter.QuoteIdentifier(dialect, p)
	}
	return strings.Join(parts, ".")
}

// Execute runs a statement against src. Errors are reported in the Result
// as well as returned.
func Execute(ctx context.Context, src connection.Source, stmt Statement) (Result, error) {
	start := time.Now()

	res, err := src.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		err = errors.Wrap(err, "execute query")
		return Result{
			Statement: stmt,
			Duration:  time.Since(start),
			Error:     err,
		}, err
	}

	return Result{
		Statement: stmt,
		Columns:   res.Columns,
		Rows:      res.Rows,
		Duration:  time.Since(start),
	}, nil
}

// Render inlines params into the statement for display. Placeholders inside
// quoted literals and identifiers are left alone. The output is not meant to
// be executed.
func (s Statement) Render(dialect models.Dialect) string {
	if len(s.Params) == 0 {
		return s.SQL
	}
	sql := s.SQL
	var b strings.Builder
	var quote byte
	n := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && quote != '`' && dialect == models.MySQL && i+1 < len(sql):
				i++
				b.WriteByte(sql[i])
			case c == quote && i+1 < len(sql) && sql[i+1] == quote:
				i++
				b.WriteByte(sql[i])
			case c == quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?' && dialect != models.PostgreSQL && n < len(s.Params):
			b.WriteString(literal(s.Params[n]))
			n++
			continue
		case c == '$' && dialect == models.PostgreSQL:
			j := i + 1
			for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
				j++
			}
			if idx, err := strconv.Atoi(sql[i+1 : j]); err == nil && idx >= 1 && idx <= len(s.Params) {
				b.WriteString(literal(s.Params[idx-1]))
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000") + "'"
	case float64:
		return models.AsString(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
