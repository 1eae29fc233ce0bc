package connection

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cast"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// SQLSource adapts a database/sql handle to Source
type SQLSource struct {
	db      *sql.DB
	dialect models.Dialect
}

// NewSQLSource wraps an already opened handle
func NewSQLSource(db *sql.DB, dialect models.Dialect) *SQLSource {
	return &SQLSource{db: db, dialect: dialect}
}

// OpenMySQL opens a MySQL source. DATETIME and TIMESTAMP columns are decoded
// as time.Time in loc.
func OpenMySQL(ctx context.Context, config models.ConnectionConfig, maxConns int, loc *time.Location) (*SQLSource, error) {
	if loc == nil {
		loc = time.UTC
	}
	cfg := mysql.NewConfig()
	cfg.User = config.User
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = config.Address()
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Loc = loc
	if config.SSLMode != "" && config.SSLMode != "disable" {
		cfg.TLSConfig = "preferred"
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "mysql connector")
	}
	db := sql.OpenDB(connector)
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return NewSQLSource(db, models.MySQL), nil
}

// Dialect implements Source
func (s *SQLSource) Dialect() models.Dialect {
	return s.dialect
}

// Ping tests the connection
func (s *SQLSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the handle
func (s *SQLSource) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Query executes a query and returns column names in order
func (s *SQLSource) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	kinds := make([]columnKind, len(types))
	for i, ct := range types {
		kinds[i] = kindOf(ct.DatabaseTypeName())
	}

	var results []models.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(models.Row, len(columns))
		for i, name := range columns {
			row[name] = kinds[i].convert(values[i])
		}
		results = append(results, row)
	}

	return &QueryResult{
		Columns: columns,
		Rows:    results,
	}, rows.Err()
}

type columnKind int

const (
	kindOther columnKind = iota
	kindInt
	kindFloat
)

// kindOf classifies a driver type name. Text protocol results arrive as
// []byte even for numeric columns.
func kindOf(dbType string) columnKind {
	t := strings.ToUpper(dbType)
	t = strings.TrimPrefix(t, "UNSIGNED ")
	switch t {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return kindInt
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL":
		return kindFloat
	}
	return kindOther
}

func (k columnKind) convert(v any) any {
	v = normalizeValue(v)
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch k {
	case kindInt:
		if n, err := cast.ToInt64E(s); err == nil {
			return n
		}
		if f, err := cast.ToFloat64E(s); err == nil {
			return f
		}
	case kindFloat:
		if f, err := cast.ToFloat64E(s); err == nil {
			return f
		}
	}
	return v
}
