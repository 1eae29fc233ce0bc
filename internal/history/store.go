package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// HistoryEntry represents a single executed chart query
type HistoryEntry struct {
	ID             int64         `json:"id"`
	Dashboard      string        `json:"dashboard,omitempty"`
	ChartID        string        `json:"chart_id,omitempty"`
	ConnectionName string        `json:"connection"`
	Dialect        string        `json:"dialect"`
	Query          string        `json:"query"`
	Params         []any         `json:"params,omitempty"`
	ExecutedAt     time.Time     `json:"executed_at"`
	Duration       time.Duration `json:"duration"`
	RowsReturned   int64         `json:"rows_returned"`
	Success        bool          `json:"success"`
	ErrorMessage   string        `json:"error,omitempty"`
}

// Store manages query history persistence
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore creates a new history store. When maxEntries is positive the
// oldest entries beyond it are pruned on every Add.
func NewStore(path string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open history")
	}
	// sqlite allows one writer; serializing also keeps :memory: on one database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create history schema")
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Add adds a new query to history
func (s *Store) Add(ctx context.Context, entry HistoryEntry) error {
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return errors.Wrap(err, "marshal params")
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_history
		(dashboard, chart_id, connection_name, dialect, query, params, executed_at,
		 duration_ms, rows_returned, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Dashboard,
		entry.ChartID,
		entry.ConnectionName,
		entry.Dialect,
		entry.Query,
		string(params),
		entry.ExecutedAt.UTC(),
		entry.Duration.Milliseconds(),
		entry.RowsReturned,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return errors.Wrap(err, "insert history entry")
	}
	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM query_history
		WHERE id NOT IN (SELECT id FROM query_history ORDER BY id DESC LIMIT ?)`,
		s.maxEntries,
	)
	if err != nil {
		return errors.Wrap(err, "prune history")
	}
	return nil
}

const selectEntries = `
	SELECT id, dashboard, chart_id, connection_name, dialect, query, params,
	       executed_at, duration_ms, rows_returned, success, error_message
	FROM query_history`

// GetRecent retrieves the most recent query history entries
func (s *Store) GetRecent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	return s.list(ctx, selectEntries+`
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
}

// Search searches query history by query text
func (s *Store) Search(ctx context.Context, text string, limit int) ([]HistoryEntry, error) {
	return s.list(ctx, selectEntries+`
		WHERE query LIKE ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, "%"+text+"%", limit)
}

// ForChart returns the recent executions of one chart
func (s *Store) ForChart(ctx context.Context, chartID string, limit int) ([]HistoryEntry, error) {
	return s.list(ctx, selectEntries+`
		WHERE chart_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, chartID, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e          HistoryEntry
			params     string
			durationMs int64
		)
		err := rows.Scan(
			&e.ID,
			&e.Dashboard,
			&e.ChartID,
			&e.ConnectionName,
			&e.Dialect,
			&e.Query,
			&params,
			&e.ExecutedAt,
			&durationMs,
			&e.RowsReturned,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
			return nil, errors.Wrap(err, "decode params")
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
