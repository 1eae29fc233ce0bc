package connection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Source is a queryable database speaking one SQL dialect
type Source interface {
	Dialect() models.Dialect
	Query(ctx context.Context, sql string, args ...any) (*QueryResult, error)
	Ping(ctx context.Context) error
	Close()
}

// QueryResult represents a query result with columns and rows
type QueryResult struct {
	Columns []string
	Rows    []models.Row
}

// normalizeValue maps driver specific values that models.Normalize cannot
// handle onto row scalars
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
	if n := models.Normalize(v); n != nil || v == nil {
		return n
	}
	return fmt.Sprintf("%v", v)
}
