// Package infer classifies columns as number, date or string from sampled rows.
package infer

import (
	"sync"
	"time"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// SampleSize is the number of leading rows inspected per field
const SampleSize = 50

// minDateSamples is how many date-like values are needed before a field is a date
const minDateSamples = 3

// FieldType classifies field from at most SampleSize rows. Blank values are
// ignored; ties and thin evidence fall back to string.
func FieldType(field string, rows []models.Row) models.FieldType {
	return fieldType(field, sample(rows, SampleSize), time.UTC)
}

func sample(rows []models.Row, n int) []models.Row {
	if n <= 0 {
		n = SampleSize
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func fieldType(field string, rows []models.Row, loc *time.Location) models.FieldType {
	var numberCount, dateCount int
	for _, row := range rows {
		v := row.Get(field)
		if models.IsBlank(v) {
			continue
		}
		if _, ok := models.AsFloat(v); ok {
			numberCount++
			continue
		}
		if _, ok := models.AsTime(v, loc); ok {
			dateCount++
		}
	}

	switch {
	case numberCount > 0 && dateCount == 0:
		return models.TypeNumber
	case dateCount >= minDateSamples && numberCount == 0:
		return models.TypeDate
	default:
		return models.TypeString
	}
}

// Cache memoizes inferred types for one row sample. Build a new Cache when
// the sample changes.
type Cache struct {
	rows []models.Row
	loc  *time.Location

	mu    sync.Mutex
	types map[string]models.FieldType
}

// NewCache creates a cache over the first SampleSize rows. Naive date
// strings are read in loc (UTC when nil).
func NewCache(rows []models.Row, loc *time.Location) *Cache {
	return NewCacheSize(rows, loc, SampleSize)
}

// NewCacheSize is NewCache with an explicit sample size
func NewCacheSize(rows []models.Row, loc *time.Location, size int) *Cache {
	if loc == nil {
		loc = time.UTC
	}
	return &Cache{
		rows:  sample(rows, size),
		loc:   loc,
		types: make(map[string]models.FieldType),
	}
}

// Type returns the inferred type of field
func (c *Cache) Type(field string) models.FieldType {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.types[field]; ok {
		return t
	}
	t := fieldType(field, c.rows, c.loc)
	c.types[field] = t
	return t
}

// Types infers every listed field
func (c *Cache) Types(fields ...string) map[string]models.FieldType {
	out := make(map[string]models.FieldType, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		out[f] = c.Type(f)
	}
	return out
}
