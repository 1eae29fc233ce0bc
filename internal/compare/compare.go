// Package compare implements the type-aware ordering shared by table rows,
// chart series and pie slices.
package compare

import (
	"cmp"
	"slices"
	"time"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Values compares a and b as type t in the given order and returns -1, 0 or 1.
// Nil values sort last in both directions, as do non-numeric values of a
// number field. Dates that fail to parse compare equal.
func Values(a, b any, t models.FieldType, order models.SortOrder) int {
	return in(a, b, t, order, time.UTC)
}

// ValuesIn is Values with naive date strings read in loc
func ValuesIn(a, b any, t models.FieldType, order models.SortOrder, loc *time.Location) int {
	return in(a, b, t, order, loc)
}

func in(a, b any, t models.FieldType, order models.SortOrder, loc *time.Location) int {
	aNil, bNil := a == nil, b == nil
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return 1
	case bNil:
		return -1
	}

	var c int
	switch t {
	case models.TypeNumber:
		x, xok := models.AsFloat(a)
		y, yok := models.AsFloat(b)
		switch {
		case !xok && !yok:
			return 0
		case !xok:
			return 1
		case !yok:
			return -1
		}
		c = cmp.Compare(x, y)
	case models.TypeDate:
		x, xok := models.AsTime(a, loc)
		y, yok := models.AsTime(b, loc)
		if !xok || !yok {
			return 0
		}
		c = x.Compare(y)
	default:
		c = cmp.Compare(models.AsString(a), models.AsString(b))
	}

	if order == models.Desc {
		return -c
	}
	return c
}

// SortRows stable-sorts rows in place by key. Naive date strings are read
// in loc (UTC when nil).
func SortRows(rows []models.Row, key string, t models.FieldType, order models.SortOrder, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	slices.SortStableFunc(rows, func(a, b models.Row) int {
		return in(a.Get(key), b.Get(key), t, order, loc)
	})
}
