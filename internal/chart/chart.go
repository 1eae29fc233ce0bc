// Package chart turns filtered rows and a chart spec into ordered series.
package chart

import (
	"slices"
	"strings"
	"time"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Pipeline aggregates rows. Day buckets are computed in its location.
type Pipeline struct {
	loc *time.Location
}

// New creates a pipeline bucketing dates in loc (UTC when nil)
func New(loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{loc: loc}
}

var defaultPipeline = New(time.UTC)

// Aggregate runs the default UTC pipeline
func Aggregate(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	return defaultPipeline.Aggregate(rows, spec, types)
}

// Pie runs the default UTC pie reduction
func Pie(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	return defaultPipeline.Pie(rows, spec, types)
}

// typeOf resolves a field type with the same exact-then-folded matching rows use
func typeOf(types map[string]models.FieldType, field string) models.FieldType {
	if field == "" {
		return models.TypeString
	}
	if t, ok := types[field]; ok {
		return t
	}
	var keys []string
	for k := range types {
		if strings.EqualFold(k, field) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return models.TypeString
	}
	slices.Sort(keys)
	return types[keys[0]]
}

// bucket renders a grouping value; dates collapse to their day
func (p *Pipeline) bucket(v any, t models.FieldType) string {
	if t == models.TypeDate {
		if ts, ok := models.AsTime(v, p.loc); ok {
			return ts.In(p.loc).Format(models.DayLayout)
		}
	}
	return models.AsString(v)
}

func number(v any) float64 {
	n, _ := models.AsFloat(v)
	return n
}
