package chart

import (
	"slices"
	"strings"

	"github.com/Sunsu-Sulution/bear-vault/internal/compare"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// sortPoints orders aggregated points by the chart spec. Values (the y axis, a
// series name or a numeric field) sort numerically; the grouping key sorts by
// its own type. Without SortBy a date-typed grouping key sorts ascending.
func (p *Pipeline) sortPoints(points []models.Point, spec models.ChartSpec, types map[string]models.FieldType, grouped bool) {
	groupKey := spec.XAxisKey
	if grouped || spec.GroupByKey != "" {
		groupKey = spec.GroupKey()
	}
	groupType := typeOf(types, groupKey)

	sortBy, order := spec.SortBy, spec.SortOrder
	if order != models.Desc {
		order = models.Asc
	}
	if sortBy == "" {
		if groupType == models.TypeDate {
			p.sortBy(points, byName, models.TypeDate, models.Asc)
		}
		return
	}

	isGroupKey := strings.EqualFold(sortBy, groupKey) || strings.EqualFold(sortBy, models.NameKey)
	switch {
	case isGroupKey:
		p.sortBy(points, byName, groupType, order)
	case grouped && hasSeries(points, sortBy):
		p.sortBy(points, bySeries(sortBy), models.TypeNumber, order)
	case strings.EqualFold(sortBy, spec.YAxisKey),
		strings.EqualFold(sortBy, models.ValueSeries),
		typeOf(types, sortBy) == models.TypeNumber:
		p.sortBy(points, byTotal, models.TypeNumber, order)
	case typeOf(types, sortBy) == models.TypeDate:
		p.sortBy(points, byName, models.TypeDate, order)
	default:
		p.sortBy(points, byName, models.TypeString, order)
	}
}

func (p *Pipeline) sortBy(points []models.Point, key func(models.Point) any, t models.FieldType, order models.SortOrder) {
	slices.SortStableFunc(points, func(a, b models.Point) int {
		return compare.ValuesIn(key(a), key(b), t, order, p.loc)
	})
}

func byName(pt models.Point) any {
	return pt.Name
}

// byTotal is the point's value, summed across series for grouped output.
// Series are summed in name order so the float result is stable.
func byTotal(pt models.Point) any {
	keys := make([]string, 0, len(pt.Values))
	for k := range pt.Values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var total float64
	for _, k := range keys {
		total += pt.Values[k]
	}
	return total
}

func bySeries(name string) func(models.Point) any {
	return func(pt models.Point) any {
		v, ok := pt.Values[name]
		if !ok {
			return nil
		}
		return v
	}
}

func hasSeries(points []models.Point, name string) bool {
	for _, pt := range points {
		if _, ok := pt.Values[name]; ok {
			return true
		}
	}
	return false
}
