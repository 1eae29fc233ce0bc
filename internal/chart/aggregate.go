package chart

import (
	"strings"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

type cell struct {
	sum   float64
	count int
}

func (c cell) value(agg models.Aggregate) float64 {
	switch agg {
	case models.AggCount:
		return float64(c.count)
	case models.AggAvg:
		if c.count == 0 {
			return 0
		}
		return c.sum / float64(c.count)
	default:
		return c.sum
	}
}

// accumulator is a two-level group -> series -> cell table that remembers
// first-seen order on both levels.
type accumulator struct {
	groups []string
	series []string
	cells  map[string]map[string]*cell
	seen   map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{
		cells: make(map[string]map[string]*cell),
		seen:  make(map[string]bool),
	}
}

func (a *accumulator) add(group, series string, v float64) {
	row, ok := a.cells[group]
	if !ok {
		row = make(map[string]*cell)
		a.cells[group] = row
		a.groups = append(a.groups, group)
	}
	if !a.seen[series] {
		a.seen[series] = true
		a.series = append(a.series, series)
	}
	c, ok := row[series]
	if !ok {
		c = &cell{}
		row[series] = c
	}
	c.sum += v
	c.count++
}

// reserve renames a series called key, appending underscores until the new
// name is unused.
func (a *accumulator) reserve(key string) {
	if !a.seen[key] {
		return
	}
	alias := key + "_"
	for a.seen[alias] {
		alias += "_"
	}
	for i, s := range a.series {
		if s == key {
			a.series[i] = alias
		}
	}
	for _, row := range a.cells {
		if c, ok := row[key]; ok {
			row[alias] = c
			delete(row, key)
		}
	}
	delete(a.seen, key)
	a.seen[alias] = true
}

// points emits one point per group in first-seen order. Series a group
// never saw are left out of its values.
func (a *accumulator) points(agg models.Aggregate) []models.Point {
	out := make([]models.Point, 0, len(a.groups))
	for _, g := range a.groups {
		values := make(map[string]float64, len(a.cells[g]))
		for _, s := range a.series {
			if c, ok := a.cells[g][s]; ok {
				values[s] = c.value(agg)
			}
		}
		out = append(out, models.Point{Name: g, Values: values})
	}
	return out
}

// Aggregate produces the chart series for rows. With a series key and a
// resolvable group key it builds a multi-series result; otherwise a single
// series. Date-typed x axes are always bucketed by day and summed.
func (p *Pipeline) Aggregate(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	if spec.SeriesKey != "" && spec.GroupKey() != "" {
		return p.grouped(rows, spec, types)
	}
	return p.single(rows, spec, types)
}

func (p *Pipeline) grouped(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	groupKey := spec.GroupKey()
	groupType := typeOf(types, groupKey)

	acc := newAccumulator()
	for _, row := range rows {
		series := models.AsString(row.Get(spec.SeriesKey))
		if series == "" {
			continue
		}
		group := p.bucket(row.Get(groupKey), groupType)
		acc.add(group, series, number(row.Get(spec.YAxisKey)))
	}
	acc.reserve(models.NameKey)

	res := models.Result{
		Points:  acc.points(spec.Aggregate),
		Series:  acc.series,
		Grouped: true,
	}
	if res.Series == nil {
		res.Series = []string{}
	}
	p.sortPoints(res.Points, spec, types, true)
	return res
}

func (p *Pipeline) single(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	res := models.Result{Series: []string{models.ValueSeries}}

	switch {
	case spec.GroupByKey != "":
		res.Points = p.reduce(rows, spec.GroupByKey, spec, types)
	case typeOf(types, spec.XAxisKey) == models.TypeDate:
		// Raw timestamps would plot one point each; sum per day instead.
		acc := newAccumulator()
		for _, row := range rows {
			day := p.bucket(row.Get(spec.XAxisKey), models.TypeDate)
			acc.add(day, models.ValueSeries, number(row.Get(spec.YAxisKey)))
		}
		res.Points = acc.points(models.AggSum)
	default:
		res.Points = make([]models.Point, 0, len(rows))
		for _, row := range rows {
			res.Points = append(res.Points, models.Point{
				Name:   models.AsString(row.Get(spec.XAxisKey)),
				Values: map[string]float64{models.ValueSeries: number(row.Get(spec.YAxisKey))},
			})
		}
	}

	if res.Points == nil {
		res.Points = []models.Point{}
	}
	p.sortPoints(res.Points, spec, types, false)
	return res
}

// reduce groups rows by key into a single series using the chart's aggregate
func (p *Pipeline) reduce(rows []models.Row, key string, spec models.ChartSpec, types map[string]models.FieldType) []models.Point {
	keyType := typeOf(types, key)
	acc := newAccumulator()
	for _, row := range rows {
		acc.add(p.bucket(row.Get(key), keyType), models.ValueSeries, number(row.Get(spec.YAxisKey)))
	}
	return acc.points(spec.Aggregate)
}

// Pie reduces rows to one dimension: the group key (x axis fallback) with
// the chart's aggregate. The series key is ignored and blank names dropped.
func (p *Pipeline) Pie(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType) models.Result {
	all := p.reduce(rows, spec.GroupKey(), spec, types)
	points := make([]models.Point, 0, len(all))
	for _, pt := range all {
		if strings.TrimSpace(pt.Name) == "" {
			continue
		}
		points = append(points, pt)
	}

	pieSpec := spec
	pieSpec.SeriesKey = ""
	if pieSpec.GroupByKey == "" {
		pieSpec.GroupByKey = spec.XAxisKey
	}
	p.sortPoints(points, pieSpec, types, false)
	return models.Result{
		Points: points,
		Series: []string{models.ValueSeries},
	}
}
