package models

import (
	"encoding/json"
	"strings"

	"github.com/go-faster/errors"
)

// Aggregate is the function applied within a group/series cell
type Aggregate string

const (
	AggSum   Aggregate = "sum"
	AggCount Aggregate = "count"
	AggAvg   Aggregate = "avg"
)

// SortOrder is a sort direction
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ChartSpec describes how rows map to a visual series
type ChartSpec struct {
	XAxisKey   string    `yaml:"x_axis_key,omitempty" json:"xAxisKey,omitempty"`
	YAxisKey   string    `yaml:"y_axis_key,omitempty" json:"yAxisKey,omitempty"`
	GroupByKey string    `yaml:"group_by_key,omitempty" json:"groupByKey,omitempty"`
	SeriesKey  string    `yaml:"series_key,omitempty" json:"seriesKey,omitempty"`
	Aggregate  Aggregate `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`
	SortBy     string    `yaml:"sort_by,omitempty" json:"sortBy,omitempty"`
	SortOrder  SortOrder `yaml:"sort_order,omitempty" json:"sortOrder,omitempty"`
	Columns    []string  `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Validate rejects enum values a caller should never send. Empty aggregate
// and sort order default to sum and asc.
func (s *ChartSpec) Validate() error {
	switch Aggregate(strings.ToLower(string(s.Aggregate))) {
	case "":
		s.Aggregate = AggSum
	case AggSum, AggCount, AggAvg:
		s.Aggregate = Aggregate(strings.ToLower(string(s.Aggregate)))
	default:
		return errors.Errorf("unknown aggregate %q", s.Aggregate)
	}
	switch SortOrder(strings.ToLower(string(s.SortOrder))) {
	case "":
		s.SortOrder = Asc
	case Asc, Desc:
		s.SortOrder = SortOrder(strings.ToLower(string(s.SortOrder)))
	default:
		return errors.Errorf("unknown sort order %q", s.SortOrder)
	}
	return nil
}

// GroupKey returns the grouping key: GroupByKey, falling back to XAxisKey
func (s ChartSpec) GroupKey() string {
	if s.GroupByKey != "" {
		return s.GroupByKey
	}
	return s.XAxisKey
}

// Fields lists every column the chart references, Columns first, without duplicates
func (s ChartSpec) Fields() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(f string) {
		if f == "" || seen[strings.ToLower(f)] {
			return
		}
		seen[strings.ToLower(f)] = true
		out = append(out, f)
	}
	for _, c := range s.Columns {
		add(c)
	}
	add(s.XAxisKey)
	add(s.YAxisKey)
	add(s.GroupByKey)
	add(s.SeriesKey)
	return out
}

// ValueSeries is the series name used for single-series output
const ValueSeries = "value"

// NameKey is the key a point's name is flattened under. No series may use it.
const NameKey = "name"

// Point is one aggregated entry: a name plus one value per series
type Point struct {
	Name   string
	Values map[string]float64
}

// Value returns the single-series value
func (p Point) Value() float64 {
	return p.Values[ValueSeries]
}

// MarshalJSON flattens the point into {"name": ..., "<series>": ...}
func (p Point) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		m[k] = v
	}
	m[NameKey] = p.Name
	return json.Marshal(m)
}

// Result is the output of the aggregation pipeline
type Result struct {
	Points  []Point  `json:"data"`
	Series  []string `json:"series"`
	Grouped bool     `json:"grouped"`
}
