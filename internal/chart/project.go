package chart

import (
	"slices"
	"strings"

	"github.com/Sunsu-Sulution/bear-vault/internal/compare"
	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Project copies the chart's columns plus every axis, group, series and extra
// (typically filter) field from each row into a fresh record keyed by the
// requested name. With nothing requested rows are copied whole.
func Project(rows []models.Row, spec models.ChartSpec, extra ...string) []models.Row {
	fields := spec.Fields()
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[strings.ToLower(f)] = true
	}
	for _, f := range extra {
		if f != "" && !seen[strings.ToLower(f)] {
			seen[strings.ToLower(f)] = true
			fields = append(fields, f)
		}
	}

	out := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		rec := make(models.Row, max(len(fields), len(row)))
		if len(fields) == 0 {
			for k, v := range row {
				rec[k] = v
			}
		}
		for _, f := range fields {
			rec[f] = row.Get(f)
		}
		out = append(out, rec)
	}
	return out
}

// Table sorts rows by SortBy when set, then projects them for raw display.
// SortBy does not need to be a projected column.
func (p *Pipeline) Table(rows []models.Row, spec models.ChartSpec, types map[string]models.FieldType, extra ...string) []models.Row {
	if spec.SortBy != "" {
		order := spec.SortOrder
		if order != models.Desc {
			order = models.Asc
		}
		rows = slices.Clone(rows)
		compare.SortRows(rows, spec.SortBy, typeOf(types, spec.SortBy), order, p.loc)
	}
	return Project(rows, spec, extra...)
}
