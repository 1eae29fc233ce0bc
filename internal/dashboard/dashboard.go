// Package dashboard loads chart definitions and runs them against their data
// sources.
package dashboard

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Kind is the visual a chart renders as
type Kind string

const (
	KindBar   Kind = "bar"
	KindLine  Kind = "line"
	KindArea  Kind = "area"
	KindPie   Kind = "pie"
	KindTable Kind = "table"
)

// ParseKind validates a chart kind. Empty defaults to bar.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindBar, nil
	case KindBar, KindLine, KindArea, KindPie, KindTable:
		return k, nil
	default:
		return "", errors.Errorf("unknown chart kind %q", s)
	}
}

// Source is where a chart reads rows from: a table or a hand written query
type Source struct {
	Connection string `yaml:"connection" json:"connection"`
	Table      string `yaml:"table,omitempty" json:"table,omitempty"`
	SQL        string `yaml:"sql,omitempty" json:"sql,omitempty"`
}

// Chart is one dashboard widget
type Chart struct {
	ID      string              `yaml:"id" json:"id"`
	Title   string              `yaml:"title" json:"title"`
	Kind    Kind                `yaml:"kind" json:"kind"`
	Source  Source              `yaml:"source" json:"source"`
	Spec    models.ChartSpec    `yaml:"spec" json:"spec"`
	Filters []models.FilterRule `yaml:"filters,omitempty" json:"filters,omitempty"`
	Limit   int                 `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Dashboard is a named set of charts
type Dashboard struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Charts      []Chart `yaml:"charts" json:"charts"`
}

// Validate normalizes enum values and rejects charts that cannot run
func (c *Chart) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return errors.New("title cannot be empty")
	}

	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		return err
	}
	c.Kind = kind

	if err := c.Source.validate(); err != nil {
		return err
	}
	if err := c.Spec.Validate(); err != nil {
		return err
	}
	if c.Limit < 0 {
		return errors.Errorf("limit must not be negative, got %d", c.Limit)
	}

	switch c.Kind {
	case KindTable:
	case KindPie:
		if c.Spec.GroupKey() == "" {
			return errors.New("pie chart needs group_by_key or x_axis_key")
		}
	default:
		if c.Spec.GroupKey() == "" {
			return errors.Errorf("%s chart needs x_axis_key or group_by_key", c.Kind)
		}
	}
	if c.Kind != KindTable && c.Spec.YAxisKey == "" && c.Spec.Aggregate != models.AggCount {
		return errors.Errorf("%s chart needs y_axis_key unless aggregate is count", c.Kind)
	}

	for i, r := range c.Filters {
		if strings.TrimSpace(r.Field) == "" {
			continue
		}
		op, err := models.ParseOperator(string(r.Operator))
		if err != nil {
			return errors.Wrapf(err, "filters[%d]", i)
		}
		c.Filters[i].Operator = op
	}
	return nil
}

func (s Source) validate() error {
	if strings.TrimSpace(s.Connection) == "" {
		return errors.New("source connection cannot be empty")
	}
	hasTable := strings.TrimSpace(s.Table) != ""
	hasSQL := strings.TrimSpace(s.SQL) != ""
	switch {
	case hasTable && hasSQL:
		return errors.New("source needs either table or sql, not both")
	case !hasTable && !hasSQL:
		return errors.New("source needs a table or sql")
	}
	return nil
}

// Chart finds a chart by ID, falling back to a case-insensitive title match
func (d *Dashboard) Chart(ref string) (*Chart, error) {
	for i := range d.Charts {
		if d.Charts[i].ID == ref {
			return &d.Charts[i], nil
		}
	}
	for i := range d.Charts {
		if strings.EqualFold(d.Charts[i].Title, ref) {
			return &d.Charts[i], nil
		}
	}
	return nil, errors.Errorf("chart %q was not found", ref)
}
