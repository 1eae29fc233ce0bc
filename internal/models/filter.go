package models

import (
	"strings"

	"github.com/go-faster/errors"
)

// OperatorID identifies a filter operator
type OperatorID string

const (
	OpEquals      OperatorID = "equals"
	OpNotEquals   OperatorID = "not_equals"
	OpContains    OperatorID = "contains"
	OpNotContains OperatorID = "not_contains"
	OpBeginsWith  OperatorID = "begins_with"
	OpEndsWith    OperatorID = "ends_with"
	OpGreaterThan OperatorID = "gt"
	OpLessThan    OperatorID = "lt"
	OpBlank       OperatorID = "blank"
	OpNotBlank    OperatorID = "not_blank"
	OpToday       OperatorID = "today"
	OpThisWeek    OperatorID = "this_week"
	OpLastWeek    OperatorID = "last_week"
	OpBefore      OperatorID = "before"
	OpAfter       OperatorID = "after"
	OpBetween     OperatorID = "between"
	OpLastDays    OperatorID = "last_days"
	OpLastMonths  OperatorID = "last_months"
)

// Operators lists every known operator in catalogue order
var Operators = []OperatorID{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpBeginsWith, OpEndsWith,
	OpGreaterThan, OpLessThan, OpBlank, OpNotBlank,
	OpToday, OpThisWeek, OpLastWeek, OpBefore, OpAfter, OpBetween, OpLastDays, OpLastMonths,
}

// Known reports whether op is part of the operator catalogue
func (op OperatorID) Known() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// ParseOperator validates an operator id supplied by a caller
func ParseOperator(s string) (OperatorID, error) {
	op := OperatorID(strings.ToLower(strings.TrimSpace(s)))
	if !op.Known() {
		return "", errors.Errorf("unknown filter operator %q", s)
	}
	return op, nil
}

// FieldType is the inferred class of a column
type FieldType string

const (
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeString FieldType = "string"
)

// ParseFieldType validates a field type name
func ParseFieldType(s string) (FieldType, error) {
	switch t := FieldType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeNumber, TypeDate, TypeString:
		return t, nil
	default:
		return "", errors.Errorf("unknown field type %q", s)
	}
}

// Dialect selects the SQL flavour a filter is compiled for
type Dialect string

const (
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
)

// ParseDialect validates a dialect name. "postgres" is accepted as an alias.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgresql", "postgres", "pg":
		return PostgreSQL, nil
	default:
		return "", errors.Errorf("unsupported dialect %q", s)
	}
}

// FilterRule is a single user-authored condition
type FilterRule struct {
	Field    string     `yaml:"field" json:"field"`
	Operator OperatorID `yaml:"operator" json:"operator"`
	Value    string     `yaml:"value,omitempty" json:"value,omitempty"`
	Value2   string     `yaml:"value2,omitempty" json:"value2,omitempty"` // between only
}

// Inert reports whether the rule can never contribute a predicate
func (r FilterRule) Inert() bool {
	return strings.TrimSpace(r.Field) == "" || !r.Operator.Known()
}

// RuleFields returns the distinct non-empty fields referenced by rules
func RuleFields(rules []FilterRule) []string {
	var fields []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if r.Field == "" || seen[r.Field] {
			continue
		}
		seen[r.Field] = true
		fields = append(fields, r.Field)
	}
	return fields
}
