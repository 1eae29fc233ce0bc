package filter

import (
	"slices"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

var (
	stringOps = []models.OperatorID{
		models.OpContains, models.OpNotContains, models.OpBeginsWith, models.OpEndsWith,
		models.OpEquals, models.OpNotEquals, models.OpBlank, models.OpNotBlank,
	}
	numberOps = []models.OperatorID{
		models.OpEquals, models.OpGreaterThan, models.OpLessThan, models.OpBlank, models.OpNotBlank,
	}
	dateOps = []models.OperatorID{
		models.OpToday, models.OpThisWeek, models.OpLastWeek, models.OpBefore, models.OpAfter,
		models.OpBetween, models.OpLastDays, models.OpLastMonths,
		models.OpEquals, models.OpBlank, models.OpNotBlank,
	}
)

// OperatorsFor returns the operators applicable to a field type
func OperatorsFor(t models.FieldType) []models.OperatorID {
	switch t {
	case models.TypeNumber:
		return slices.Clone(numberOps)
	case models.TypeDate:
		return slices.Clone(dateOps)
	default:
		return slices.Clone(stringOps)
	}
}

// Arity returns how many values an operator consumes
func Arity(op models.OperatorID) int {
	switch op {
	case models.OpBlank, models.OpNotBlank, models.OpToday, models.OpThisWeek, models.OpLastWeek:
		return 0
	case models.OpBetween:
		return 2
	default:
		return 1
	}
}

// IsDateRange reports whether op only makes sense on date fields
func IsDateRange(op models.OperatorID) bool {
	switch op {
	case models.OpToday, models.OpThisWeek, models.OpLastWeek, models.OpBefore, models.OpAfter,
		models.OpBetween, models.OpLastDays, models.OpLastMonths:
		return true
	}
	return false
}

// Applicable reports whether op is valid for fields of type t
func Applicable(op models.OperatorID, t models.FieldType) bool {
	return slices.Contains(OperatorsFor(t), op)
}

// DefaultOperator is the operator a new rule starts with for type t
func DefaultOperator(t models.FieldType) models.OperatorID {
	switch t {
	case models.TypeNumber:
		return models.OpEquals
	case models.TypeDate:
		return models.OpToday
	default:
		return models.OpContains
	}
}

// Reconcile adapts a rule after its field's inferred type changed. Date-range
// operators survive so a rule is not lost while the type is still unknown.
func Reconcile(rule models.FilterRule, t models.FieldType) models.FilterRule {
	if Applicable(rule.Operator, t) || IsDateRange(rule.Operator) {
		return rule
	}
	rule.Operator = DefaultOperator(t)
	return rule
}
