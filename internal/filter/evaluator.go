package filter

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

// Evaluator applies filter rules to materialized rows with the same
// semantics the Builder gives them in SQL.
type Evaluator struct {
	clock clock
	lg    *zap.Logger
}

// NewEvaluator creates an evaluator
func NewEvaluator(opts ...Option) *Evaluator {
	o := newOptions(opts)
	return &Evaluator{
		clock: o.clock(),
		lg:    o.lg,
	}
}

// EvaluateFilters reports whether row passes every rule, using UTC and the current time
func EvaluateFilters(rules []models.FilterRule, row models.Row) bool {
	return NewEvaluator().Match(rules, row)
}

// Match reports whether row passes every applicable rule
func (e *Evaluator) Match(rules []models.FilterRule, row models.Row) bool {
	for _, rule := range rules {
		cond, ok := e.clock.plan(rule)
		if !ok {
			continue
		}
		if !e.matchCondition(cond, row) {
			return false
		}
	}
	return true
}

// Filter returns the rows passing every rule, preserving order
func (e *Evaluator) Filter(rules []models.FilterRule, rows []models.Row) []models.Row {
	conds := make([]condition, 0, len(rules))
	for _, rule := range rules {
		if cond, ok := e.clock.plan(rule); ok {
			conds = append(conds, cond)
		}
	}
	if len(conds) == 0 {
		return rows
	}

	out := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, cond := range conds {
			if !e.matchCondition(cond, row) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	e.lg.Debug("Filtered rows",
		zap.Int("rules", len(conds)),
		zap.Int("in", len(rows)),
		zap.Int("out", len(out)),
	)
	return out
}

// matchCondition mirrors SQL three-valued logic: a NULL operand fails every
// comparison except IS NULL.
func (e *Evaluator) matchCondition(cond condition, row models.Row) bool {
	v := row.Get(cond.field)

	switch cond.kind {
	case condBlank:
		return models.IsBlank(v)
	case condNotBlank:
		return !models.IsBlank(v)
	}
	if v == nil {
		return false
	}

	switch cond.kind {
	case condEqual:
		return equalValue(v, cond.text)
	case condNotEqual:
		return !equalValue(v, cond.text)
	case condLike:
		return likeMatch(models.AsString(v), cond.text, cond.like)
	case condNotLike:
		return !likeMatch(models.AsString(v), cond.text, cond.like)
	case condGreater, condLess:
		n, ok := models.AsFloat(v)
		if !ok {
			return false
		}
		if cond.kind == condGreater {
			return n > cond.num
		}
		return n < cond.num
	case condRange:
		t, ok := models.AsTime(v, e.clock.loc)
		if !ok {
			return false
		}
		if !cond.lo.IsZero() {
			if t.Before(cond.lo) || (!cond.loIncl && t.Equal(cond.lo)) {
				return false
			}
		}
		if !cond.hi.IsZero() {
			if t.After(cond.hi) || (!cond.hiIncl && t.Equal(cond.hi)) {
				return false
			}
		}
		return true
	}
	return false
}

// equalValue compares numerically when the row holds a number and the rule
// value parses as one. Text values compare as text, so "007" never equals 7.
func equalValue(v any, text string) bool {
	if s, ok := v.(string); ok {
		return s == text
	}
	if a, ok := models.AsFloat(v); ok {
		if b, ok := models.AsFloat(text); ok {
			return a == b
		}
	}
	return models.AsString(v) == text
}

func likeMatch(s, needle string, mode likeMode) bool {
	s, needle = strings.ToLower(s), strings.ToLower(needle)
	switch mode {
	case likePrefix:
		return strings.HasPrefix(s, needle)
	case likeSuffix:
		return strings.HasSuffix(s, needle)
	default:
		return strings.Contains(s, needle)
	}
}
