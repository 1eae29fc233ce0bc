package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

type condKind int

const (
	condEqual condKind = iota
	condNotEqual
	condLike
	condNotLike
	condGreater
	condLess
	condBlank
	condNotBlank
	condRange
)

type likeMode int

const (
	likeAnywhere likeMode = iota
	likePrefix
	likeSuffix
)

// condition is the dialect-neutral form of a rule. Compiler and evaluator
// both consume it, so a rule means the same thing on either path.
type condition struct {
	kind  condKind
	field string
	text  string
	num   float64
	like  likeMode

	// condRange; a zero bound is open
	lo, hi         time.Time
	loIncl, hiIncl bool
}

// clock resolves "now" and calendar boundaries in a fixed location
type clock struct {
	now func() time.Time
	loc *time.Location
}

func (c clock) current() time.Time {
	return c.now().In(c.loc)
}

func (c clock) startOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

func (c clock) endOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), c.loc)
}

// week returns Monday 00:00 and Sunday 23:59:59.999 of the week offset weeks
// away from the current one.
func (c clock) week(offset int) (time.Time, time.Time) {
	today := c.startOfDay(c.current())
	sinceMonday := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -sinceMonday+7*offset)
	return monday, c.endOfDay(monday.AddDate(0, 0, 6))
}

// literal parses a user-entered date
func (c clock) literal(s string) (time.Time, bool) {
	t, ok := models.AsTime(strings.TrimSpace(s), c.loc)
	if !ok {
		return time.Time{}, false
	}
	return t.In(c.loc), true
}

func hasValue(s string) bool {
	return strings.TrimSpace(s) != ""
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// plan turns a rule into a condition. ok is false when the rule is inert or
// incomplete and must contribute nothing.
func (c clock) plan(rule models.FilterRule) (cond condition, ok bool) {
	if rule.Inert() {
		return cond, false
	}
	if Arity(rule.Operator) > 0 && !hasValue(rule.Value) {
		return cond, false
	}
	cond.field = rule.Field

	switch rule.Operator {
	case models.OpEquals:
		if models.IsDayLiteral(rule.Value) {
			day, ok := c.literal(rule.Value)
			if !ok {
				return cond, false
			}
			return c.window(cond, c.startOfDay(day), true, c.endOfDay(day), true), true
		}
		cond.kind = condEqual
		cond.text = rule.Value
	case models.OpNotEquals:
		cond.kind = condNotEqual
		cond.text = rule.Value
	case models.OpContains, models.OpNotContains, models.OpBeginsWith, models.OpEndsWith:
		cond.kind = condLike
		if rule.Operator == models.OpNotContains {
			cond.kind = condNotLike
		}
		cond.text = rule.Value
		switch rule.Operator {
		case models.OpBeginsWith:
			cond.like = likePrefix
		case models.OpEndsWith:
			cond.like = likeSuffix
		}
	case models.OpGreaterThan, models.OpLessThan:
		n, ok := models.AsFloat(rule.Value)
		if !ok {
			return cond, false
		}
		cond.kind = condGreater
		if rule.Operator == models.OpLessThan {
			cond.kind = condLess
		}
		cond.num = n
	case models.OpBlank:
		cond.kind = condBlank
	case models.OpNotBlank:
		cond.kind = condNotBlank
	case models.OpToday:
		start := c.startOfDay(c.current())
		return c.window(cond, start, true, start.AddDate(0, 0, 1), false), true
	case models.OpThisWeek:
		start, end := c.week(0)
		return c.window(cond, start, true, end, true), true
	case models.OpLastWeek:
		start, end := c.week(-1)
		return c.window(cond, start, true, end, true), true
	case models.OpBefore, models.OpAfter:
		var at time.Time
		if strings.EqualFold(strings.TrimSpace(rule.Value), "today") {
			at = c.current()
		} else {
			t, ok := c.literal(rule.Value)
			if !ok {
				return cond, false
			}
			at = t
		}
		if rule.Operator == models.OpBefore {
			return c.window(cond, time.Time{}, false, at, false), true
		}
		return c.window(cond, at, false, time.Time{}, false), true
	case models.OpBetween:
		if !hasValue(rule.Value2) {
			return cond, false
		}
		from, ok := c.literal(rule.Value)
		if !ok {
			return cond, false
		}
		to, ok := c.literal(rule.Value2)
		if !ok {
			return cond, false
		}
		return c.window(cond, c.startOfDay(from), true, c.endOfDay(to), true), true
	case models.OpLastDays, models.OpLastMonths:
		n, ok := positiveInt(rule.Value)
		if !ok {
			return cond, false
		}
		now := c.current()
		from := now.AddDate(0, 0, -n)
		if rule.Operator == models.OpLastMonths {
			from = now.AddDate(0, -n, 0)
		}
		return c.window(cond, c.startOfDay(from), true, c.endOfDay(now), true), true
	default:
		return cond, false
	}
	return cond, true
}

func (c clock) window(cond condition, lo time.Time, loIncl bool, hi time.Time, hiIncl bool) condition {
	cond.kind = condRange
	cond.lo, cond.loIncl = lo, loIncl
	cond.hi, cond.hiIncl = hi, hiIncl
	return cond
}
