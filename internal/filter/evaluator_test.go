package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

func newTestEvaluator(opts ...Option) *Evaluator {
	return NewEvaluator(append([]Option{WithClock(fixedClock)}, opts...)...)
}

func TestEvaluator_GreaterThan(t *testing.T) {
	rules := []models.FilterRule{{Field: "amount", Operator: models.OpGreaterThan, Value: "100"}}
	rows := []models.Row{{"amount": int64(50)}, {"amount": int64(150)}}

	got := newTestEvaluator().Filter(rules, rows)
	require.Len(t, got, 1)
	assert.Equal(t, int64(150), got[0]["amount"])
}

func TestEvaluator_CaseInsensitiveField(t *testing.T) {
	rules := []models.FilterRule{{Field: "total_sales", Operator: models.OpGreaterThan, Value: "10"}}
	assert.True(t, EvaluateFilters(rules, models.Row{"Total_Sales": 11.0}))
	assert.False(t, EvaluateFilters(rules, models.Row{"Total_Sales": 9.0}))
}

func TestEvaluator_Operators(t *testing.T) {
	tests := []struct {
		name string
		rule models.FilterRule
		v    any
		want bool
	}{
		{"EqualsText", models.FilterRule{Operator: models.OpEquals, Value: "East"}, "East", true},
		{"EqualsTextCaseSensitive", models.FilterRule{Operator: models.OpEquals, Value: "East"}, "east", false},
		{"EqualsNumeric", models.FilterRule{Operator: models.OpEquals, Value: "150"}, 150.0, true},
		{"EqualsNumericString", models.FilterRule{Operator: models.OpEquals, Value: "150"}, "150.0", false},
		{"EqualsPaddedText", models.FilterRule{Operator: models.OpEquals, Value: "7"}, "007", false},
		{"EqualsIntegerColumn", models.FilterRule{Operator: models.OpEquals, Value: "7.0"}, int64(7), true},
		{"NotEqualsNumericString", models.FilterRule{Operator: models.OpNotEquals, Value: "7"}, "7.0", true},
		{"EqualsDayMatchesWholeDay", models.FilterRule{Operator: models.OpEquals, Value: "2024-03-13"}, "2024-03-13 23:10:00", true},
		{"EqualsDayOtherDay", models.FilterRule{Operator: models.OpEquals, Value: "2024-03-13"}, "2024-03-14T00:00:00Z", false},
		{"EqualsNull", models.FilterRule{Operator: models.OpEquals, Value: "x"}, nil, false},
		{"NotEquals", models.FilterRule{Operator: models.OpNotEquals, Value: "East"}, "West", true},
		{"NotEqualsNull", models.FilterRule{Operator: models.OpNotEquals, Value: "East"}, nil, false},
		{"Contains", models.FilterRule{Operator: models.OpContains, Value: "LIC"}, "Alice", true},
		{"ContainsMiss", models.FilterRule{Operator: models.OpContains, Value: "bob"}, "Alice", false},
		{"ContainsNumber", models.FilterRule{Operator: models.OpContains, Value: "50"}, int64(1500), true},
		{"NotContains", models.FilterRule{Operator: models.OpNotContains, Value: "bob"}, "Alice", true},
		{"NotContainsNull", models.FilterRule{Operator: models.OpNotContains, Value: "bob"}, nil, false},
		{"BeginsWith", models.FilterRule{Operator: models.OpBeginsWith, Value: "al"}, "Alice", true},
		{"BeginsWithMiss", models.FilterRule{Operator: models.OpBeginsWith, Value: "ce"}, "Alice", false},
		{"EndsWith", models.FilterRule{Operator: models.OpEndsWith, Value: "CE"}, "Alice", true},
		{"GreaterThanString", models.FilterRule{Operator: models.OpGreaterThan, Value: "1"}, "2", true},
		{"GreaterThanText", models.FilterRule{Operator: models.OpGreaterThan, Value: "1"}, "abc", false},
		{"LessThan", models.FilterRule{Operator: models.OpLessThan, Value: "1"}, -3.5, true},
		{"LessThanEqual", models.FilterRule{Operator: models.OpLessThan, Value: "1"}, 1.0, false},
		{"BlankNull", models.FilterRule{Operator: models.OpBlank}, nil, true},
		{"BlankEmpty", models.FilterRule{Operator: models.OpBlank}, "", true},
		{"BlankZero", models.FilterRule{Operator: models.OpBlank}, int64(0), false},
		{"NotBlank", models.FilterRule{Operator: models.OpNotBlank}, "x", true},
		{"NotBlankNull", models.FilterRule{Operator: models.OpNotBlank}, nil, false},
		{"Today", models.FilterRule{Operator: models.OpToday}, "2024-03-13T01:00:00Z", true},
		{"TodayTomorrowMidnight", models.FilterRule{Operator: models.OpToday}, "2024-03-14 00:00:00", false},
		{"TodayTime", models.FilterRule{Operator: models.OpToday}, time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC), true},
		{"ThisWeekMonday", models.FilterRule{Operator: models.OpThisWeek}, "2024-03-11", true},
		{"ThisWeekSundayNight", models.FilterRule{Operator: models.OpThisWeek}, "2024-03-17 23:59:59", true},
		{"ThisWeekPrevSunday", models.FilterRule{Operator: models.OpThisWeek}, "2024-03-10", false},
		{"LastWeek", models.FilterRule{Operator: models.OpLastWeek}, "10/03/2024", true},
		{"BeforeStrict", models.FilterRule{Operator: models.OpBefore, Value: "2024-03-01"}, "2024-03-01", false},
		{"Before", models.FilterRule{Operator: models.OpBefore, Value: "2024-03-01"}, "2024-02-29 23:00:00", true},
		{"BeforeToday", models.FilterRule{Operator: models.OpBefore, Value: "today"}, "2024-03-13 15:00:00", true},
		{"AfterStrict", models.FilterRule{Operator: models.OpAfter, Value: "2024-03-01"}, "2024-03-01", false},
		{"After", models.FilterRule{Operator: models.OpAfter, Value: "2024-03-01"}, "2024-03-01 00:00:01", true},
		{"BetweenInclusiveEnd", models.FilterRule{Operator: models.OpBetween, Value: "2024-01-01", Value2: "2024-01-31"}, "2024-01-31 23:59:59", true},
		{"BetweenOutside", models.FilterRule{Operator: models.OpBetween, Value: "2024-01-01", Value2: "2024-01-31"}, "2024-02-01", false},
		{"LastDays", models.FilterRule{Operator: models.OpLastDays, Value: "7"}, "2024-03-06", true},
		{"LastDaysTooOld", models.FilterRule{Operator: models.OpLastDays, Value: "7"}, "2024-03-05 23:59:59", false},
		{"LastMonths", models.FilterRule{Operator: models.OpLastMonths, Value: "1"}, "2024-02-13", true},
		{"DateNotParsable", models.FilterRule{Operator: models.OpLastMonths, Value: "1"}, "yesterday", false},
		{"DateNumber", models.FilterRule{Operator: models.OpToday}, int64(20240313), false},
	}
	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.rule
			rule.Field = "f"
			assert.Equal(t, tt.want, e.Match([]models.FilterRule{rule}, models.Row{"f": tt.v}))
		})
	}
}

func TestEvaluator_InertRulesPass(t *testing.T) {
	e := newTestEvaluator()
	row := models.Row{"a": "x"}
	for _, rule := range []models.FilterRule{
		{Field: "", Operator: models.OpEquals, Value: "y"},
		{Field: "a", Operator: "fuzzy", Value: "y"},
		{Field: "a", Operator: models.OpEquals},
		{Field: "a", Operator: models.OpBetween, Value: "2024-01-01"},
		{Field: "a", Operator: models.OpGreaterThan, Value: "NaN"},
		{Field: "a", Operator: models.OpLastDays, Value: "-1"},
	} {
		assert.True(t, e.Match([]models.FilterRule{rule}, row), "rule %+v", rule)
	}
}

func TestEvaluator_AllRulesMustPass(t *testing.T) {
	rules := []models.FilterRule{
		{Field: "region", Operator: models.OpEquals, Value: "East"},
		{Field: "amount", Operator: models.OpGreaterThan, Value: "10"},
	}
	e := newTestEvaluator()
	assert.True(t, e.Match(rules, models.Row{"region": "East", "amount": 11.0}))
	assert.False(t, e.Match(rules, models.Row{"region": "East", "amount": 9.0}))
	assert.False(t, e.Match(rules, models.Row{"region": "West", "amount": 11.0}))
	assert.True(t, e.Match(nil, models.Row{}))
}

func TestEvaluator_FilterWithoutRulesReturnsInput(t *testing.T) {
	rows := []models.Row{{"a": 1.0}, {"a": 2.0}}
	assert.Equal(t, rows, newTestEvaluator().Filter(nil, rows))
}
