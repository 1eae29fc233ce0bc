package infer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

func rowsOf(field string, values ...any) []models.Row {
	rows := make([]models.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, models.Row{field: v})
	}
	return rows
}

func TestFieldType(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   models.FieldType
	}{
		{"Numbers", []any{int64(1), 2.5, "3", " 4.75 "}, models.TypeNumber},
		{"SingleNumber", []any{"42", nil, ""}, models.TypeNumber},
		{"NumbersWithText", []any{"1", "two"}, models.TypeNumber},
		{"Dates", []any{"2024-01-01", "2024-02-15", "2024-03-01T10:00:00Z"}, models.TypeDate},
		{"DayFirstDates", []any{"01/02/2024", "15/02/2024", "28/02/2024"}, models.TypeDate},
		{"NativeTimes", []any{time.Now(), time.Now(), time.Now()}, models.TypeDate},
		{"TwoDatesNotEnough", []any{"2024-01-01", "2024-02-15", "not-a-date"}, models.TypeString},
		{"DatesMixedWithNumbers", []any{"2024-01-01", "2024-01-02", "2024-01-03", "7"}, models.TypeString},
		{"InvalidCalendarDate", []any{"2024-13-45", "2024-14-01", "2024-99-99"}, models.TypeString},
		{"Text", []any{"East", "West"}, models.TypeString},
		{"Empty", nil, models.TypeString},
		{"OnlyBlanks", []any{nil, "", nil}, models.TypeString},
		{"Booleans", []any{true, false}, models.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldType("f", rowsOf("f", tt.values...)))
		})
	}
}

func TestFieldType_CaseInsensitiveKey(t *testing.T) {
	rows := rowsOf("Total_Sales", 1.0, 2.0)
	assert.Equal(t, models.TypeNumber, FieldType("total_sales", rows))
}

func TestFieldType_SamplesFirstRowsOnly(t *testing.T) {
	var values []any
	for i := 0; i < SampleSize; i++ {
		values = append(values, fmt.Sprintf("%d", i))
	}
	values = append(values, "2024-01-01", "2024-01-02", "2024-01-03")
	assert.Equal(t, models.TypeNumber, FieldType("f", rowsOf("f", values...)))
}

func TestCache(t *testing.T) {
	rows := []models.Row{
		{"amount": 10.0, "day": "2024-01-01", "region": "East"},
		{"amount": 20.0, "day": "2024-01-02", "region": "West"},
		{"amount": 30.0, "day": "2024-01-03", "region": "East"},
	}
	c := NewCache(rows, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, models.TypeNumber, c.Type("amount"))
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]models.FieldType{
		"amount": models.TypeNumber,
		"day":    models.TypeDate,
		"region": models.TypeString,
	}, c.Types("amount", "day", "region", ""))
}

func TestNewCacheSize(t *testing.T) {
	rows := rowsOf("f", "1", "2024-01-01", "2024-01-02", "2024-01-03")
	assert.Equal(t, models.TypeNumber, NewCacheSize(rows, nil, 1).Type("f"))
	assert.Equal(t, models.TypeString, NewCacheSize(rows, nil, 0).Type("f"))
	assert.Equal(t, models.TypeDate, NewCacheSize(rows[1:], nil, 10).Type("f"))
}
