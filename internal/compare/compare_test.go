package compare

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

func TestValues(t *testing.T) {
	tests := []struct {
		name  string
		a, b  any
		t     models.FieldType
		order models.SortOrder
		want  int
	}{
		{"NumberAsc", 2.0, 10.0, models.TypeNumber, models.Asc, -1},
		{"NumberDesc", 2.0, 10.0, models.TypeNumber, models.Desc, 1},
		{"NumberStrings", "2", "10", models.TypeNumber, models.Asc, -1},
		{"NumberEqual", int64(3), 3.0, models.TypeNumber, models.Asc, 0},
		{"NilLastAsc", nil, 1.0, models.TypeNumber, models.Asc, 1},
		{"NilLastDesc", nil, 1.0, models.TypeNumber, models.Desc, 1},
		{"NilOtherSide", 1.0, nil, models.TypeNumber, models.Desc, -1},
		{"BothNil", nil, nil, models.TypeString, models.Asc, 0},
		{"NaNLastAsc", math.NaN(), 1.0, models.TypeNumber, models.Asc, 1},
		{"NaNLastDesc", 1.0, math.NaN(), models.TypeNumber, models.Desc, -1},
		{"TextNumberLast", "n/a", 5.0, models.TypeNumber, models.Asc, 1},
		{"DateAsc", "2024-01-02", "2024-01-10", models.TypeDate, models.Asc, -1},
		{"DateDesc", "2024-01-02", "2024-01-10", models.TypeDate, models.Desc, 1},
		{"DateMixedForms", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), models.TypeDate, models.Asc, 0},
		{"DateDayFirst", "03/01/2024", "2024-01-02", models.TypeDate, models.Asc, 1},
		{"DateUnparsableEqual", "someday", "2024-01-02", models.TypeDate, models.Asc, 0},
		{"StringAsc", "apple", "banana", models.TypeString, models.Asc, -1},
		{"StringDesc", "apple", "banana", models.TypeString, models.Desc, 1},
		{"StringLexicographic", "10", "9", models.TypeString, models.Asc, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Values(tt.a, tt.b, tt.t, tt.order))
		})
	}
}

func TestSortRows(t *testing.T) {
	rows := []models.Row{
		{"Amount": 5.0, "id": int64(1)},
		{"Amount": nil, "id": int64(2)},
		{"Amount": 1.0, "id": int64(3)},
		{"Amount": 5.0, "id": int64(4)},
	}

	SortRows(rows, "amount", models.TypeNumber, models.Desc, nil)

	var ids []int64
	for _, r := range rows {
		ids = append(ids, r["id"].(int64))
	}
	assert.Equal(t, []int64{1, 4, 3, 2}, ids)
}
