package models

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Row is an open-ended record keyed by column name. Values are normalized
// scalars: nil, int64, float64, string, bool or time.Time.
type Row map[string]any

// Lookup resolves key against the row: exact match first, then a
// case-insensitive match. Candidates are scanned in sorted key order so the
// chosen column is stable across calls.
func (r Row) Lookup(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	if k, ok := r.ResolveKey(key); ok {
		return r[k], true
	}
	return nil, false
}

// ResolveKey returns the actual row key matching key
func (r Row) ResolveKey(key string) (string, bool) {
	if _, ok := r[key]; ok {
		return key, true
	}
	keys := make([]string, 0, len(r))
	for k := range r {
		if strings.EqualFold(k, key) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	slices.Sort(keys)
	return keys[0], true
}

// Get is Lookup without the presence flag
func (r Row) Get(key string) any {
	v, _ := r.Lookup(key)
	return v
}

// Normalize converts a driver value into one of the scalar kinds a Row holds
func Normalize(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int64, time.Time:
		return val
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return nil
		}
		return Normalize(inner)
	default:
		s, err := cast.ToStringE(val)
		if err != nil {
			return nil
		}
		return s
	}
}

// IsBlank reports whether v counts as "blank": NULL or the empty string
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// AsFloat coerces v to a finite number. Strings must parse cleanly; booleans
// and times are never numbers.
func AsFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case nil, bool, time.Time:
		return 0, false
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		f, err := cast.ToFloat64E(val)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

// AsString renders v the way it is compared as text
func AsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(DayLayout)
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return cast.ToString(val)
	}
}

// DayLayout is the bucket format for day-granularity dates
const DayLayout = "2006-01-02"

var (
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	isoDateOnly   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDate       = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// IsDayLiteral reports whether s is exactly a YYYY-MM-DD date
func IsDayLiteral(s string) bool {
	return isoDateOnly.MatchString(strings.TrimSpace(s))
}

// AsTime interprets v as an instant. Strings must look like YYYY-MM-DD[...]
// or DD/MM/YYYY and parse to a valid timestamp; naive values are read in loc.
func AsTime(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		switch {
		case dmyDate.MatchString(s):
			t, err := time.ParseInLocation("02/01/2006", s, loc)
			return t, err == nil
		case isoDatePrefix.MatchString(s):
			t, err := cast.ToTimeInDefaultLocationE(s, loc)
			return t, err == nil
		}
	}
	return time.Time{}, false
}
