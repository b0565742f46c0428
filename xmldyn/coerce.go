package xmldyn

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// AsString coerces a dynamically decoded value to a string: text and
// []byte are returned directly, a fmt.Stringer/error get their own
// rendering, and a map/slice falls back to its JSON form so the result
// is still something worth logging.
func AsString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// AsInt coerces v to an int, returning 0 when v can't be read as one.
func AsInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(t))
		return i
	}
	return 0
}

// AsFloat coerces v to a float64, returning 0 when v can't be read as one.
func AsFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

// AsBool coerces v to a bool: a bool is returned as-is; otherwise v's text
// form is true when it is "true", "1", "yes" or "on" (case-insensitive),
// and anything else is false.
func AsBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s := strings.ToLower(fmt.Sprintf("%v", v))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// AsSlice normalizes v to a []any: a value that's already a slice is
// returned as-is, anything else (including nil) becomes a zero- or
// one-element slice, so callers can range over a query result without
// checking its shape first.
func AsSlice(v any) []any {
	if v == nil {
		return []any{}
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// AsTime parses v's string form against layouts, or a small set of
// common ones when none are given.
func AsTime(v any, layouts ...string) (time.Time, error) {
	s := AsString(v)
	if len(layouts) == 0 {
		layouts = []string{
			time.RFC3339,
			"2006-01-02",
			"2006-01-02 15:04:05",
			time.RFC1123,
		}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("xmldyn: unable to parse time: %s", s)
}
