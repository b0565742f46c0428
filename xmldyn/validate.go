package xmldyn

import (
	"fmt"
	"strconv"
)

// Rule is one schema-like constraint Validate checks against a Value's
// path. Type, when set, is one of "int", "float", "string", "array",
// "bool"; Min/Max apply only to numeric-typed rules, Regex/Enum only to
// string-typed ones.
type Rule struct {
	Path     string
	Required bool
	Type     string
	Min      float64
	Max      float64
	Regex    string
	Enum     []string
}

// Validate checks data (a Value, or any map[string]any/[]any shaped like
// one) against rules and returns one message per violation — an empty
// slice means every rule was satisfied. A missing, non-Required path is
// simply skipped rather than treated as a violation.
func Validate(data any, rules []Rule) []string {
	var errs []string
	for _, r := range rules {
		val, err := Query(data, r.Path)
		if err != nil {
			if r.Required {
				errs = append(errs, "missing: "+r.Path)
			}
			continue
		}

		var floatVal float64
		var strVal string
		isNum, isStr := false, false

		switch r.Type {
		case "array":
			if _, ok := val.([]any); !ok {
				errs = append(errs, fmt.Sprintf("%s must be an array", r.Path))
			}
		case "bool":
			if _, ok := val.(bool); !ok {
				if s, ok := val.(string); !ok || (s != "true" && s != "false") {
					errs = append(errs, fmt.Sprintf("%s must be a bool", r.Path))
				}
			}
		case "int", "float":
			if v, ok := asFloat(val); ok {
				floatVal = v
				isNum = true
			} else {
				errs = append(errs, fmt.Sprintf("%s must be numeric", r.Path))
			}
		case "string":
			strVal = fmt.Sprintf("%v", val)
			isStr = true
		}

		if isNum {
			if r.Min != 0 && floatVal < r.Min {
				errs = append(errs, fmt.Sprintf("%s value %.2f is less than minimum %.2f", r.Path, floatVal, r.Min))
			}
			if r.Max != 0 && floatVal > r.Max {
				errs = append(errs, fmt.Sprintf("%s value %.2f is greater than maximum %.2f", r.Path, floatVal, r.Max))
			}
		}

		if isStr {
			if r.Regex != "" {
				matched, _ := regexMatch(strVal, r.Regex)
				if !matched {
					errs = append(errs, fmt.Sprintf("%s invalid format (regex)", r.Path))
				}
			}
			if len(r.Enum) > 0 {
				found := false
				for _, allowed := range r.Enum {
					if strVal == allowed {
						found = true
						break
					}
				}
				if !found {
					errs = append(errs, fmt.Sprintf("%s invalid value, allowed: %v", r.Path, r.Enum))
				}
			}
		}
	}
	return errs
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
