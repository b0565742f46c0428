package xmldyn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antonmedv/expr"
	"github.com/dlclark/regexp2"

	"github.com/corvantis/xmlserde/xmlerr"
)

// QueryAll searches a decoded Value (or any map[string]any/[]any value
// shaped like one — a sub-tree handed back from an earlier query) for
// every node matching path, in a small path-query language:
//
//   - Deep navigation: "library/section/book"
//   - Deep search:     "//error" (matches "error" at any depth)
//   - Array indexing:  "users/user[0]"
//   - Filter operators: "book[price>10]", "user[role=admin]", "user[id!=5]"
//   - Filter functions: "book[contains(title,'Go')]", "user[starts-with(name,'A')]"
//   - Regex filter:    "user[email~'^\\w+@corvantis\\.test$']"
//   - Expression filter: "book[?price > 10 && inStock]" (evaluated with expr)
//   - Wildcards:       "items/*/sku"
//   - Custom funcs:    "items/func:isNumeric/id" (see RegisterQueryFunction)
//   - Meta-properties: "items/#count", "book/title/#text"
//
// QueryAll never errors on a path that simply finds nothing — it returns
// (nil, nil). It returns a non-nil error only when a filter expression or
// regex itself is malformed.
func QueryAll(data any, path string) ([]any, error) {
	if path == "" {
		return []any{data}, nil
	}

	if strings.HasPrefix(path, "//") {
		return findAllRecursively(data, strings.TrimPrefix(path, "//")), nil
	}

	segments := strings.Split(path, "/")
	current := []any{data}

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		var next []any
		for _, candidate := range current {
			nodes := []any{candidate}
			if list, ok := candidate.([]any); ok {
				nodes = list
			}

			if segment == "#count" {
				next = append(next, countOf(candidate))
				continue
			}

			key, filter, idx := parseSegment(segment)

			for _, node := range nodes {
				if key == "#text" {
					switch node.(type) {
					case string, int, int64, float64, bool:
						next = append(next, node)
						continue
					}
				}

				for _, val := range selectKey(node, key) {
					switch {
					case filter != nil:
						items := []any{val}
						if list, ok := val.([]any); ok {
							items = list
						}
						for _, item := range items {
							ok, err := matchFilter(item, filter)
							if err != nil {
								return nil, err
							}
							if ok {
								next = append(next, item)
							}
						}
					case idx >= 0:
						if list, ok := val.([]any); ok && idx < len(list) {
							next = append(next, list[idx])
						}
					default:
						next = append(next, val)
					}
				}
			}
		}
		if len(next) == 0 {
			return nil, nil
		}
		current = next
	}
	return current, nil
}

// Query is QueryAll narrowed to the first match; it errors when path
// finds nothing, for callers who only ever expect a single result.
func Query(data any, path string) (any, error) {
	res, err := QueryAll(data, path)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, xmlerr.Newf(xmlerr.Custom, "xmldyn: no match for path %q", path)
	}
	return res[0], nil
}

func countOf(candidate any) int {
	switch v := candidate.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	}
	return 0
}

func selectKey(node any, key string) []any {
	m, ok := asMap(node)
	if !ok {
		return nil
	}
	switch {
	case key == "*":
		var out []any
		for _, k := range sortedKeys(m) {
			if !isMeta(k) {
				out = append(out, m[k])
			}
		}
		return out
	case strings.HasPrefix(key, "func:"):
		fn, ok := getQueryFunction(strings.TrimPrefix(key, "func:"))
		if !ok {
			return nil
		}
		var out []any
		for _, k := range sortedKeys(m) {
			if !isMeta(k) && fn(k) {
				out = append(out, m[k])
			}
		}
		return out
	default:
		if val, exists := m[key]; exists {
			return []any{val}
		}
		return nil
	}
}

func isMeta(key string) bool {
	return strings.HasPrefix(key, "$attr:") || key == "$value"
}

func asMap(node any) (map[string]any, bool) {
	switch v := node.(type) {
	case map[string]any:
		return v, true
	case Value:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findAllRecursively implements the "//name" deep-search form: every
// node in data, at any depth, whose own key set contains targetKey.
func findAllRecursively(data any, targetKey string) []any {
	var results []any
	var traverse func(node any)
	traverse = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			if val, exists := v[targetKey]; exists {
				results = append(results, val)
			}
			for _, k := range sortedKeys(v) {
				traverse(v[k])
			}
		case Value:
			traverse(map[string]any(v))
		case []any:
			for _, item := range v {
				traverse(item)
			}
		}
	}
	traverse(data)
	return results
}

// filterSpec is a parsed "[...]" predicate: either a raw expr.Compile
// expression (exprSrc non-empty), a func-call predicate (contains/
// starts-with), or a key/operator/value comparison.
type filterSpec struct {
	exprSrc string
	key     string
	op      string
	val     string
	isFunc  bool
}

// parseSegment splits a path segment into its bare key, an optional
// filter, and an optional literal index — "book[price>10]" yields
// ("book", {price,>,10}, -1); "user[2]" yields ("user", nil, 2).
func parseSegment(seg string) (key string, fp *filterSpec, idx int) {
	idx = -1
	key = seg
	i := strings.Index(seg, "[")
	if i <= 0 || !strings.HasSuffix(seg, "]") {
		return key, nil, idx
	}
	key = seg[:i]
	inside := seg[i+1 : len(seg)-1]

	if strings.HasPrefix(inside, "?") {
		return key, &filterSpec{exprSrc: strings.TrimPrefix(inside, "?")}, -1
	}

	if p := strings.Index(inside, "("); p > 0 && strings.HasSuffix(inside, ")") {
		funcName := strings.TrimSpace(inside[:p])
		args := strings.Split(inside[p+1:len(inside)-1], ",")
		if len(args) == 2 {
			fKey := strings.TrimSpace(args[0])
			fVal := strings.Trim(strings.TrimSpace(args[1]), `'"`)
			return key, &filterSpec{key: fKey, op: funcName, val: fVal, isFunc: true}, -1
		}
	}

	// Order matters: two-character operators must be checked before their
	// single-character prefixes (">=" before ">", etc).
	for _, op := range []string{"!=", ">=", "<=", "~", "=", ">", "<"} {
		if strings.Contains(inside, op) {
			parts := strings.SplitN(inside, op, 2)
			fKey := strings.TrimSpace(parts[0])
			fVal := strings.Trim(strings.TrimSpace(parts[1]), `'"`)
			return key, &filterSpec{key: fKey, op: op, val: fVal}, -1
		}
	}

	if v, err := strconv.Atoi(inside); err == nil {
		idx = v
	}
	return key, nil, idx
}

func matchFilter(item any, fp *filterSpec) (bool, error) {
	if fp.exprSrc != "" {
		return evalExprFilter(item, fp.exprSrc)
	}

	m, ok := asMap(item)
	if !ok {
		return false, nil
	}
	actual, found := m[fp.key]
	if !found {
		actual, found = m["$attr:"+fp.key]
	}
	if !found {
		return false, nil
	}
	actualStr := fmt.Sprintf("%v", actual)

	if fp.isFunc {
		switch fp.op {
		case "contains":
			return strings.Contains(actualStr, fp.val), nil
		case "starts-with":
			return strings.HasPrefix(actualStr, fp.val), nil
		}
		return false, nil
	}

	switch fp.op {
	case "=":
		return actualStr == fp.val, nil
	case "!=":
		return actualStr != fp.val, nil
	case "~":
		return regexMatch(actualStr, fp.val)
	case ">", "<", ">=", "<=":
		numV, errV := strconv.ParseFloat(actualStr, 64)
		targetV, errT := strconv.ParseFloat(fp.val, 64)
		if errV != nil || errT != nil {
			return false, nil
		}
		switch fp.op {
		case ">":
			return numV > targetV, nil
		case "<":
			return numV < targetV, nil
		case ">=":
			return numV >= targetV, nil
		case "<=":
			return numV <= targetV, nil
		}
	}
	return false, nil
}

var regexCacheMu sync.Mutex
var regexCache = map[string]*regexp2.Regexp{}

// regexMatch implements the "~" filter operator: dlclark/regexp2 gives it
// .NET-flavored regex (lookaround, named groups) rather than RE2's
// restricted grammar.
func regexMatch(s, pattern string) (bool, error) {
	regexCacheMu.Lock()
	re, ok := regexCache[pattern]
	regexCacheMu.Unlock()
	if !ok {
		compiled, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return false, xmlerr.Wrap(xmlerr.Custom, err)
		}
		re = compiled
		regexCacheMu.Lock()
		regexCache[pattern] = re
		regexCacheMu.Unlock()
	}
	matched, err := re.MatchString(s)
	if err != nil {
		return false, xmlerr.Wrap(xmlerr.Custom, err)
	}
	return matched, nil
}

// evalExprFilter backs the "[?...]" form: item's fields (attribute keys
// with their "$attr:" prefix stripped) become the expr environment, so
// "book[?price > 10 && lang == 'en']" reads like a Go expression over
// the record's own field names.
func evalExprFilter(item any, exprSrc string) (bool, error) {
	m, _ := asMap(item)
	env := exprEnv(m)
	program, err := expr.Compile(exprSrc, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, xmlerr.Wrap(xmlerr.Custom, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, xmlerr.Wrap(xmlerr.Custom, err)
	}
	b, _ := out.(bool)
	return b, nil
}

// exprEnv builds the environment an expr predicate runs against: keys
// lose their "$attr:" prefix (an attribute reads the same as a child
// element), and a string that parses cleanly as a number is handed over
// as a float64 — attribute values decode as plain text, and a predicate
// like "price > 10" needs a number on both sides of the comparison, not
// a string and an int.
func exprEnv(m map[string]any) map[string]any {
	env := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				env[strings.TrimPrefix(k, "$attr:")] = f
				continue
			}
		}
		env[strings.TrimPrefix(k, "$attr:")] = v
	}
	return env
}

// QueryFunction is a named predicate usable as "func:name" inside a path
// segment, tested against each candidate key (not its value).
type QueryFunction func(key string) bool

var (
	queryFunctionsMu sync.RWMutex
	queryFunctions   = map[string]QueryFunction{}
)

// RegisterQueryFunction adds a custom "func:name" predicate for later use
// in Query/QueryAll paths, e.g. RegisterQueryFunction("isSKU", ...) then
// "items/func:isSKU/price".
func RegisterQueryFunction(name string, fn QueryFunction) {
	queryFunctionsMu.Lock()
	defer queryFunctionsMu.Unlock()
	queryFunctions[name] = fn
}

func getQueryFunction(name string) (QueryFunction, bool) {
	queryFunctionsMu.RLock()
	defer queryFunctionsMu.RUnlock()
	fn, ok := queryFunctions[name]
	return fn, ok
}

func init() {
	RegisterQueryFunction("isNumeric", func(key string) bool {
		if key == "" {
			return false
		}
		for _, r := range key {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	RegisterQueryFunction("isAlpha", func(key string) bool {
		if key == "" {
			return false
		}
		for _, r := range key {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
				return false
			}
		}
		return true
	})
	RegisterQueryFunction("hasUnderscore", func(key string) bool {
		return strings.Contains(key, "_")
	})
	RegisterQueryFunction("hasHyphen", func(key string) bool {
		return strings.Contains(key, "-")
	})
}
