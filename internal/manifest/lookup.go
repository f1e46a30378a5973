package manifest

import "encoding/json"

// Lookup walks obj through nested JSON objects. It reports false when any
// segment is missing or a non-object is met on the way; it never panics.
// A present JSON null yields (nil, true).
func Lookup(obj any, path ...string) (any, bool) {
	cur := obj
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString returns the string at path or def.
func LookupString(obj any, def string, path ...string) string {
	if v, ok := Lookup(obj, path...); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// LookupBool returns the bool at path or def.
func LookupBool(obj any, def bool, path ...string) bool {
	if v, ok := Lookup(obj, path...); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// LookupInt64 returns the number at path or def. Fractions are truncated.
func LookupInt64(obj any, def int64, path ...string) int64 {
	v, ok := Lookup(obj, path...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	return def
}

// LookupSlice returns the array at path, or nil.
func LookupSlice(obj any, path ...string) []any {
	if v, ok := Lookup(obj, path...); ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}

// LookupMap returns the object at path, or nil.
func LookupMap(obj any, path ...string) map[string]any {
	if v, ok := Lookup(obj, path...); ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// Present reports whether path exists and is not JSON null.
func Present(obj any, path ...string) bool {
	v, ok := Lookup(obj, path...)
	return ok && v != nil
}
