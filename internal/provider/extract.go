// Package provider normalizes loosely typed values from upstream API
// documents. Yahoo sends most numbers as strings ("16", "1562.40"), older
// seasons sometimes as numbers, and some fields as {"total": ...} objects.
package provider

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric value from the formats seen in raw
// documents: JSON numbers, numeric strings, and objects carrying the value
// under "total" or "value".
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
		return 0, false
	case map[string]interface{}:
		for _, key := range []string{"total", "value"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractInt is ExtractValue restricted to whole numbers.
func ExtractInt(val interface{}) (int, bool) {
	f, ok := ExtractValue(val)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ExtractString returns a non-empty string for string and numeric values.
func ExtractString(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int, int64:
		return fmt.Sprint(v), true
	}
	return "", false
}

// ExtractBool understands JSON booleans and Yahoo's 0/1 flags.
func ExtractBool(val interface{}) (bool, bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y":
			return true, true
		case "0", "false", "no", "n":
			return false, true
		}
	case float64:
		return v != 0, true
	}
	return false, false
}

// Path walks nested objects by key and returns the value at the end, or
// nil when any step is missing or not an object.
func Path(v interface{}, keys ...string) interface{} {
	cur := v
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

// First returns the first non-nil value among the given paths. Used where
// the same field moved between seasons.
func First(v interface{}, paths ...[]string) interface{} {
	for _, p := range paths {
		if got := Path(v, p...); got != nil {
			return got
		}
	}
	return nil
}
