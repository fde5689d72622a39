package yahoo

import (
	"sort"
	"strconv"
)

// Flatten collapses the fragment encoding Yahoo uses in its JSON responses
// without renaming any field:
//
//   - index maps {"0": a, "1": b, "count": 2} become lists [a, b]
//   - arrays of fragments [{"team_key": ..}, [{"name": ..}], {"team_points": ..}]
//     become one merged object, as long as no key repeats
//
// Arrays whose fragments share keys ([{"manager": ..}, {"manager": ..}]) stay
// lists. A one-element list of objects is indistinguishable from a fragment
// array and is merged, so readers accept both {"manager": ..} and
// [{"manager": ..}]. Empty fragments nested in fragment arrays are dropped.
func Flatten(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if list, ok := indexMap(t); ok {
			return list
		}
		out := make(map[string]interface{}, len(t))
		for k, inner := range t {
			out[k] = Flatten(inner)
		}
		return out
	case []interface{}:
		if merged, ok := mergeFragments(t); ok {
			return merged
		}
		out := make([]interface{}, 0, len(t))
		for _, inner := range t {
			out = append(out, Flatten(inner))
		}
		return out
	default:
		return v
	}
}

// indexMap converts {"0": .., "1": .., "count": n} into a list. Every key
// other than "count" must be a contiguous non-negative integer from 0.
func indexMap(m map[string]interface{}) ([]interface{}, bool) {
	keys := make([]int, 0, len(m))
	for k := range m {
		if k == "count" {
			continue
		}
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return nil, false
		}
		keys = append(keys, n)
	}
	_, hasCount := m["count"]
	if len(keys) == 0 && !hasCount {
		return nil, false
	}
	sort.Ints(keys)
	for i, n := range keys {
		if i != n {
			return nil, false
		}
	}
	out := make([]interface{}, 0, len(keys))
	for _, n := range keys {
		out = append(out, Flatten(m[strconv.Itoa(n)]))
	}
	return out, true
}

// mergeFragments merges an array of object fragments (possibly nested one
// array deep) into a single object.
func mergeFragments(arr []interface{}) (map[string]interface{}, bool) {
	var frags []map[string]interface{}
	for _, el := range arr {
		switch t := el.(type) {
		case map[string]interface{}:
			frags = append(frags, t)
		case []interface{}:
			for _, inner := range t {
				m, ok := inner.(map[string]interface{})
				if !ok {
					if isEmpty(inner) {
						continue
					}
					return nil, false
				}
				frags = append(frags, m)
			}
		default:
			return nil, false
		}
	}
	if len(frags) == 0 {
		return nil, false
	}

	out := make(map[string]interface{})
	for _, f := range frags {
		for k, v := range f {
			if _, dup := out[k]; dup {
				return nil, false
			}
			out[k] = Flatten(v)
		}
	}
	return out, true
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
