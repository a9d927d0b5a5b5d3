package spec

import (
	"bytes"
	"math"
	"sort"
)

// toInt64 coerces any Go integer into an int64. Floats are accepted
// only when they carry an exact integral value, which is how integers
// arrive from JSON-decoded primitive forms.
func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return toInt64(float64(v))
	default:
		return 0, false
	}
}

// toFloat64 coerces any Go numeric value into a float64.
func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

// hostEqual reports deep equality of two host values.
func hostEqual(a, b any) bool {
	switch a := a.(type) {
	case []byte:
		bb, ok := b.([]byte)
		return ok && bytes.Equal(a, bb)
	case []any:
		bb, ok := b.([]any)
		if !ok || len(a) != len(bb) {
			return false
		}
		for i := range a {
			if !hostEqual(a[i], bb[i]) {
				return false
			}
		}
		return true
	case map[any]any:
		bb, ok := b.(map[any]any)
		if !ok || len(a) != len(bb) {
			return false
		}
		for k, v := range a {
			bv, ok := bb[k]
			if !ok || !hostEqual(v, bv) {
				return false
			}
		}
		return true
	case *Struct:
		bb, ok := b.(*Struct)
		return ok && a.Equal(bb)
	default:
		// Numeric host values compare across widths: a field
		// constructed with int 5 equals its decoded int32 form.
		if ai, ok := toInt64(a); ok {
			if bi, ok := toInt64(b); ok {
				return ai == bi
			}
		}
		if af, ok := toFloat64(a); ok {
			if bf, ok := toFloat64(b); ok {
				return af == bf
			}
		}
		return a == b
	}
}

// copyHostValue deep-copies a host value so that mutation of a
// defaulted field does not leak across instances.
func copyHostValue(v any) any {
	switch v := v.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = copyHostValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(v))
		for k, e := range v {
			out[k] = copyHostValue(e)
		}
		return out
	case *Struct:
		out := &Struct{spec: v.spec, values: make(map[string]any, len(v.values))}
		for k, e := range v.values {
			out.values[k] = copyHostValue(e)
		}
		return out
	default:
		return v
	}
}

// isComparableHost reports whether a host value can be used as a Go
// map key.
func isComparableHost(v any) bool {
	switch v.(type) {
	case nil, []byte, []any, map[any]any:
		return false
	case *Struct:
		// Pointer comparison would miss structurally equal values.
		return false
	default:
		return true
	}
}

// sortedPairs returns the map's entries sorted by key when every key
// is a string, bool, integer, or float, and in arbitrary order
// otherwise. A string or bool key does not order against a key of
// another kind. Deterministic output makes encodings reproducible.
func sortedPairs(m map[any]any) []mapEntry {
	entries := make([]mapEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, mapEntry{key: k, value: v})
	}
	sortable := true
	for _, e := range entries {
		switch e.key.(type) {
		case string, bool, float64, float32:
		default:
			if _, ok := toInt64(e.key); !ok {
				sortable = false
			}
		}
		if !sortable {
			break
		}
	}
	if sortable {
		sort.SliceStable(entries, func(i, j int) bool {
			return lessKey(entries[i].key, entries[j].key)
		})
	}
	return entries
}

type mapEntry struct {
	key   any
	value any
}

func lessKey(a, b any) bool {
	switch a := a.(type) {
	case string:
		if b, ok := b.(string); ok {
			return a < b
		}
	case bool:
		if b, ok := b.(bool); ok {
			return !a && b
		}
	}
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af < bf
	}
	return false
}
