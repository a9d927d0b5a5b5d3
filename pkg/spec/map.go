package spec

import (
	"fmt"
	"strconv"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// MapTypeSpec is the spec for map<k, v> types. The host form is
// map[any]any; binary keys surface as strings so that host maps stay
// comparable. Encoding iterates entries in sorted key order when the
// keys are sortable, making output deterministic.
type MapTypeSpec struct {
	// KeySpec is the spec of the key type.
	KeySpec TypeSpec

	// ValueSpec is the spec of the value type.
	ValueSpec TypeSpec

	linked bool
}

func (s *MapTypeSpec) Name() string {
	return "map<" + s.KeySpec.Name() + ", " + s.ValueSpec.Name() + ">"
}

func (s *MapTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TMap
}

func (s *MapTypeSpec) Link(scope *Scope) (TypeSpec, error) {
	if !s.linked {
		s.linked = true
		key, err := s.KeySpec.Link(scope)
		if err != nil {
			return nil, err
		}
		s.KeySpec = key
		value, err := s.ValueSpec.Link(scope)
		if err != nil {
			return nil, err
		}
		s.ValueSpec = value
	}
	return s, nil
}

func (s *MapTypeSpec) coerce(value any) (map[any]any, error) {
	if m, ok := value.(map[any]any); ok {
		return m, nil
	}
	return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", value, value)
}

// hostKey converts a decoded key into a form usable as a Go map key.
func (s *MapTypeSpec) hostKey(key any) (any, error) {
	if b, ok := key.([]byte); ok {
		return string(b), nil
	}
	if !isComparableHost(key) {
		return nil, huckleberry.NewTypeMismatchError(
			s.Name(), "key of type %T cannot be used in a host map", key,
		)
	}
	return key, nil
}

func (s *MapTypeSpec) Validate(value any) error {
	m, err := s.coerce(value)
	if err != nil {
		return err
	}
	for k, v := range m {
		if err := s.KeySpec.Validate(k); err != nil {
			return err
		}
		if err := s.ValueSpec.Validate(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *MapTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	m, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	pairs := make([]huckleberry.MapPair, 0, len(m))
	for _, e := range sortedPairs(m) {
		k, err := s.KeySpec.ToWire(e.key)
		if err != nil {
			return nil, err
		}
		v, err := s.ValueSpec.ToWire(e.value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, huckleberry.MapPair{Key: k, Value: v})
	}
	return &huckleberry.MapValue{
		KeyType:   s.KeySpec.TypeCode(),
		ValueType: s.ValueSpec.TypeCode(),
		Pairs:     pairs,
	}, nil
}

func (s *MapTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	mv := w.(*huckleberry.MapValue)
	out := make(map[any]any, len(mv.Pairs))
	for _, p := range mv.Pairs {
		k, err := s.KeySpec.FromWire(p.Key)
		if err != nil {
			return nil, err
		}
		k, err = s.hostKey(k)
		if err != nil {
			return nil, err
		}
		v, err := s.ValueSpec.FromWire(p.Value)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ToPrimitive renders a map as a JSON-style object: keys are
// stringified per the key spec and values converted recursively.
func (s *MapTypeSpec) ToPrimitive(value any) (any, error) {
	m, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		kp, err := s.KeySpec.ToPrimitive(k)
		if err != nil {
			return nil, err
		}
		ks, err := primitiveKeyString(kp)
		if err != nil {
			return nil, huckleberry.NewTypeMismatchError(s.Name(), "%v", err)
		}
		vp, err := s.ValueSpec.ToPrimitive(v)
		if err != nil {
			return nil, err
		}
		out[ks] = vp
	}
	return out, nil
}

func (s *MapTypeSpec) FromPrimitive(p any) (any, error) {
	switch p := p.(type) {
	case map[string]any:
		out := make(map[any]any, len(p))
		for k, v := range p {
			if err := s.fromPrimitivePair(out, k, v); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[any]any:
		// Constant maps in the IDL arrive with already-typed keys.
		out := make(map[any]any, len(p))
		for k, v := range p {
			if err := s.fromPrimitivePair(out, k, v); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", p, p)
	}
}

func (s *MapTypeSpec) fromPrimitivePair(out map[any]any, rawKey, rawValue any) error {
	if str, ok := rawKey.(string); ok {
		if parsed, ok := parsePrimitiveKey(s.KeySpec, str); ok {
			rawKey = parsed
		}
	}
	k, err := s.KeySpec.FromPrimitive(rawKey)
	if err != nil {
		return err
	}
	k, err = s.hostKey(k)
	if err != nil {
		return err
	}
	v, err := s.ValueSpec.FromPrimitive(rawValue)
	if err != nil {
		return err
	}
	out[k] = v
	return nil
}

func (s *MapTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	h := r.ReadMapBegin()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if h.KeyType != s.KeySpec.TypeCode() || h.ValueType != s.ValueSpec.TypeCode() {
		return nil, huckleberry.NewTypeMismatchError(
			s.Name(), "wire entry types map<%s, %s> do not match",
			h.KeyType, h.ValueType,
		)
	}
	out := make(map[any]any, h.Size)
	for i := int32(0); i < h.Size; i++ {
		k, err := s.KeySpec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		k, err = s.hostKey(k)
		if err != nil {
			return nil, err
		}
		v, err := s.ValueSpec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (s *MapTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	m, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteMapBegin(huckleberry.MapHeader{
		KeyType:   s.KeySpec.TypeCode(),
		ValueType: s.ValueSpec.TypeCode(),
		Size:      int32(len(m)),
	})
	for _, e := range sortedPairs(m) {
		if err := s.KeySpec.WriteTo(w, e.key); err != nil {
			return err
		}
		if err := s.ValueSpec.WriteTo(w, e.value); err != nil {
			return err
		}
	}
	return w.Err()
}

// primitiveKeyString renders a primitive key as a JSON object key.
func primitiveKeyString(k any) (string, error) {
	switch k := k.(type) {
	case string:
		return k, nil
	case bool:
		return strconv.FormatBool(k), nil
	case []byte:
		return string(k), nil
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), nil
	default:
		if i, ok := toInt64(k); ok {
			return strconv.FormatInt(i, 10), nil
		}
		return "", fmt.Errorf("key of type %T has no object key form", k)
	}
}

// parsePrimitiveKey parses a JSON object key back into the key spec's
// domain. Returns false when the string should be handed to the key
// spec as-is.
func parsePrimitiveKey(keySpec TypeSpec, s string) (any, bool) {
	switch keySpec.TypeCode() {
	case huckleberry.TBool:
		switch s {
		case "true":
			return true, true
		case "false":
			return false, true
		}
		return nil, false
	case huckleberry.TByte, huckleberry.TI16, huckleberry.TI32, huckleberry.TI64:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		return nil, false
	case huckleberry.TDouble:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		return nil, false
	default:
		return nil, false
	}
}
