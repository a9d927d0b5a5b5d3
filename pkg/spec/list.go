package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// ListTypeSpec is the spec for list<e> types. The host form is []any,
// preserving order.
type ListTypeSpec struct {
	// ValueSpec is the spec of the element type.
	ValueSpec TypeSpec

	linked bool
}

func (s *ListTypeSpec) Name() string {
	return "list<" + s.ValueSpec.Name() + ">"
}

func (s *ListTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TList
}

func (s *ListTypeSpec) Link(scope *Scope) (TypeSpec, error) {
	if !s.linked {
		s.linked = true
		elem, err := s.ValueSpec.Link(scope)
		if err != nil {
			return nil, err
		}
		s.ValueSpec = elem
	}
	return s, nil
}

func (s *ListTypeSpec) coerce(value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}
	return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", value, value)
}

func (s *ListTypeSpec) Validate(value any) error {
	items, err := s.coerce(value)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.ValueSpec.Validate(item); err != nil {
			return err
		}
	}
	return nil
}

func (s *ListTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	items, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	values := make([]huckleberry.Value, len(items))
	for i, item := range items {
		v, err := s.ValueSpec.ToWire(item)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &huckleberry.ListValue{
		ValueType: s.ValueSpec.TypeCode(),
		Values:    values,
	}, nil
}

func (s *ListTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	lv := w.(*huckleberry.ListValue)
	items := make([]any, len(lv.Values))
	for i, v := range lv.Values {
		item, err := s.ValueSpec.FromWire(v)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func (s *ListTypeSpec) ToPrimitive(value any) (any, error) {
	items, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		p, err := s.ValueSpec.ToPrimitive(item)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (s *ListTypeSpec) FromPrimitive(p any) (any, error) {
	items, ok := p.([]any)
	if !ok {
		return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", p, p)
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := s.ValueSpec.FromPrimitive(item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *ListTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	h := r.ReadListBegin()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if h.ValueType != s.ValueSpec.TypeCode() {
		return nil, huckleberry.NewTypeMismatchError(
			s.Name(), "wire element type %s does not match %s",
			h.ValueType, s.ValueSpec.TypeCode(),
		)
	}
	items := make([]any, 0, h.Size)
	for i := int32(0); i < h.Size; i++ {
		item, err := s.ValueSpec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *ListTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	items, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteListBegin(huckleberry.ListHeader{
		ValueType: s.ValueSpec.TypeCode(),
		Size:      int32(len(items)),
	})
	for _, item := range items {
		if err := s.ValueSpec.WriteTo(w, item); err != nil {
			return err
		}
	}
	return w.Err()
}
