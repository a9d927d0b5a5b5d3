package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// SetTypeSpec is the spec for set<e> types. The host form is []any;
// deserialization deduplicates elements by host equality and preserves
// first-seen order.
type SetTypeSpec struct {
	// ValueSpec is the spec of the element type.
	ValueSpec TypeSpec

	linked bool
}

func (s *SetTypeSpec) Name() string {
	return "set<" + s.ValueSpec.Name() + ">"
}

func (s *SetTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TSet
}

func (s *SetTypeSpec) Link(scope *Scope) (TypeSpec, error) {
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

func (s *SetTypeSpec) coerce(value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}
	return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", value, value)
}

func (s *SetTypeSpec) Validate(value any) error {
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

func (s *SetTypeSpec) ToWire(value any) (huckleberry.Value, error) {
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
	return &huckleberry.SetValue{
		ValueType: s.ValueSpec.TypeCode(),
		Values:    values,
	}, nil
}

func (s *SetTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	sv := w.(*huckleberry.SetValue)
	items := newDeduper(len(sv.Values))
	for _, v := range sv.Values {
		item, err := s.ValueSpec.FromWire(v)
		if err != nil {
			return nil, err
		}
		items.add(item)
	}
	return items.values, nil
}

func (s *SetTypeSpec) ToPrimitive(value any) (any, error) {
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

func (s *SetTypeSpec) FromPrimitive(p any) (any, error) {
	raw, ok := p.([]any)
	if !ok {
		return nil, huckleberry.NewTypeMismatchError(s.Name(), "cannot convert %v (%T)", p, p)
	}
	items := newDeduper(len(raw))
	for _, item := range raw {
		v, err := s.ValueSpec.FromPrimitive(item)
		if err != nil {
			return nil, err
		}
		items.add(v)
	}
	return items.values, nil
}

func (s *SetTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	h := r.ReadSetBegin()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if h.ValueType != s.ValueSpec.TypeCode() {
		return nil, huckleberry.NewTypeMismatchError(
			s.Name(), "wire element type %s does not match %s",
			h.ValueType, s.ValueSpec.TypeCode(),
		)
	}
	items := newDeduper(int(h.Size))
	for i := int32(0); i < h.Size; i++ {
		item, err := s.ValueSpec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		items.add(item)
	}
	return items.values, nil
}

func (s *SetTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	items, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteSetBegin(huckleberry.SetHeader{
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

// deduper accumulates set elements, dropping duplicates by host
// equality. Comparable values dedupe through a map; the rest fall
// back to a linear scan.
type deduper struct {
	values []any
	seen   map[any]struct{}
}

func newDeduper(capacity int) *deduper {
	return &deduper{
		values: make([]any, 0, capacity),
		seen:   make(map[any]struct{}, capacity),
	}
}

func (d *deduper) add(v any) {
	if isComparableHost(v) {
		if _, dup := d.seen[v]; dup {
			return
		}
		d.seen[v] = struct{}{}
		d.values = append(d.values, v)
		return
	}
	for _, existing := range d.values {
		if hostEqual(existing, v) {
			return
		}
	}
	d.values = append(d.values, v)
}
