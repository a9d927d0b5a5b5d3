package spec

import (
	"strings"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// UnionTypeSpec is the spec for union types. The wire shape is
// identical to a struct; at most one field may be present, and unless
// AllowEmpty is set, exactly one must be.
type UnionTypeSpec struct {
	// UnionName is the declared name of the union.
	UnionName string

	fields []*FieldSpec
	index  map[int16]*FieldSpec

	// AllowEmpty permits a union with no field set. Function result
	// specs of void functions allow this so that an empty union means
	// "void success".
	AllowEmpty bool

	// Response metadata, set for implicit function result unions.
	isResponse bool
	funcName   string
	returnSpec TypeSpec

	Line   int
	linked bool
}

// CompileUnion builds a UnionTypeSpec from its AST node. Union fields
// must not declare requiredness or default values.
func CompileUnion(d *idl.Union) (*UnionTypeSpec, error) {
	for _, f := range d.Fields {
		if f.Requiredness != idl.Unspecified {
			return nil, compileErrorf(f.Line,
				"field %q of union %q is %q; unions cannot specify requiredness",
				f.Name, d.Name, f.Requiredness)
		}
		if f.Default != nil {
			return nil, compileErrorf(f.Line,
				"field %q of union %q has a default value; "+
					"fields of unions cannot have default values",
				f.Name, d.Name)
		}
	}
	fields, err := compileFieldBlock(d.Name, d.Fields, false)
	if err != nil {
		return nil, err
	}
	return &UnionTypeSpec{UnionName: d.Name, fields: fields, Line: d.Line}, nil
}

func (s *UnionTypeSpec) Name() string { return s.UnionName }

func (s *UnionTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TStruct
}

// Fields returns the field specs in declaration order.
func (s *UnionTypeSpec) Fields() []*FieldSpec {
	return s.fields
}

// IsResponse reports whether this is the implicit result union of a
// service function.
func (s *UnionTypeSpec) IsResponse() bool {
	return s.isResponse
}

// FunctionName returns the name of the function this implicit union
// belongs to, or "".
func (s *UnionTypeSpec) FunctionName() string {
	return s.funcName
}

// ReturnSpec returns the spec of the function's return type, or nil
// for void results and plain unions.
func (s *UnionTypeSpec) ReturnSpec() TypeSpec {
	return s.returnSpec
}

func (s *UnionTypeSpec) errorLike() bool { return false }

func (s *UnionTypeSpec) Link(scope *Scope) (TypeSpec, error) {
	if s.linked {
		return s, nil
	}
	s.linked = true

	for _, f := range s.fields {
		if err := f.Link(scope); err != nil {
			return nil, err
		}
	}
	if s.returnSpec != nil {
		ret, err := s.returnSpec.Link(scope)
		if err != nil {
			return nil, err
		}
		s.returnSpec = ret
	}
	s.index = make(map[int16]*FieldSpec, len(s.fields))
	for _, f := range s.fields {
		s.index[f.ID] = f
	}
	return s, nil
}

// Build constructs a union value from named fields. At most one field
// may be non-nil; unless the union allows empty values, exactly one
// must be.
func (s *UnionTypeSpec) Build(fields map[string]any) (*Struct, error) {
	values := make(map[string]any, 1)
	assigned := ""
	for name, value := range fields {
		f, ok := s.fieldByName(name)
		if !ok {
			return nil, huckleberry.NewTypeMismatchError(s.UnionName,
				"got an unexpected field %q", name)
		}
		if value == nil {
			continue
		}
		if assigned != "" {
			both := sortedFieldNames(map[string]any{assigned: nil, name: nil})
			return nil, huckleberry.NewTypeMismatchError(s.UnionName,
				"received multiple values (%s); "+
					"unions can have at most one field populated",
				strings.Join(both, ", "))
		}
		if err := f.Spec.Validate(value); err != nil {
			return nil, err
		}
		values[name] = value
		assigned = name
	}
	if assigned == "" && len(s.fields) > 0 && !s.AllowEmpty {
		return nil, huckleberry.NewTypeMismatchError(s.UnionName,
			"did not receive any values; exactly one field is required")
	}
	return &Struct{spec: s, values: values}, nil
}

func (s *UnionTypeSpec) fieldByName(name string) (*FieldSpec, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Validate accepts values constructed from this exact spec and
// re-checks the cardinality rule.
func (s *UnionTypeSpec) Validate(value any) error {
	v, ok := value.(*Struct)
	if !ok || v.spec != fieldedSpec(s) {
		return huckleberry.NewTypeMismatchError(s.UnionName,
			"cannot convert %v (%T)", value, value)
	}
	if len(v.values) > 1 {
		return huckleberry.NewTypeMismatchError(s.UnionName,
			"unions can have at most one field populated, got %d", len(v.values))
	}
	if len(v.values) == 0 && len(s.fields) > 0 && !s.AllowEmpty {
		return huckleberry.NewTypeMismatchError(s.UnionName,
			"exactly one field is required")
	}
	return nil
}

func (s *UnionTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	if err := s.Validate(value); err != nil {
		return nil, err
	}
	v := value.(*Struct)
	fields := make([]huckleberry.FieldValue, 0, 1)
	for _, f := range s.fields {
		fieldValue, ok := v.values[f.Name]
		if !ok {
			continue
		}
		wv, err := f.Spec.ToWire(fieldValue)
		if err != nil {
			return nil, err
		}
		fields = append(fields, huckleberry.FieldValue{
			ID:    f.ID,
			Type:  f.Spec.TypeCode(),
			Value: wv,
		})
	}
	return huckleberry.NewStructValue(fields), nil
}

func (s *UnionTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	sv := w.(*huckleberry.StructValue)
	if s.isResponse {
		if err := s.checkKnownResult(sv); err != nil {
			return nil, err
		}
	}
	values := make(map[string]any, 1)
	for _, f := range s.fields {
		fv, ok := sv.Get(f.ID, f.Spec.TypeCode())
		if !ok {
			continue
		}
		value, err := f.Spec.FromWire(fv.Value)
		if err != nil {
			return nil, err
		}
		values[f.Name] = value
	}
	return s.Build(values)
}

// checkKnownResult rejects result structs carrying a field whose ID is
// neither 0 (success) nor a declared exception. Unknown fields with
// ID 0 are tolerated for future return-type widenings.
func (s *UnionTypeSpec) checkKnownResult(sv *huckleberry.StructValue) error {
	for _, f := range sv.Fields() {
		if f.ID == 0 {
			continue
		}
		if _, ok := s.index[f.ID]; !ok {
			return &huckleberry.UnknownExceptionError{
				Message:  "unrecognized exception field " + s.UnionName,
				Response: sv,
			}
		}
	}
	return nil
}

func (s *UnionTypeSpec) ToPrimitive(value any) (any, error) {
	if err := s.Validate(value); err != nil {
		return nil, err
	}
	v := value.(*Struct)
	out := make(map[string]any, len(v.values))
	for _, f := range s.fields {
		fieldValue, ok := v.values[f.Name]
		if !ok {
			continue
		}
		p, err := f.Spec.ToPrimitive(fieldValue)
		if err != nil {
			return nil, err
		}
		out[f.Name] = p
	}
	return out, nil
}

func (s *UnionTypeSpec) FromPrimitive(p any) (any, error) {
	raw, err := objectFields(s, p)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(raw))
	for name, value := range raw {
		f, ok := s.fieldByName(name)
		if !ok {
			return nil, huckleberry.NewTypeMismatchError(s.UnionName,
				"got an unexpected field %q", name)
		}
		if value == nil {
			continue
		}
		v, err := f.Spec.FromPrimitive(value)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return s.Build(values)
}

// ReadFrom constructs a union value directly from the reader. For
// result unions, a field with an unknown non-zero ID raises
// UnknownExceptionError carrying the remaining wire fields.
func (s *UnionTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	values := make(map[string]any, 1)
	for {
		h, more := r.ReadFieldBegin()
		if !more {
			break
		}
		f, known := s.index[h.ID]
		if known && f.Spec.TypeCode() == h.Type {
			value, err := f.Spec.ReadFrom(r)
			if err != nil {
				return nil, err
			}
			values[f.Name] = value
			continue
		}
		if s.isResponse && !known && h.ID != 0 {
			return nil, s.unknownException(r, h)
		}
		r.Skip(h.Type)
		if r.Err() != nil {
			return nil, r.Err()
		}
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return s.Build(values)
}

// unknownException materializes the offending field and the rest of
// the result struct so that the error can carry the wire image.
func (s *UnionTypeSpec) unknownException(r *huckleberry.BinaryReader, h huckleberry.FieldHeader) error {
	fields := []huckleberry.FieldValue{}
	value := r.ReadValue(h.Type)
	if r.Err() != nil {
		return r.Err()
	}
	fields = append(fields, huckleberry.FieldValue{ID: h.ID, Type: h.Type, Value: value})
	for {
		next, more := r.ReadFieldBegin()
		if !more {
			break
		}
		v := r.ReadValue(next.Type)
		if r.Err() != nil {
			return r.Err()
		}
		fields = append(fields, huckleberry.FieldValue{ID: next.ID, Type: next.Type, Value: v})
	}
	if r.Err() != nil {
		return r.Err()
	}
	return &huckleberry.UnknownExceptionError{
		Message:  "unrecognized exception in " + s.UnionName,
		Response: huckleberry.NewStructValue(fields),
	}
}

func (s *UnionTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	if err := s.Validate(value); err != nil {
		return err
	}
	v := value.(*Struct)
	for _, f := range s.fields {
		fieldValue, ok := v.values[f.Name]
		if !ok {
			continue
		}
		w.WriteFieldBegin(huckleberry.FieldHeader{
			Type: f.Spec.TypeCode(),
			ID:   f.ID,
		})
		if err := f.Spec.WriteTo(w, fieldValue); err != nil {
			return err
		}
	}
	w.WriteStructEnd()
	return w.Err()
}
