package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// fieldedSpec is implemented by the struct-shaped specs (struct,
// exception, union) that construct Struct host values.
type fieldedSpec interface {
	TypeSpec

	// Fields returns the field specs in declaration order.
	Fields() []*FieldSpec

	errorLike() bool
}

// Struct is the host representation of a struct, union, or exception
// value. Instances are created through their spec's New or Build and
// are validated at construction; values reaching serialization are
// presumed valid.
type Struct struct {
	spec   fieldedSpec
	values map[string]any
}

// Spec returns the type spec this value was constructed from.
func (s *Struct) Spec() TypeSpec {
	return s.spec
}

// Get returns the value of the named field and whether it is present.
func (s *Struct) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Field returns the value of the named field, or nil when absent.
func (s *Struct) Field(name string) any {
	return s.values[name]
}

// Len returns the number of present fields.
func (s *Struct) Len() int {
	return len(s.values)
}

// Equal reports whether two values share a spec and have equal
// fields.
func (s *Struct) Equal(o *Struct) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.spec != o.spec || len(s.values) != len(o.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := o.values[k]
		if !ok || !hostEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders the value with its present fields in declaration
// order.
func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString(s.spec.Name())
	b.WriteByte('(')
	first := true
	for _, f := range s.spec.Fields() {
		v, ok := s.values[f.Name]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s=%v", f.Name, v)
	}
	b.WriteByte(')')
	return b.String()
}

// AsError exposes an exception value as an error. It returns nil for
// values of non-exception specs.
func (s *Struct) AsError() error {
	if !s.spec.errorLike() {
		return nil
	}
	return &thriftException{value: s}
}

// thriftException adapts an exception-spec Struct to the error
// interface.
type thriftException struct {
	value *Struct
}

func (e *thriftException) Error() string {
	return e.value.String()
}

// Value returns the underlying exception value.
func (e *thriftException) Value() *Struct {
	return e.value
}

// StructTypeSpec is the spec for struct and exception types.
type StructTypeSpec struct {
	// StructName is the declared name of the struct.
	StructName string

	fields []*FieldSpec
	index  map[int16]*FieldSpec

	// ctor holds the fields in constructor order:
	// required-without-default first, then the rest.
	ctor []*FieldSpec

	isException bool

	// Request metadata, set for implicit function argument structs.
	isRequest bool
	oneway    bool
	funcName  string

	Line   int
	linked bool
}

// CompileStruct builds a StructTypeSpec from its AST node. In strict
// mode every field must declare requiredness explicitly.
func CompileStruct(d *idl.Struct, strict bool) (*StructTypeSpec, error) {
	fields, err := compileFieldBlock(d.Name, d.Fields, strict)
	if err != nil {
		return nil, err
	}
	return &StructTypeSpec{StructName: d.Name, fields: fields, Line: d.Line}, nil
}

// CompileException builds the spec for an exception declaration: a
// struct spec whose surface is error-like.
func CompileException(d *idl.Exception, strict bool) (*StructTypeSpec, error) {
	fields, err := compileFieldBlock(d.Name, d.Fields, strict)
	if err != nil {
		return nil, err
	}
	return &StructTypeSpec{
		StructName:  d.Name,
		fields:      fields,
		isException: true,
		Line:        d.Line,
	}, nil
}

func (s *StructTypeSpec) Name() string { return s.StructName }

func (s *StructTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TStruct
}

// Fields returns the field specs in declaration order. The returned
// slice must not be modified.
func (s *StructTypeSpec) Fields() []*FieldSpec {
	return s.fields
}

// FieldByID returns the field spec with the given ID.
func (s *StructTypeSpec) FieldByID(id int16) (*FieldSpec, bool) {
	f, ok := s.index[id]
	return f, ok
}

// IsException reports whether this spec came from an exception
// declaration.
func (s *StructTypeSpec) IsException() bool {
	return s.isException
}

// IsRequest reports whether this is the implicit argument struct of a
// service function.
func (s *StructTypeSpec) IsRequest() bool {
	return s.isRequest
}

// OneWay reports whether the function this request belongs to is
// oneway.
func (s *StructTypeSpec) OneWay() bool {
	return s.oneway
}

// FunctionName returns the name of the function this implicit struct
// belongs to, or "".
func (s *StructTypeSpec) FunctionName() string {
	return s.funcName
}

func (s *StructTypeSpec) errorLike() bool {
	return s.isException
}

// Link marks the spec linked before recursing into its fields so that
// cyclic type graphs terminate.
func (s *StructTypeSpec) Link(scope *Scope) (TypeSpec, error) {
	if s.linked {
		return s, nil
	}
	s.linked = true

	for _, f := range s.fields {
		if err := f.Link(scope); err != nil {
			return nil, err
		}
	}

	s.index = make(map[int16]*FieldSpec, len(s.fields))
	for _, f := range s.fields {
		s.index[f.ID] = f
	}

	// Required fields without defaults come first so that they can be
	// passed positionally.
	s.ctor = make([]*FieldSpec, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Required && f.Default == nil {
			s.ctor = append(s.ctor, f)
		}
	}
	for _, f := range s.fields {
		if !(f.Required && f.Default == nil) {
			s.ctor = append(s.ctor, f)
		}
	}
	return s, nil
}

// New constructs a host value from positional arguments in
// constructor order: required fields without defaults first, then the
// remaining fields. Nil arguments leave their field absent.
func (s *StructTypeSpec) New(args ...any) (*Struct, error) {
	if len(args) > len(s.ctor) {
		return nil, huckleberry.NewTypeMismatchError(s.StructName,
			"takes at most %d arguments (%d given)", len(s.ctor), len(args))
	}
	values := make(map[string]any, len(args))
	for i, arg := range args {
		if arg == nil {
			continue
		}
		values[s.ctor[i].Name] = arg
	}
	return s.build(values)
}

// Build constructs a host value from named fields. Nil values leave
// their field absent.
func (s *StructTypeSpec) Build(fields map[string]any) (*Struct, error) {
	values := make(map[string]any, len(fields))
	for name, value := range fields {
		if _, ok := s.fieldByName(name); !ok {
			return nil, huckleberry.NewTypeMismatchError(s.StructName,
				"got an unexpected field %q", name)
		}
		if value == nil {
			continue
		}
		values[name] = value
	}
	return s.build(values)
}

func (s *StructTypeSpec) fieldByName(name string) (*FieldSpec, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// build applies defaults, verifies required fields, and validates
// every present value.
func (s *StructTypeSpec) build(values map[string]any) (*Struct, error) {
	for _, f := range s.fields {
		value, ok := values[f.Name]
		if !ok {
			if f.Default != nil {
				values[f.Name] = copyHostValue(f.Default)
				continue
			}
			if f.Required {
				return nil, &huckleberry.MissingRequiredError{
					Struct: s.StructName, Field: f.Name,
				}
			}
			continue
		}
		if err := f.Spec.Validate(value); err != nil {
			return nil, err
		}
	}
	return &Struct{spec: s, values: values}, nil
}

// Validate accepts values constructed from this exact spec. The
// contents were validated at construction, so only the spec identity
// and required-field presence are checked here.
func (s *StructTypeSpec) Validate(value any) error {
	v, ok := value.(*Struct)
	if !ok || v.spec != fieldedSpec(s) {
		return huckleberry.NewTypeMismatchError(s.StructName,
			"cannot convert %v (%T)", value, value)
	}
	for _, f := range s.fields {
		if f.Required {
			if _, ok := v.values[f.Name]; !ok {
				return &huckleberry.MissingRequiredError{
					Struct: s.StructName, Field: f.Name,
				}
			}
		}
	}
	return nil
}

func (s *StructTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	v, ok := value.(*Struct)
	if !ok || v.spec != fieldedSpec(s) {
		return nil, huckleberry.NewTypeMismatchError(s.StructName,
			"cannot convert %v (%T)", value, value)
	}
	fields := make([]huckleberry.FieldValue, 0, len(v.values))
	for _, f := range s.fields {
		fieldValue, ok := v.values[f.Name]
		if !ok {
			if f.Required {
				return nil, &huckleberry.MissingRequiredError{
					Struct: s.StructName, Field: f.Name,
				}
			}
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

func (s *StructTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	sv := w.(*huckleberry.StructValue)
	values := make(map[string]any, len(s.fields))
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
	return s.build(values)
}

func (s *StructTypeSpec) ToPrimitive(value any) (any, error) {
	v, ok := value.(*Struct)
	if !ok || v.spec != fieldedSpec(s) {
		return nil, huckleberry.NewTypeMismatchError(s.StructName,
			"cannot convert %v (%T)", value, value)
	}
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

func (s *StructTypeSpec) FromPrimitive(p any) (any, error) {
	raw, err := objectFields(s, p)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(raw))
	for name, value := range raw {
		f, ok := s.fieldByName(name)
		if !ok {
			return nil, huckleberry.NewTypeMismatchError(s.StructName,
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
	return s.build(values)
}

// objectFields coerces a primitive object form into string-keyed
// fields. Constant maps from the IDL arrive as map[any]any.
func objectFields(s TypeSpec, p any) (map[string]any, error) {
	switch p := p.(type) {
	case map[string]any:
		return p, nil
	case map[any]any:
		out := make(map[string]any, len(p))
		for k, v := range p {
			name, ok := k.(string)
			if !ok {
				return nil, huckleberry.NewTypeMismatchError(s.Name(),
					"field names must be strings, got %T", k)
			}
			out[name] = v
		}
		return out, nil
	default:
		return nil, huckleberry.NewTypeMismatchError(s.Name(),
			"cannot convert %v (%T)", p, p)
	}
}

// ReadFrom constructs a host value directly from the reader. Fields
// absent from the spec, and fields whose wire type does not match the
// declared type, are skipped for forward compatibility.
func (s *StructTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	values := make(map[string]any, len(s.fields))
	for {
		h, more := r.ReadFieldBegin()
		if !more {
			break
		}
		f, ok := s.index[h.ID]
		if !ok || f.Spec.TypeCode() != h.Type {
			r.Skip(h.Type)
			if r.Err() != nil {
				return nil, r.Err()
			}
			continue
		}
		value, err := f.Spec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		values[f.Name] = value
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return s.build(values)
}

func (s *StructTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	v, ok := value.(*Struct)
	if !ok || v.spec != fieldedSpec(s) {
		return huckleberry.NewTypeMismatchError(s.StructName,
			"cannot convert %v (%T)", value, value)
	}
	for _, f := range s.fields {
		fieldValue, ok := v.values[f.Name]
		if !ok {
			if f.Required {
				return &huckleberry.MissingRequiredError{
					Struct: s.StructName, Field: f.Name,
				}
			}
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

// sortedFieldNames returns present field names sorted, for stable
// diagnostics.
func sortedFieldNames(values map[string]any) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
