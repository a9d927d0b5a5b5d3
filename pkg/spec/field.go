package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// FieldSpec is the specification of a single field of a struct,
// union, or exception.
type FieldSpec struct {
	// ID is the numeric field identifier, unique within the struct.
	ID int16

	// Name is the field name, unique within the struct.
	Name string

	// Spec is the type spec of values the field accepts.
	Spec TypeSpec

	// Required reports whether the field must be present.
	Required bool

	// Default is the linked default value, or nil. Defaults are
	// deep-copied into each constructed instance.
	Default any

	defaultAST idl.ConstValue
	Line       int
	linked     bool
}

// CompileField builds a FieldSpec from its AST node.
// requireRequiredness controls whether an unspecified requiredness is
// a compile error (structs in strict mode) or defaults to optional
// (unions, parameter lists, throws clauses).
func CompileField(f *idl.Field, structName string, requireRequiredness bool) (*FieldSpec, error) {
	if !f.HasID {
		return nil, compileErrorf(f.Line,
			"field %q of %q does not have an explicit field ID; "+
				"please specify the numeric ID for the field",
			f.Name, structName)
	}

	required := false
	switch f.Requiredness {
	case idl.Required:
		required = true
	case idl.Optional:
		required = false
	default:
		if requireRequiredness {
			return nil, compileErrorf(f.Line,
				"field %q of %q does not explicitly specify requiredness; "+
					"please mark the field required or optional",
				f.Name, structName)
		}
	}

	return &FieldSpec{
		ID:         int16(f.ID),
		Name:       f.Name,
		Spec:       TypeSpecOrRef(f.Type),
		Required:   required,
		defaultAST: f.Default,
		Line:       f.Line,
	}, nil
}

// TypeCode returns the wire type of the field's values.
func (f *FieldSpec) TypeCode() huckleberry.TType {
	return f.Spec.TypeCode()
}

// Link resolves the field's type and default value.
func (f *FieldSpec) Link(scope *Scope) error {
	if f.linked {
		return nil
	}
	f.linked = true

	spec, err := f.Spec.Link(scope)
	if err != nil {
		return err
	}
	f.Spec = spec

	if f.defaultAST != nil {
		raw, err := resolveConstValue(scope, f.defaultAST, f.Spec)
		if err != nil {
			return err
		}
		value, err := f.Spec.FromPrimitive(raw)
		if err != nil {
			return compileErrorf(f.Line,
				"default value for field %q does not match its type %q: %v",
				f.Name, f.Spec.Name(), err)
		}
		f.Default = value
	}
	return nil
}

// compileFieldBlock compiles the fields of a struct-shaped
// declaration, rejecting duplicate names and IDs.
func compileFieldBlock(
	structName string,
	fields []*idl.Field,
	requireRequiredness bool,
) ([]*FieldSpec, error) {
	specs := make([]*FieldSpec, 0, len(fields))
	ids := make(map[int]bool, len(fields))
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if names[f.Name] {
			return nil, compileErrorf(f.Line,
				"field %q of %q has duplicates", f.Name, structName)
		}
		names[f.Name] = true

		if f.HasID {
			if ids[f.ID] {
				return nil, compileErrorf(f.Line,
					"field ID %d of %q has already been used", f.ID, structName)
			}
			ids[f.ID] = true
		}

		fs, err := CompileField(f, structName, requireRequiredness)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fs)
	}
	return specs, nil
}

// resolveConstValue resolves an AST constant value into its raw
// primitive form: bool, int64, float64, string, []any, or
// map[any]any. References resolve through the scope; as a fallback,
// bare enum item names resolve against the hinted type.
func resolveConstValue(scope *Scope, v idl.ConstValue, hint TypeSpec) (any, error) {
	switch v := v.(type) {
	case *idl.ConstBool:
		return v.Value, nil
	case *idl.ConstInt:
		return v.Value, nil
	case *idl.ConstDouble:
		return v.Value, nil
	case *idl.ConstString:
		return v.Value, nil
	case *idl.ConstList:
		elemHint := elementHint(scope, hint)
		out := make([]any, len(v.Values))
		for i, e := range v.Values {
			r, err := resolveConstValue(scope, e, elemHint)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case *idl.ConstMap:
		keyHint, valueHint := entryHints(scope, hint)
		out := make(map[any]any, len(v.Pairs))
		for _, p := range v.Pairs {
			k, err := resolveConstValue(scope, p.Key, keyHint)
			if err != nil {
				return nil, err
			}
			if !isComparableHost(k) {
				return nil, compileErrorf(v.Line,
					"constant map key %v is not usable as a key", k)
			}
			val, err := resolveConstValue(scope, p.Value, valueHint)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	case *idl.ConstRef:
		return resolveConstRef(scope, v, hint)
	default:
		return nil, compileErrorf(0, "unsupported constant value %T", v)
	}
}

func resolveConstRef(scope *Scope, ref *idl.ConstRef, hint TypeSpec) (any, error) {
	c, err := scope.ResolveConstSpec(ref.Name, ref.Line)
	if err == nil {
		return c.Surface, nil
	}

	// An unqualified enum item name is resolvable when the expected
	// type is that enum.
	if hint != nil {
		if linked, lerr := hint.Link(scope); lerr == nil {
			if enum, ok := linked.(*EnumTypeSpec); ok {
				if value, ok := enum.ValueOf(ref.Name); ok {
					return int64(value), nil
				}
			}
		}
	}
	return nil, err
}

func elementHint(scope *Scope, hint TypeSpec) TypeSpec {
	if hint == nil {
		return nil
	}
	linked, err := hint.Link(scope)
	if err != nil {
		return nil
	}
	switch linked := linked.(type) {
	case *ListTypeSpec:
		return linked.ValueSpec
	case *SetTypeSpec:
		return linked.ValueSpec
	default:
		return nil
	}
}

func entryHints(scope *Scope, hint TypeSpec) (TypeSpec, TypeSpec) {
	if hint == nil {
		return nil, nil
	}
	linked, err := hint.Link(scope)
	if err != nil {
		return nil, nil
	}
	if m, ok := linked.(*MapTypeSpec); ok {
		return m.KeySpec, m.ValueSpec
	}
	return nil, nil
}
