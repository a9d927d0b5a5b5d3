package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// TypedefTypeSpec is a transparent alias for another type. Link
// returns the linked target, eliminating the typedef from the spec
// tree; the typedef name stays resolvable in the scope.
type TypedefTypeSpec struct {
	// TypedefName is the declared alias name.
	TypedefName string

	// Target is the aliased type.
	Target TypeSpec

	Line   int
	linked bool
}

// CompileTypedef builds a TypedefTypeSpec from its AST node.
func CompileTypedef(d *idl.Typedef) *TypedefTypeSpec {
	return &TypedefTypeSpec{
		TypedefName: d.Name,
		Target:      TypeSpecOrRef(d.Target),
		Line:        d.Line,
	}
}

func (t *TypedefTypeSpec) Name() string { return t.TypedefName }

func (t *TypedefTypeSpec) TypeCode() huckleberry.TType {
	return t.Target.TypeCode()
}

func (t *TypedefTypeSpec) Link(scope *Scope) (TypeSpec, error) {
	if !t.linked {
		t.linked = true
		target, err := t.Target.Link(scope)
		if err != nil {
			return nil, err
		}
		t.Target = target
	}
	return t.Target, nil
}

func (t *TypedefTypeSpec) Validate(value any) error {
	return t.Target.Validate(value)
}

func (t *TypedefTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	return t.Target.ToWire(value)
}

func (t *TypedefTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	return t.Target.FromWire(w)
}

func (t *TypedefTypeSpec) ToPrimitive(value any) (any, error) {
	return t.Target.ToPrimitive(value)
}

func (t *TypedefTypeSpec) FromPrimitive(p any) (any, error) {
	return t.Target.FromPrimitive(p)
}

func (t *TypedefTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	return t.Target.ReadFrom(r)
}

func (t *TypedefTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	return t.Target.WriteTo(w, value)
}
