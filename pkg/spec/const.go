package spec

import (
	"github.com/blockberries/huckleberry/pkg/idl"
)

// ConstSpec is the specification of a named constant. Linking
// resolves the declared value - which may reference other constants
// or enum items - and reconstructs it through the type's primitive
// conversion, so struct constants written as string-keyed maps come
// out as host struct values.
type ConstSpec struct {
	// Name is the declared constant name. Enum items are registered
	// as Enum.Item constants.
	Name string

	// Type is the declared type of the constant.
	Type TypeSpec

	// Surface is the linked host value of the constant.
	Surface any

	value  idl.ConstValue
	Line   int
	linked bool
}

// CompileConst builds a ConstSpec from its AST node.
func CompileConst(d *idl.Const) *ConstSpec {
	return &ConstSpec{
		Name:  d.Name,
		Type:  TypeSpecOrRef(d.Type),
		value: d.Value,
		Line:  d.Line,
	}
}

// NewConstSpec creates a constant spec from an already-resolved value.
// The compiler uses this to register enum items.
func NewConstSpec(name string, t TypeSpec, value idl.ConstValue, line int) *ConstSpec {
	return &ConstSpec{Name: name, Type: t, value: value, Line: line}
}

// Link resolves the constant's type and value.
func (c *ConstSpec) Link(scope *Scope) (*ConstSpec, error) {
	if c.linked {
		return c, nil
	}
	c.linked = true

	t, err := c.Type.Link(scope)
	if err != nil {
		return nil, err
	}
	c.Type = t

	raw, err := resolveConstValue(scope, c.value, c.Type)
	if err != nil {
		return nil, err
	}
	surface, err := c.Type.FromPrimitive(raw)
	if err != nil {
		return nil, compileErrorf(c.Line,
			"value for constant %q does not match its type %q: %v",
			c.Name, c.Type.Name(), err)
	}
	c.Surface = surface
	return c, nil
}
