package spec

import "github.com/blockberries/huckleberry/pkg/idl"

// TypeSpecOrRef maps an AST type node to a type spec. References to
// declared types become TypeReference leaves that the link stage
// replaces with the resolved spec.
func TypeSpecOrRef(t idl.Type) TypeSpec {
	switch t := t.(type) {
	case *idl.BaseType:
		// The parser only produces BaseType for known primitives.
		return primitiveSpecs[t.Name]
	case *idl.MapType:
		return &MapTypeSpec{
			KeySpec:   TypeSpecOrRef(t.Key),
			ValueSpec: TypeSpecOrRef(t.Value),
		}
	case *idl.ListType:
		return &ListTypeSpec{ValueSpec: TypeSpecOrRef(t.Value)}
	case *idl.SetType:
		return &SetTypeSpec{ValueSpec: TypeSpecOrRef(t.Value)}
	case *idl.TypeRef:
		return &TypeReference{RefName: t.Name, Line: t.Line}
	default:
		return nil
	}
}
