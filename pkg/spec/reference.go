package spec

import (
	"fmt"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// TypeReference is an unresolved reference to a declared type. It
// exists only before linking; Link replaces it with the resolved spec.
// Any reference still unresolved at serialization time is a
// programmer bug and fails loudly.
type TypeReference struct {
	// RefName is the referenced name, possibly qualified (other.X).
	RefName string

	// Line is the source line of the reference, for error reporting.
	Line int
}

func (r *TypeReference) Name() string { return r.RefName }

func (r *TypeReference) TypeCode() huckleberry.TType {
	panic(r.unresolved())
}

func (r *TypeReference) Link(scope *Scope) (TypeSpec, error) {
	return scope.ResolveTypeSpec(r.RefName, r.Line)
}

func (r *TypeReference) Validate(any) error {
	return r.unresolved()
}

func (r *TypeReference) ToWire(any) (huckleberry.Value, error) {
	return nil, r.unresolved()
}

func (r *TypeReference) FromWire(huckleberry.Value) (any, error) {
	return nil, r.unresolved()
}

func (r *TypeReference) ToPrimitive(any) (any, error) {
	return nil, r.unresolved()
}

func (r *TypeReference) FromPrimitive(any) (any, error) {
	return nil, r.unresolved()
}

func (r *TypeReference) ReadFrom(*huckleberry.BinaryReader) (any, error) {
	return nil, r.unresolved()
}

func (r *TypeReference) WriteTo(*huckleberry.BinaryWriter, any) error {
	return r.unresolved()
}

func (r *TypeReference) unresolved() error {
	return fmt.Errorf(
		"huckleberry: reference to %q (line %d) was used before linking",
		r.RefName, r.Line,
	)
}
