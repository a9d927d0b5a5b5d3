package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// TypeSpec is the specification of a single Thrift type. A TypeSpec
// knows how to validate host values of its type, convert them to and
// from wire values, convert them to and from JSON-compatible primitive
// forms, and stream them through the binary protocol directly.
//
// Specs progress through three states: compiled (references
// unresolved), linking, and linked. After linking, specs are immutable
// and safe for concurrent read-only use.
type TypeSpec interface {
	// Name returns the Thrift name of the type.
	Name() string

	// TypeCode returns the on-wire type code.
	TypeCode() huckleberry.TType

	// Link resolves named references against the scope and returns
	// the linked spec. Typedefs and references eliminate themselves
	// by returning their resolved target. Link is idempotent and
	// cycle-safe.
	Link(scope *Scope) (TypeSpec, error)

	// Validate checks that the host value is acceptable for this
	// type. Values of a nested struct surface are checked by spec
	// identity only; their contents were validated at construction.
	Validate(value any) error

	// ToWire converts a host value into its wire representation.
	ToWire(value any) (huckleberry.Value, error)

	// FromWire converts a wire value back into a host value.
	FromWire(w huckleberry.Value) (any, error)

	// ToPrimitive converts a host value into a JSON-compatible form.
	ToPrimitive(value any) (any, error)

	// FromPrimitive reconstructs a host value from its primitive form.
	FromPrimitive(p any) (any, error)

	// ReadFrom constructs a host value directly from the reader,
	// bypassing wire value construction. Behaviorally identical to
	// reading a wire value and applying FromWire.
	ReadFrom(r *huckleberry.BinaryReader) (any, error)

	// WriteTo writes a host value directly to the writer. The value
	// is presumed validated.
	WriteTo(w *huckleberry.BinaryWriter, value any) error
}

// wireTypeCodeMatches verifies that a decoded wire value has the type
// code the spec expects.
func wireTypeCodeMatches(s TypeSpec, w huckleberry.Value) error {
	if w == nil || w.TType() != s.TypeCode() {
		got := "nil"
		if w != nil {
			got = w.TType().String()
		}
		return huckleberry.NewTypeMismatchError(
			s.Name(), "cannot decode wire value of type %s", got,
		)
	}
	return nil
}
