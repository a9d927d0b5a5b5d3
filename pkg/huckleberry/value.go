package huckleberry

import (
	"bytes"
	"fmt"
	"strings"
)

// Value is the protocol-independent representation of a decoded Thrift
// value. Values carry no host-type knowledge; they are pure decoded
// data. The concrete variant determines the TType.
type Value interface {
	// TType returns the wire type code of the value.
	TType() TType

	// Equal reports structural, componentwise equality.
	Equal(other Value) bool
}

// BoolValue wraps a boolean value.
type BoolValue bool

func (BoolValue) TType() TType { return TBool }

func (v BoolValue) Equal(other Value) bool {
	o, ok := other.(BoolValue)
	return ok && v == o
}

// ByteValue wraps an 8-bit integer.
type ByteValue int8

func (ByteValue) TType() TType { return TByte }

func (v ByteValue) Equal(other Value) bool {
	o, ok := other.(ByteValue)
	return ok && v == o
}

// DoubleValue wraps a 64-bit floating point value.
type DoubleValue float64

func (DoubleValue) TType() TType { return TDouble }

func (v DoubleValue) Equal(other Value) bool {
	o, ok := other.(DoubleValue)
	return ok && v == o
}

// I16Value wraps a 16-bit integer.
type I16Value int16

func (I16Value) TType() TType { return TI16 }

func (v I16Value) Equal(other Value) bool {
	o, ok := other.(I16Value)
	return ok && v == o
}

// I32Value wraps a 32-bit integer.
type I32Value int32

func (I32Value) TType() TType { return TI32 }

func (v I32Value) Equal(other Value) bool {
	o, ok := other.(I32Value)
	return ok && v == o
}

// I64Value wraps a 64-bit integer.
type I64Value int64

func (I64Value) TType() TType { return TI64 }

func (v I64Value) Equal(other Value) bool {
	o, ok := other.(I64Value)
	return ok && v == o
}

// BinaryValue wraps a binary blob.
//
// Thrift does not differentiate between text and binary blobs over the
// wire; UTF-8 text is encoded and decoded by the string spec.
type BinaryValue []byte

func (BinaryValue) TType() TType { return TBinary }

func (v BinaryValue) Equal(other Value) bool {
	o, ok := other.(BinaryValue)
	return ok && bytes.Equal(v, o)
}

// FieldValue is a single field of a struct value.
type FieldValue struct {
	// ID is the numeric field identifier.
	ID int16

	// Type is the wire type of the field's value.
	Type TType

	// Value is the value held by the field.
	Value Value
}

func (f FieldValue) Equal(o FieldValue) bool {
	return f.ID == o.ID && f.Type == o.Type && f.Value.Equal(o.Value)
}

type fieldKey struct {
	id    int16
	ttype TType
}

// StructValue is an ordered collection of fields of different types.
// An index by (id, ttype) supports constant-time field lookup.
type StructValue struct {
	fields []FieldValue
	index  map[fieldKey]int
}

// NewStructValue creates a StructValue from the given fields,
// preserving their order.
func NewStructValue(fields []FieldValue) *StructValue {
	index := make(map[fieldKey]int, len(fields))
	for i, f := range fields {
		index[fieldKey{f.ID, f.Type}] = i
	}
	return &StructValue{fields: fields, index: index}
}

func (*StructValue) TType() TType { return TStruct }

// Fields returns the fields of the struct in their original order.
// The returned slice must not be modified.
func (v *StructValue) Fields() []FieldValue {
	return v.fields
}

// Get returns the field with the given ID and type, or false if no
// such field exists.
func (v *StructValue) Get(id int16, ttype TType) (FieldValue, bool) {
	i, ok := v.index[fieldKey{id, ttype}]
	if !ok {
		return FieldValue{}, false
	}
	return v.fields[i], true
}

func (v *StructValue) Equal(other Value) bool {
	o, ok := other.(*StructValue)
	if !ok || len(v.fields) != len(o.fields) {
		return false
	}
	for i := range v.fields {
		if !v.fields[i].Equal(o.fields[i]) {
			return false
		}
	}
	return true
}

// MapPair is a single key-value pair of a map value.
type MapPair struct {
	Key   Value
	Value Value
}

// MapValue is an ordered collection of key-value pairs. Note that the
// pairs are a sequence, not a host map.
type MapValue struct {
	// KeyType is the wire type of the keys.
	KeyType TType

	// ValueType is the wire type of the values.
	ValueType TType

	// Pairs holds the key-value pairs in wire order.
	Pairs []MapPair
}

func (*MapValue) TType() TType { return TMap }

func (v *MapValue) Equal(other Value) bool {
	o, ok := other.(*MapValue)
	if !ok || v.KeyType != o.KeyType || v.ValueType != o.ValueType ||
		len(v.Pairs) != len(o.Pairs) {
		return false
	}
	for i := range v.Pairs {
		if !v.Pairs[i].Key.Equal(o.Pairs[i].Key) ||
			!v.Pairs[i].Value.Equal(o.Pairs[i].Value) {
			return false
		}
	}
	return true
}

// SetValue is an ordered collection of values of a single type.
type SetValue struct {
	// ValueType is the wire type of the elements.
	ValueType TType

	// Values holds the elements in wire order.
	Values []Value
}

func (*SetValue) TType() TType { return TSet }

func (v *SetValue) Equal(other Value) bool {
	o, ok := other.(*SetValue)
	return ok && v.ValueType == o.ValueType && valuesEqual(v.Values, o.Values)
}

// ListValue is an ordered collection of values of a single type.
type ListValue struct {
	// ValueType is the wire type of the elements.
	ValueType TType

	// Values holds the elements in order.
	Values []Value
}

func (*ListValue) TType() TType { return TList }

func (v *ListValue) Equal(other Value) bool {
	o, ok := other.(*ListValue)
	return ok && v.ValueType == o.ValueType && valuesEqual(v.Values, o.Values)
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// FormatValue renders a value for diagnostics.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case BoolValue:
		return fmt.Sprintf("Bool(%t)", bool(v))
	case ByteValue:
		return fmt.Sprintf("Byte(%d)", int8(v))
	case DoubleValue:
		return fmt.Sprintf("Double(%g)", float64(v))
	case I16Value:
		return fmt.Sprintf("I16(%d)", int16(v))
	case I32Value:
		return fmt.Sprintf("I32(%d)", int32(v))
	case I64Value:
		return fmt.Sprintf("I64(%d)", int64(v))
	case BinaryValue:
		return fmt.Sprintf("Binary(%q)", []byte(v))
	case *StructValue:
		var b strings.Builder
		b.WriteString("Struct{")
		for i, f := range v.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d: %s", f.ID, FormatValue(f.Value))
		}
		b.WriteString("}")
		return b.String()
	case *MapValue:
		return fmt.Sprintf("Map(%s->%s, %d pairs)", v.KeyType, v.ValueType, len(v.Pairs))
	case *SetValue:
		return fmt.Sprintf("Set(%s, %d values)", v.ValueType, len(v.Values))
	case *ListValue:
		return fmt.Sprintf("List(%s, %d values)", v.ValueType, len(v.Values))
	default:
		return fmt.Sprintf("%v", v)
	}
}
