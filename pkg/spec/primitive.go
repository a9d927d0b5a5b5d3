package spec

import (
	"math"
	"unicode/utf8"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

// Primitive type spec singletons. Primitive specs are already linked;
// Link returns them unchanged.
var (
	BoolSpec   TypeSpec = &boolSpec{}
	ByteSpec   TypeSpec = &intSpec{name: "byte", code: huckleberry.TByte, bits: 8}
	I16Spec    TypeSpec = &intSpec{name: "i16", code: huckleberry.TI16, bits: 16}
	I32Spec    TypeSpec = &intSpec{name: "i32", code: huckleberry.TI32, bits: 32}
	I64Spec    TypeSpec = &intSpec{name: "i64", code: huckleberry.TI64, bits: 64}
	DoubleSpec TypeSpec = &doubleSpec{}
	BinarySpec TypeSpec = &binarySpec{}
	StringSpec TypeSpec = &stringSpec{}
)

// primitiveSpecs maps IDL base type names to their singleton specs.
// "i8" is the modern spelling of "byte".
var primitiveSpecs = map[string]TypeSpec{
	"bool":   BoolSpec,
	"byte":   ByteSpec,
	"i8":     ByteSpec,
	"i16":    I16Spec,
	"i32":    I32Spec,
	"i64":    I64Spec,
	"double": DoubleSpec,
	"string": StringSpec,
	"binary": BinarySpec,
}

// boolSpec accepts bools as well as the integers 0 and 1.
type boolSpec struct{}

func (*boolSpec) Name() string                       { return "bool" }
func (*boolSpec) TypeCode() huckleberry.TType        { return huckleberry.TBool }
func (s *boolSpec) Link(*Scope) (TypeSpec, error)    { return s, nil }

func (s *boolSpec) coerce(value any) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	if i, ok := toInt64(value); ok && (i == 0 || i == 1) {
		return i == 1, nil
	}
	return false, huckleberry.NewTypeMismatchError("bool", "cannot convert %v (%T)", value, value)
}

func (s *boolSpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *boolSpec) ToWire(value any) (huckleberry.Value, error) {
	b, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return huckleberry.BoolValue(b), nil
}

func (s *boolSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	return bool(w.(huckleberry.BoolValue)), nil
}

func (s *boolSpec) ToPrimitive(value any) (any, error) {
	return s.coerce(value)
}

func (s *boolSpec) FromPrimitive(p any) (any, error) {
	return s.coerce(p)
}

func (s *boolSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	v := r.ReadBool()
	return v, r.Err()
}

func (s *boolSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	b, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteBool(b)
	return w.Err()
}

// intSpec covers the four signed integer widths. Any integral host
// value within the signed range of the declared width is accepted;
// decoded values use the canonical width (int8, int16, int32, int64).
type intSpec struct {
	name string
	code huckleberry.TType
	bits uint
}

func (s *intSpec) Name() string                    { return s.name }
func (s *intSpec) TypeCode() huckleberry.TType     { return s.code }
func (s *intSpec) Link(*Scope) (TypeSpec, error)   { return s, nil }

func (s *intSpec) bounds() (int64, int64) {
	if s.bits == 64 {
		return math.MinInt64, math.MaxInt64
	}
	max := int64(1)<<(s.bits-1) - 1
	return -max - 1, max
}

func (s *intSpec) coerce(value any) (int64, error) {
	i, ok := toInt64(value)
	if !ok {
		return 0, huckleberry.NewTypeMismatchError(s.name, "cannot convert %v (%T)", value, value)
	}
	min, max := s.bounds()
	if i < min || i > max {
		return 0, &huckleberry.OutOfRangeError{Spec: s.name, Value: i, Min: min, Max: max}
	}
	return i, nil
}

func (s *intSpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *intSpec) ToWire(value any) (huckleberry.Value, error) {
	i, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	switch s.bits {
	case 8:
		return huckleberry.ByteValue(int8(i)), nil
	case 16:
		return huckleberry.I16Value(int16(i)), nil
	case 32:
		return huckleberry.I32Value(int32(i)), nil
	default:
		return huckleberry.I64Value(i), nil
	}
}

func (s *intSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	switch w := w.(type) {
	case huckleberry.ByteValue:
		return int8(w), nil
	case huckleberry.I16Value:
		return int16(w), nil
	case huckleberry.I32Value:
		return int32(w), nil
	case huckleberry.I64Value:
		return int64(w), nil
	default:
		return nil, huckleberry.NewTypeMismatchError(s.name, "unexpected wire value %T", w)
	}
}

func (s *intSpec) ToPrimitive(value any) (any, error) {
	return s.coerce(value)
}

func (s *intSpec) FromPrimitive(p any) (any, error) {
	i, err := s.coerce(p)
	if err != nil {
		return nil, err
	}
	return s.canonical(i), nil
}

func (s *intSpec) canonical(i int64) any {
	switch s.bits {
	case 8:
		return int8(i)
	case 16:
		return int16(i)
	case 32:
		return int32(i)
	default:
		return i
	}
}

func (s *intSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	var v any
	switch s.bits {
	case 8:
		v = r.ReadByte()
	case 16:
		v = r.ReadI16()
	case 32:
		v = r.ReadI32()
	default:
		v = r.ReadI64()
	}
	return v, r.Err()
}

func (s *intSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	i, err := s.coerce(value)
	if err != nil {
		return err
	}
	switch s.bits {
	case 8:
		w.WriteByte(int8(i))
	case 16:
		w.WriteI16(int16(i))
	case 32:
		w.WriteI32(int32(i))
	default:
		w.WriteI64(i)
	}
	return w.Err()
}

// doubleSpec accepts any real numeric host value.
type doubleSpec struct{}

func (*doubleSpec) Name() string                     { return "double" }
func (*doubleSpec) TypeCode() huckleberry.TType      { return huckleberry.TDouble }
func (s *doubleSpec) Link(*Scope) (TypeSpec, error)  { return s, nil }

func (s *doubleSpec) coerce(value any) (float64, error) {
	f, ok := toFloat64(value)
	if !ok {
		return 0, huckleberry.NewTypeMismatchError("double", "cannot convert %v (%T)", value, value)
	}
	return f, nil
}

func (s *doubleSpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *doubleSpec) ToWire(value any) (huckleberry.Value, error) {
	f, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return huckleberry.DoubleValue(f), nil
}

func (s *doubleSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	return float64(w.(huckleberry.DoubleValue)), nil
}

func (s *doubleSpec) ToPrimitive(value any) (any, error) {
	return s.coerce(value)
}

func (s *doubleSpec) FromPrimitive(p any) (any, error) {
	return s.coerce(p)
}

func (s *doubleSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	v := r.ReadDouble()
	return v, r.Err()
}

func (s *doubleSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	f, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteDouble(f)
	return w.Err()
}

// binarySpec carries raw bytes. Text is accepted on write and encoded
// as its UTF-8 bytes.
type binarySpec struct{}

func (*binarySpec) Name() string                     { return "binary" }
func (*binarySpec) TypeCode() huckleberry.TType      { return huckleberry.TBinary }
func (s *binarySpec) Link(*Scope) (TypeSpec, error)  { return s, nil }

func (s *binarySpec) coerce(value any) ([]byte, error) {
	switch value := value.(type) {
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		return nil, huckleberry.NewTypeMismatchError("binary", "cannot convert %v (%T)", value, value)
	}
}

func (s *binarySpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *binarySpec) ToWire(value any) (huckleberry.Value, error) {
	b, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return huckleberry.BinaryValue(b), nil
}

func (s *binarySpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	return []byte(w.(huckleberry.BinaryValue)), nil
}

func (s *binarySpec) ToPrimitive(value any) (any, error) {
	b, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *binarySpec) FromPrimitive(p any) (any, error) {
	b, err := s.coerce(p)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *binarySpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	v := r.ReadBinary()
	return v, r.Err()
}

func (s *binarySpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	b, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteBinary(b)
	return w.Err()
}

// stringSpec carries UTF-8 text. Bytes are accepted on write; decoded
// values must be valid UTF-8.
type stringSpec struct{}

func (*stringSpec) Name() string                     { return "string" }
func (*stringSpec) TypeCode() huckleberry.TType      { return huckleberry.TBinary }
func (s *stringSpec) Link(*Scope) (TypeSpec, error)  { return s, nil }

func (s *stringSpec) coerce(value any) (string, error) {
	switch value := value.(type) {
	case string:
		return value, nil
	case []byte:
		if !utf8.Valid(value) {
			return "", huckleberry.ErrInvalidUTF8
		}
		return string(value), nil
	default:
		return "", huckleberry.NewTypeMismatchError("string", "cannot convert %v (%T)", value, value)
	}
}

func (s *stringSpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *stringSpec) ToWire(value any) (huckleberry.Value, error) {
	str, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return huckleberry.BinaryValue(str), nil
}

func (s *stringSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	b := []byte(w.(huckleberry.BinaryValue))
	if !utf8.Valid(b) {
		return nil, huckleberry.ErrInvalidUTF8
	}
	return string(b), nil
}

func (s *stringSpec) ToPrimitive(value any) (any, error) {
	return s.coerce(value)
}

func (s *stringSpec) FromPrimitive(p any) (any, error) {
	return s.coerce(p)
}

func (s *stringSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	b := r.ReadBinary()
	if r.Err() != nil {
		return nil, r.Err()
	}
	if !utf8.Valid(b) {
		return nil, huckleberry.ErrInvalidUTF8
	}
	return string(b), nil
}

func (s *stringSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	str, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteString(str)
	return w.Err()
}
