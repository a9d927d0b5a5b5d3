package huckleberry

// TType identifies the on-wire type of a Thrift value.
// The codes are fixed by the Thrift binary protocol and are
// wire-compatible with Apache Thrift.
type TType int8

// TType codes supported by Thrift.
const (
	TBool   TType = 2
	TByte   TType = 3
	TDouble TType = 4
	TI16    TType = 6
	TI32    TType = 8
	TI64    TType = 10
	TBinary TType = 11
	TStruct TType = 12
	TMap    TType = 13
	TSet    TType = 14
	TList   TType = 15
)

// structEnd is the byte that terminates a struct's field list on the
// wire. It is not a TType.
const structEnd = 0

// String returns a human-readable name for the type code.
func (t TType) String() string {
	switch t {
	case TBool:
		return "bool"
	case TByte:
		return "byte"
	case TDouble:
		return "double"
	case TI16:
		return "i16"
	case TI32:
		return "i32"
	case TI64:
		return "i64"
	case TBinary:
		return "binary"
	case TStruct:
		return "struct"
	case TMap:
		return "map"
	case TSet:
		return "set"
	case TList:
		return "list"
	default:
		return "unknown"
	}
}

// IsValid returns true if the type code is a known TType.
func (t TType) IsValid() bool {
	switch t {
	case TBool, TByte, TDouble, TI16, TI32, TI64,
		TBinary, TStruct, TMap, TSet, TList:
		return true
	default:
		return false
	}
}
