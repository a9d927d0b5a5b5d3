// Package idl provides the abstract syntax tree, lexer, and parser for
// Thrift interface definition files.
//
// The parser is deliberately tolerant: it produces the AST defined
// here and leaves semantic validation (duplicate field IDs, missing
// requiredness, unresolved references) to the compiler.
package idl

// Program is the root node of a parsed Thrift document.
type Program struct {
	Headers     []Header
	Definitions []Definition
}

// Header is implemented by include and namespace declarations.
type Header interface {
	headerNode()
}

// Include makes another Thrift file's definitions reachable under its
// basename: include "./shared.thrift" exposes shared.Foo.
type Include struct {
	Path string
	Line int
}

func (*Include) headerNode() {}

// Namespace declares the generated namespace for a target language.
type Namespace struct {
	// Scope is the target language, or "*" for all languages.
	Scope string
	Name  string
	Line  int
}

func (*Namespace) headerNode() {}

// Definition is implemented by all top-level declarations.
type Definition interface {
	DefName() string
	DefLine() int
}

// Typedef declares an alias for another type.
type Typedef struct {
	Name   string
	Target Type
	Line   int
}

func (d *Typedef) DefName() string { return d.Name }
func (d *Typedef) DefLine() int    { return d.Line }

// Enum declares a set of named 32-bit integer constants.
type Enum struct {
	Name  string
	Items []*EnumItem
	Line  int
}

func (d *Enum) DefName() string { return d.Name }
func (d *Enum) DefLine() int    { return d.Line }

// EnumItem is a single item of an enum. Value is nil when the item
// does not declare an explicit value.
type EnumItem struct {
	Name  string
	Value *int32
	Line  int
}

// Struct declares a record of named, numbered fields.
type Struct struct {
	Name   string
	Fields []*Field
	Line   int
}

func (d *Struct) DefName() string { return d.Name }
func (d *Struct) DefLine() int    { return d.Line }

// Union declares a struct-shaped type of which at most one field may
// be set.
type Union struct {
	Name   string
	Fields []*Field
	Line   int
}

func (d *Union) DefName() string { return d.Name }
func (d *Union) DefLine() int    { return d.Line }

// Exception declares a struct whose surface is error-like.
type Exception struct {
	Name   string
	Fields []*Field
	Line   int
}

func (d *Exception) DefName() string { return d.Name }
func (d *Exception) DefLine() int    { return d.Line }

// Const declares a named constant.
type Const struct {
	Name  string
	Type  Type
	Value ConstValue
	Line  int
}

func (d *Const) DefName() string { return d.Name }
func (d *Const) DefLine() int    { return d.Line }

// Service declares a collection of functions, optionally inheriting
// from a parent service.
type Service struct {
	Name string

	// Parent is the name of the inherited service, or "" if none.
	Parent string

	Functions []*Function
	Line      int
}

func (d *Service) DefName() string { return d.Name }
func (d *Service) DefLine() int    { return d.Line }

// Requiredness is the declared presence requirement of a field.
type Requiredness int

const (
	// Unspecified means the IDL did not declare requiredness.
	Unspecified Requiredness = iota
	Required
	Optional
)

func (r Requiredness) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return "unspecified"
	}
}

// Field is a single field of a struct, union, exception, parameter
// list, or throws clause.
type Field struct {
	// ID is the numeric field identifier. HasID is false when the IDL
	// did not declare one; the compiler rejects such fields.
	ID    int
	HasID bool

	Name         string
	Type         Type
	Requiredness Requiredness

	// Default is the declared default value, or nil.
	Default ConstValue

	Line int
}

// Function is a single function of a service.
type Function struct {
	Name string

	// ReturnType is nil for void functions.
	ReturnType Type

	Parameters []*Field
	Exceptions []*Field
	OneWay     bool
	Line       int
}

// Type is implemented by all type nodes.
type Type interface {
	typeNode()
	String() string
}

// BaseType is a built-in primitive type: bool, byte, i8, i16, i32,
// i64, double, string, or binary.
type BaseType struct {
	Name string
	Line int
}

func (*BaseType) typeNode()        {}
func (t *BaseType) String() string { return t.Name }

// MapType is a map<k, v> type.
type MapType struct {
	Key   Type
	Value Type
	Line  int
}

func (*MapType) typeNode()        {}
func (t *MapType) String() string { return "map<" + t.Key.String() + ", " + t.Value.String() + ">" }

// ListType is a list<e> type.
type ListType struct {
	Value Type
	Line  int
}

func (*ListType) typeNode()        {}
func (t *ListType) String() string { return "list<" + t.Value.String() + ">" }

// SetType is a set<e> type.
type SetType struct {
	Value Type
	Line  int
}

func (*SetType) typeNode()        {}
func (t *SetType) String() string { return "set<" + t.Value.String() + ">" }

// TypeRef is a reference to a declared type, possibly qualified with
// an include name (shared.Foo).
type TypeRef struct {
	Name string
	Line int
}

func (*TypeRef) typeNode()        {}
func (t *TypeRef) String() string { return t.Name }

// ConstValue is implemented by all constant value nodes.
type ConstValue interface {
	constNode()
}

// ConstBool is a true or false literal.
type ConstBool struct {
	Value bool
	Line  int
}

func (*ConstBool) constNode() {}

// ConstInt is an integer literal.
type ConstInt struct {
	Value int64
	Line  int
}

func (*ConstInt) constNode() {}

// ConstDouble is a floating point literal.
type ConstDouble struct {
	Value float64
	Line  int
}

func (*ConstDouble) constNode() {}

// ConstString is a quoted string literal.
type ConstString struct {
	Value string
	Line  int
}

func (*ConstString) constNode() {}

// ConstList is a bracketed list of constant values.
type ConstList struct {
	Values []ConstValue
	Line   int
}

func (*ConstList) constNode() {}

// ConstPair is a single key-value entry of a ConstMap.
type ConstPair struct {
	Key   ConstValue
	Value ConstValue
}

// ConstMap is a braced map of constant values, in declaration order.
type ConstMap struct {
	Pairs []ConstPair
	Line  int
}

func (*ConstMap) constNode() {}

// ConstRef is a reference to another constant or an enum item,
// possibly qualified (Status.RUNNING, shared.MAX_RETRIES).
type ConstRef struct {
	Name string
	Line int
}

func (*ConstRef) constNode() {}
