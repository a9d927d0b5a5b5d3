package spec

import (
	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// EnumItem is a single named value of an enum.
type EnumItem struct {
	Name  string
	Value int32
}

// EnumTypeSpec is the spec for enum types. The wire form is I32; the
// host form is int32. Item names may share values; the reverse index
// maps a value to its names in declaration order.
type EnumTypeSpec struct {
	// EnumName is the declared name of the enum.
	EnumName string

	// Items holds the declared items in order.
	Items []EnumItem

	itemsByName   map[string]int32
	valuesToNames map[int32][]string
	linked        bool
}

// NewEnumTypeSpec creates an enum spec from its items. Duplicate item
// names are a compile-time error; duplicate values are permitted.
func NewEnumTypeSpec(name string, items []EnumItem, line int) (*EnumTypeSpec, error) {
	byName := make(map[string]int32, len(items))
	reverse := make(map[int32][]string, len(items))
	for _, item := range items {
		if _, dup := byName[item.Name]; dup {
			return nil, compileErrorf(line,
				"enum entry %q of enum %q has duplicates", item.Name, name)
		}
		byName[item.Name] = item.Value
		reverse[item.Value] = append(reverse[item.Value], item.Name)
	}
	return &EnumTypeSpec{
		EnumName:      name,
		Items:         items,
		itemsByName:   byName,
		valuesToNames: reverse,
	}, nil
}

// CompileEnum builds an EnumTypeSpec from its AST node. Items without
// explicit values continue from the previous value plus one, starting
// at zero.
func CompileEnum(d *idl.Enum) (*EnumTypeSpec, error) {
	items := make([]EnumItem, 0, len(d.Items))
	prev := int32(-1)
	for _, item := range d.Items {
		value := prev + 1
		if item.Value != nil {
			value = *item.Value
		}
		prev = value
		items = append(items, EnumItem{Name: item.Name, Value: value})
	}
	return NewEnumTypeSpec(d.Name, items, d.Line)
}

func (s *EnumTypeSpec) Name() string { return s.EnumName }

func (s *EnumTypeSpec) TypeCode() huckleberry.TType {
	return huckleberry.TI32
}

func (s *EnumTypeSpec) Link(*Scope) (TypeSpec, error) {
	s.linked = true
	return s, nil
}

// ValueOf returns the value of the item with the given name.
func (s *EnumTypeSpec) ValueOf(name string) (int32, bool) {
	v, ok := s.itemsByName[name]
	return v, ok
}

// NameOf returns the name of the item with the given value. When
// several items share the value, the first declared name wins.
func (s *EnumTypeSpec) NameOf(value int32) (string, bool) {
	names := s.valuesToNames[value]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// NamesOf returns all item names with the given value in declaration
// order.
func (s *EnumTypeSpec) NamesOf(value int32) []string {
	return s.valuesToNames[value]
}

func (s *EnumTypeSpec) coerce(value any) (int32, error) {
	i, ok := toInt64(value)
	if !ok {
		return 0, huckleberry.NewTypeMismatchError(s.EnumName, "cannot convert %v (%T)", value, value)
	}
	if i < -2147483648 || i > 2147483647 {
		return 0, &huckleberry.OutOfRangeError{
			Spec: s.EnumName, Value: i, Min: -2147483648, Max: 2147483647,
		}
	}
	return int32(i), nil
}

// Validate checks that the value is an integer within I32 range.
// Values outside the declared items are accepted for forward
// compatibility with enums that gained items.
func (s *EnumTypeSpec) Validate(value any) error {
	_, err := s.coerce(value)
	return err
}

func (s *EnumTypeSpec) ToWire(value any) (huckleberry.Value, error) {
	v, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return huckleberry.I32Value(v), nil
}

func (s *EnumTypeSpec) FromWire(w huckleberry.Value) (any, error) {
	if err := wireTypeCodeMatches(s, w); err != nil {
		return nil, err
	}
	return int32(w.(huckleberry.I32Value)), nil
}

// ToPrimitive returns the item's integer value.
func (s *EnumTypeSpec) ToPrimitive(value any) (any, error) {
	v, err := s.coerce(value)
	if err != nil {
		return nil, err
	}
	return int64(v), nil
}

// FromPrimitive accepts the integer value or the canonical item name.
func (s *EnumTypeSpec) FromPrimitive(p any) (any, error) {
	if name, ok := p.(string); ok {
		if v, ok := s.itemsByName[name]; ok {
			return v, nil
		}
		return nil, huckleberry.NewTypeMismatchError(
			s.EnumName, "%q is not an item of this enum", name,
		)
	}
	return s.coerce(p)
}

func (s *EnumTypeSpec) ReadFrom(r *huckleberry.BinaryReader) (any, error) {
	v := r.ReadI32()
	return v, r.Err()
}

func (s *EnumTypeSpec) WriteTo(w *huckleberry.BinaryWriter, value any) error {
	v, err := s.coerce(value)
	if err != nil {
		return err
	}
	w.WriteI32(v)
	return w.Err()
}
