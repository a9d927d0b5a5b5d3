package extract

import (
	"fmt"
	"go/types"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/blockberries/huckleberry/pkg/idl"
)

// Config configures the type collector.
type Config struct {
	// IncludePrivate includes unexported struct types.
	IncludePrivate bool

	// RequireTags collects only structs that carry at least one
	// thrift field tag.
	RequireTags bool
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() *Config {
	return &Config{RequireTags: false}
}

// TypeInfo describes one Go struct collected for IDL generation.
type TypeInfo struct {
	// Name is the Thrift struct name.
	Name string

	// Fields holds the collected fields in declaration order.
	Fields []*FieldInfo
}

// FieldInfo describes one collected struct field.
type FieldInfo struct {
	Name     string
	ID       int
	Required bool
	Type     idl.Type
}

// Collector collects struct types from loaded Go packages.
type Collector struct {
	config *Config
	types  []*TypeInfo
	seen   map[string]bool
}

// NewCollector creates a collector with the given configuration.
func NewCollector(cfg *Config) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Collector{config: cfg, seen: make(map[string]bool)}
}

// Collect analyzes the packages and gathers struct definitions.
func (c *Collector) Collect(pkgs []*packages.Package) error {
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		names := scope.Names()
		sort.Strings(names)
		for _, name := range names {
			obj := scope.Lookup(name)
			typeName, ok := obj.(*types.TypeName)
			if !ok || typeName.IsAlias() {
				continue
			}
			if !typeName.Exported() && !c.config.IncludePrivate {
				continue
			}
			structType, ok := typeName.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			if err := c.collectStruct(name, structType); err != nil {
				return err
			}
		}
	}
	return nil
}

// Types returns the collected struct types in collection order.
func (c *Collector) Types() []*TypeInfo {
	return c.types
}

func (c *Collector) collectStruct(name string, s *types.Struct) error {
	thriftName := exportedName(name)
	if c.seen[thriftName] {
		return nil
	}

	info := &TypeInfo{Name: thriftName}
	nextID := 1
	tagged := false

	for i := 0; i < s.NumFields(); i++ {
		field := s.Field(i)
		if !field.Exported() || field.Embedded() {
			continue
		}
		tag := reflect.StructTag(s.Tag(i)).Get("thrift")
		if tag == "-" {
			continue
		}

		id := nextID
		required := false
		fieldName := fieldName(field.Name())
		if tag != "" {
			tagged = true
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				parsed, err := strconv.Atoi(parts[0])
				if err != nil {
					return fmt.Errorf(
						"huckleberry: field %s.%s has invalid thrift tag %q",
						name, field.Name(), tag,
					)
				}
				id = parsed
			}
			for _, opt := range parts[1:] {
				switch opt {
				case "required":
					required = true
				case "optional":
					required = false
				case "":
				default:
					fieldName = opt
				}
			}
		}
		if id >= nextID {
			nextID = id + 1
		}

		fieldType, err := thriftType(field.Type())
		if err != nil {
			return fmt.Errorf("huckleberry: field %s.%s: %w", name, field.Name(), err)
		}
		info.Fields = append(info.Fields, &FieldInfo{
			Name:     fieldName,
			ID:       id,
			Required: required,
			Type:     fieldType,
		})
	}

	if c.config.RequireTags && !tagged {
		return nil
	}
	if len(info.Fields) == 0 {
		return nil
	}
	c.seen[thriftName] = true
	c.types = append(c.types, info)
	return nil
}

// thriftType maps a Go type to the Thrift type that carries it.
func thriftType(t types.Type) (idl.Type, error) {
	switch t := t.(type) {
	case *types.Basic:
		return basicThriftType(t)
	case *types.Pointer:
		// Pointers mark optionality, not a distinct wire type.
		return thriftType(t.Elem())
	case *types.Slice:
		if basic, ok := t.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return &idl.BaseType{Name: "binary"}, nil
		}
		elem, err := thriftType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &idl.ListType{Value: elem}, nil
	case *types.Array:
		elem, err := thriftType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &idl.ListType{Value: elem}, nil
	case *types.Map:
		key, err := thriftType(t.Key())
		if err != nil {
			return nil, err
		}
		// map[K]struct{} is the Go spelling of a set.
		if isEmptyStruct(t.Elem()) {
			return &idl.SetType{Value: key}, nil
		}
		value, err := thriftType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &idl.MapType{Key: key, Value: value}, nil
	case *types.Named:
		if basic, ok := t.Underlying().(*types.Basic); ok {
			return basicThriftType(basic)
		}
		if _, ok := t.Underlying().(*types.Struct); ok {
			return &idl.TypeRef{Name: exportedName(t.Obj().Name())}, nil
		}
		return thriftType(t.Underlying())
	default:
		return nil, fmt.Errorf("type %s has no Thrift representation", t)
	}
}

func basicThriftType(t *types.Basic) (idl.Type, error) {
	switch t.Kind() {
	case types.Bool:
		return &idl.BaseType{Name: "bool"}, nil
	case types.Int8:
		return &idl.BaseType{Name: "byte"}, nil
	case types.Int16, types.Uint8:
		return &idl.BaseType{Name: "i16"}, nil
	case types.Int32, types.Uint16:
		return &idl.BaseType{Name: "i32"}, nil
	case types.Int, types.Int64, types.Uint32:
		return &idl.BaseType{Name: "i64"}, nil
	case types.Float32, types.Float64:
		return &idl.BaseType{Name: "double"}, nil
	case types.String:
		return &idl.BaseType{Name: "string"}, nil
	case types.Uint, types.Uint64, types.Uintptr:
		return nil, fmt.Errorf("unsigned 64-bit integers have no Thrift representation")
	default:
		return nil, fmt.Errorf("basic type %s has no Thrift representation", t)
	}
}

func isEmptyStruct(t types.Type) bool {
	s, ok := t.Underlying().(*types.Struct)
	return ok && s.NumFields() == 0
}
