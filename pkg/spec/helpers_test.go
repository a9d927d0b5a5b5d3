package spec

import (
	"testing"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/idl"
)

// compileScope gathers and links the definitions of a Thrift snippet
// so spec behavior can be tested without the full compiler front end.
func compileScope(t *testing.T, source string) *Scope {
	t.Helper()
	scope, err := tryCompileScope(source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return scope
}

func tryCompileScope(source string) (*Scope, error) {
	program, err := idl.Parse("test.thrift", source)
	if err != nil {
		return nil, err
	}

	scope := NewScope("test")
	for _, def := range program.Definitions {
		switch d := def.(type) {
		case *idl.Typedef:
			if err := scope.AddTypeSpec(d.Name, CompileTypedef(d), d.Line); err != nil {
				return nil, err
			}
		case *idl.Enum:
			enum, err := CompileEnum(d)
			if err != nil {
				return nil, err
			}
			if err := scope.AddTypeSpec(d.Name, enum, d.Line); err != nil {
				return nil, err
			}
			for _, item := range enum.Items {
				c := NewConstSpec(
					d.Name+"."+item.Name, enum,
					&idl.ConstInt{Value: int64(item.Value), Line: d.Line}, d.Line,
				)
				if err := scope.AddConstSpec(c); err != nil {
					return nil, err
				}
			}
		case *idl.Struct:
			s, err := CompileStruct(d, true)
			if err != nil {
				return nil, err
			}
			if err := scope.AddTypeSpec(d.Name, s, d.Line); err != nil {
				return nil, err
			}
		case *idl.Union:
			u, err := CompileUnion(d)
			if err != nil {
				return nil, err
			}
			if err := scope.AddTypeSpec(d.Name, u, d.Line); err != nil {
				return nil, err
			}
		case *idl.Exception:
			e, err := CompileException(d, true)
			if err != nil {
				return nil, err
			}
			if err := scope.AddTypeSpec(d.Name, e, d.Line); err != nil {
				return nil, err
			}
		case *idl.Const:
			if err := scope.AddConstSpec(CompileConst(d)); err != nil {
				return nil, err
			}
		case *idl.Service:
			s, err := CompileService(d)
			if err != nil {
				return nil, err
			}
			if err := scope.AddServiceSpec(s); err != nil {
				return nil, err
			}
		}
	}

	for name := range scope.TypeSpecs() {
		if _, err := scope.ResolveTypeSpec(name, 0); err != nil {
			return nil, err
		}
	}
	for name := range scope.ConstSpecs() {
		if _, err := scope.ResolveConstSpec(name, 0); err != nil {
			return nil, err
		}
	}
	for name := range scope.ServiceSpecs() {
		if _, err := scope.ResolveServiceSpec(name, 0); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

func typeSpec(t *testing.T, scope *Scope, name string) TypeSpec {
	t.Helper()
	spec, ok := scope.TypeSpecs()[name]
	if !ok {
		t.Fatalf("type %q not found", name)
	}
	return spec
}

func structSpec(t *testing.T, scope *Scope, name string) *StructTypeSpec {
	t.Helper()
	s, ok := typeSpec(t, scope, name).(*StructTypeSpec)
	if !ok {
		t.Fatalf("type %q is not a struct spec", name)
	}
	return s
}

func unionSpec(t *testing.T, scope *Scope, name string) *UnionTypeSpec {
	t.Helper()
	u, ok := typeSpec(t, scope, name).(*UnionTypeSpec)
	if !ok {
		t.Fatalf("type %q is not a union spec", name)
	}
	return u
}

// encodeHost serializes a host value through a spec.
func encodeHost(t *testing.T, s TypeSpec, value any) []byte {
	t.Helper()
	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	if err := s.WriteTo(w, value); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	return buf.BytesCopy()
}

// decodeHost deserializes a host value through a spec.
func decodeHost(t *testing.T, s TypeSpec, data []byte) any {
	t.Helper()
	r := huckleberry.NewBinaryReader(huckleberry.NewReadBuffer(data))
	v, err := s.ReadFrom(r)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	return v
}

// roundTrip pushes a host value through both bridge paths and checks
// that each reproduces the value.
func roundTrip(t *testing.T, s TypeSpec, value any) {
	t.Helper()

	// Wire value path.
	wv, err := s.ToWire(value)
	if err != nil {
		t.Fatalf("ToWire(%v) failed: %v", value, err)
	}
	back, err := s.FromWire(wv)
	if err != nil {
		t.Fatalf("FromWire failed: %v", err)
	}
	if !hostEqual(value, back) {
		t.Errorf("wire round trip of %v = %v", value, back)
	}

	// Streaming path.
	got := decodeHost(t, s, encodeHost(t, s, value))
	if !hostEqual(value, got) {
		t.Errorf("codec round trip of %v = %v", value, got)
	}

	// Primitive path.
	p, err := s.ToPrimitive(value)
	if err != nil {
		t.Fatalf("ToPrimitive(%v) failed: %v", value, err)
	}
	fromP, err := s.FromPrimitive(p)
	if err != nil {
		t.Fatalf("FromPrimitive(%v) failed: %v", p, err)
	}
	if !hostEqual(value, fromP) {
		t.Errorf("primitive round trip of %v = %v", value, fromP)
	}
}
