package spec

import (
	"errors"
	"testing"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

const bodyIDL = `
union Body {
    1: string plainText
    2: binary richText
}
`

func TestUnionConstruction(t *testing.T) {
	scope := compileScope(t, bodyIDL)
	body := unionSpec(t, scope, "Body")

	b, err := body.Build(map[string]any{"plainText": "hello"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if b.Field("plainText") != "hello" {
		t.Errorf("plainText = %v", b.Field("plainText"))
	}
}

func TestUnionCardinality(t *testing.T) {
	scope := compileScope(t, bodyIDL)
	body := unionSpec(t, scope, "Body")

	// Zero fields.
	if _, err := body.Build(nil); err == nil {
		t.Error("empty union constructed")
	}
	// Two fields.
	_, err := body.Build(map[string]any{
		"plainText": "a",
		"richText":  []byte("b"),
	})
	if err == nil {
		t.Error("doubly-populated union constructed")
	}
	// Exactly one.
	if _, err := body.Build(map[string]any{"richText": []byte("ok")}); err != nil {
		t.Errorf("single-field union failed: %v", err)
	}
	// Nil values do not count as populated.
	if _, err := body.Build(map[string]any{"plainText": "a", "richText": nil}); err != nil {
		t.Errorf("nil-valued field counted as populated: %v", err)
	}
}

func TestUnionRoundTrip(t *testing.T) {
	scope := compileScope(t, bodyIDL)
	body := unionSpec(t, scope, "Body")

	b, err := body.Build(map[string]any{"plainText": "hello"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	roundTrip(t, body, b)
}

func TestUnionRequirednessRejected(t *testing.T) {
	_, err := tryCompileScope(`
union U {
    1: required string a
}
`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Errorf("required union field: err = %v, want CompileError", err)
	}

	_, err = tryCompileScope(`
union U {
    1: string a = "x"
}
`)
	if !errors.As(err, &cerr) {
		t.Errorf("defaulted union field: err = %v, want CompileError", err)
	}
}

func TestUnionWireShapeMatchesStruct(t *testing.T) {
	// A union and a struct with the same field layout produce the
	// same bytes.
	scope := compileScope(t, `
union U {
    1: i32 x
}

struct S {
    1: optional i32 x
}
`)
	u, err := unionSpec(t, scope, "U").Build(map[string]any{"x": int32(7)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	s, err := structSpec(t, scope, "S").Build(map[string]any{"x": int32(7)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ub := encodeHost(t, unionSpec(t, scope, "U"), u)
	sb := encodeHost(t, structSpec(t, scope, "S"), s)
	if string(ub) != string(sb) {
		t.Errorf("union bytes % X != struct bytes % X", ub, sb)
	}
}

func serviceFunction(t *testing.T, scope *Scope, service, fn string) *FunctionSpec {
	t.Helper()
	svc, err := scope.ResolveServiceSpec(service, 0)
	if err != nil {
		t.Fatalf("resolve service failed: %v", err)
	}
	f, ok := svc.Function(fn)
	if !ok {
		t.Fatalf("function %q not found", fn)
	}
	return f
}

const serviceIDL = `
exception NotFound {
    1: optional string message
}

struct Item {
    1: required string name
}

service Store {
    Item get(1: string name) throws (1: NotFound notFound)
    void ping()
    oneway void poke()
}
`

func TestFunctionSpecs(t *testing.T) {
	scope := compileScope(t, serviceIDL)
	get := serviceFunction(t, scope, "Store", "get")

	if get.ArgsSpec.Name() != "Store_get_request" {
		t.Errorf("args name = %q", get.ArgsSpec.Name())
	}
	if !get.ArgsSpec.IsRequest() || get.ArgsSpec.FunctionName() != "get" {
		t.Error("args spec missing request metadata")
	}
	if get.ResultSpec.Name() != "Store_get_response" {
		t.Errorf("result name = %q", get.ResultSpec.Name())
	}
	if !get.ResultSpec.IsResponse() {
		t.Error("result spec missing response metadata")
	}
	if get.ResultSpec.AllowEmpty {
		t.Error("non-void result allows empty")
	}

	fields := get.ResultSpec.Fields()
	if len(fields) != 2 || fields[0].ID != 0 || fields[0].Name != "success" {
		t.Fatalf("result fields = %+v", fields)
	}
	if fields[1].Name != "notFound" || fields[1].ID != 1 {
		t.Errorf("exception field = %+v", fields[1])
	}

	ping := serviceFunction(t, scope, "Store", "ping")
	if !ping.ResultSpec.AllowEmpty {
		t.Error("void result must allow empty")
	}

	poke := serviceFunction(t, scope, "Store", "poke")
	if !poke.OneWay || poke.ResultSpec != nil {
		t.Errorf("poke = %+v", poke)
	}
	if !poke.ArgsSpec.OneWay() {
		t.Error("oneway args spec not marked")
	}
}

func TestVoidResultAllowsEmpty(t *testing.T) {
	scope := compileScope(t, serviceIDL)
	ping := serviceFunction(t, scope, "Store", "ping")

	empty, err := ping.ResultSpec.Build(nil)
	if err != nil {
		t.Fatalf("empty void result rejected: %v", err)
	}
	decoded := decodeHost(t, ping.ResultSpec, encodeHost(t, ping.ResultSpec, empty)).(*Struct)
	if decoded.Len() != 0 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestUnknownExceptionOnRead(t *testing.T) {
	scope := compileScope(t, serviceIDL)
	get := serviceFunction(t, scope, "Store", "get")

	// A response whose only field has ID 7, which is neither 0 nor a
	// declared exception.
	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	w.WriteFieldBegin(huckleberry.FieldHeader{Type: huckleberry.TI32, ID: 7})
	w.WriteI32(99)
	w.WriteStructEnd()

	r := huckleberry.NewBinaryReader(huckleberry.NewReadBuffer(buf.Bytes()))
	_, err := get.ResultSpec.ReadFrom(r)
	var unknown *huckleberry.UnknownExceptionError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownExceptionError", err)
	}
	if unknown.Response == nil {
		t.Fatal("error does not carry the wire struct")
	}
	if _, ok := unknown.Response.Get(7, huckleberry.TI32); !ok {
		t.Error("wire struct does not contain the offending field")
	}

	// The same via the wire-value path.
	_, err = get.ResultSpec.FromWire(huckleberry.NewStructValue([]huckleberry.FieldValue{
		{ID: 7, Type: huckleberry.TI32, Value: huckleberry.I32Value(99)},
	}))
	if !errors.As(err, &unknown) {
		t.Errorf("FromWire err = %v, want UnknownExceptionError", err)
	}
}

func TestUnknownSuccessWideningSkipped(t *testing.T) {
	scope := compileScope(t, serviceIDL)
	ping := serviceFunction(t, scope, "Store", "ping")

	// ID 0 with a type the void result does not know is skipped.
	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	w.WriteFieldBegin(huckleberry.FieldHeader{Type: huckleberry.TI32, ID: 0})
	w.WriteI32(1)
	w.WriteStructEnd()

	r := huckleberry.NewBinaryReader(huckleberry.NewReadBuffer(buf.Bytes()))
	v, err := ping.ResultSpec.ReadFrom(r)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if v.(*Struct).Len() != 0 {
		t.Errorf("decoded = %v", v)
	}
}

func TestDeclaredExceptionRoundTrip(t *testing.T) {
	scope := compileScope(t, serviceIDL)
	get := serviceFunction(t, scope, "Store", "get")
	notFound := structSpec(t, scope, "NotFound")

	e, err := notFound.Build(map[string]any{"message": "nope"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	result, err := get.ResultSpec.Build(map[string]any{"notFound": e})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	decoded := decodeHost(t, get.ResultSpec, encodeHost(t, get.ResultSpec, result)).(*Struct)
	exc, ok := decoded.Get("notFound")
	if !ok {
		t.Fatal("exception field missing after round trip")
	}
	if exc.(*Struct).AsError() == nil {
		t.Error("decoded exception is not error-like")
	}
}

func TestOnewayConstraints(t *testing.T) {
	for _, src := range []string{
		`service S { oneway i32 f() }`,
		`service S { oneway void f() throws (1: NotFound e) }`,
	} {
		if _, err := tryCompileScope(src); err == nil {
			t.Errorf("%q compiled", src)
		}
	}
}

func TestServiceInheritance(t *testing.T) {
	scope := compileScope(t, `
service Base {
    void ping()
}

service Derived extends Base {
    void extra()
}
`)
	derived, err := scope.ResolveServiceSpec("Derived", 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := derived.Function("ping"); !ok {
		t.Error("inherited function not reachable")
	}
	if _, ok := derived.Function("extra"); !ok {
		t.Error("own function not reachable")
	}
	if derived.Parent == nil || derived.Parent.Name != "Base" {
		t.Errorf("parent = %+v", derived.Parent)
	}
}

func TestUnknownParentService(t *testing.T) {
	_, err := tryCompileScope(`service S extends Missing { void f() }`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Errorf("err = %v, want CompileError", err)
	}
}

func TestDuplicateFunctionNames(t *testing.T) {
	_, err := tryCompileScope(`service S { void f() void f() }`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Errorf("err = %v, want CompileError", err)
	}
}
