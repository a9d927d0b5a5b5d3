package spec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
)

const userIDL = `
struct User {
    1: required string name
    2: optional string email
    3: required bool isActive = true
}
`

func TestStructConstruction(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")

	// Positional: required-without-default first.
	u, err := user.New("alice")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if u.Field("name") != "alice" {
		t.Errorf("name = %v", u.Field("name"))
	}
	if _, ok := u.Get("email"); ok {
		t.Error("email should be absent")
	}
	// The default applies when the field is unspecified.
	if u.Field("isActive") != true {
		t.Errorf("isActive = %v", u.Field("isActive"))
	}

	// Named construction.
	u2, err := user.Build(map[string]any{"name": "bob", "email": "b@x.io", "isActive": false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if u2.Field("email") != "b@x.io" || u2.Field("isActive") != false {
		t.Errorf("u2 = %v", u2)
	}
}

func TestStructMissingRequired(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")

	_, err := user.Build(map[string]any{"email": "x@y.z"})
	var missing *huckleberry.MissingRequiredError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingRequiredError", err)
	}
	if missing.Field != "name" {
		t.Errorf("missing field = %q, want name", missing.Field)
	}
}

func TestStructUnknownField(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")
	if _, err := user.Build(map[string]any{"name": "a", "nickname": "al"}); err == nil {
		t.Error("Build accepted an unknown field")
	}
}

func TestStructFieldValidationAtConstruction(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")
	if _, err := user.Build(map[string]any{"name": 42}); err == nil {
		t.Error("Build accepted a mistyped field")
	}
}

func TestStructTooManyArgs(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")
	if _, err := user.New("a", "b", true, "extra"); err == nil {
		t.Error("New accepted too many arguments")
	}
}

func TestStructWireVector(t *testing.T) {
	scope := compileScope(t, `
struct Greeting {
    1: required string name
}
`)
	greeting := structSpec(t, scope, "Greeting")
	g, err := greeting.New("Hi")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got := encodeHost(t, greeting, g)
	want := []byte{0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x48, 0x69, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("encoded % X, want % X", got, want)
	}
}

func TestStructRoundTrip(t *testing.T) {
	scope := compileScope(t, userIDL)
	user := structSpec(t, scope, "User")

	u, err := user.Build(map[string]any{"name": "alice", "email": "a@x.io", "isActive": false})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	roundTrip(t, user, u)

	// Absent optional fields stay absent through a round trip.
	u2, err := user.New("bob")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	decoded := decodeHost(t, user, encodeHost(t, user, u2)).(*Struct)
	if _, ok := decoded.Get("email"); ok {
		t.Error("absent optional field materialized")
	}
	if !u2.Equal(decoded) {
		t.Errorf("round trip: %v != %v", u2, decoded)
	}
}

func TestStructSkipsUnknownFields(t *testing.T) {
	// Encode with a wider struct, decode with a narrower spec: the
	// extra fields must be skipped and the result must equal decoding
	// the minimal image.
	scope := compileScope(t, `
struct V2 {
    1: required string name
    2: optional i64 added
    3: optional list<string> tags
}

struct V1 {
    1: required string name
}
`)
	v2 := structSpec(t, scope, "V2")
	v1 := structSpec(t, scope, "V1")

	wide, err := v2.Build(map[string]any{
		"name":  "x",
		"added": int64(42),
		"tags":  []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	narrow, err := v1.New("x")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	fromWide := decodeHost(t, v1, encodeHost(t, v2, wide)).(*Struct)
	fromNarrow := decodeHost(t, v1, encodeHost(t, v1, narrow)).(*Struct)
	if !fromWide.Equal(fromNarrow) {
		t.Errorf("skip-equivalence violated: %v != %v", fromWide, fromNarrow)
	}
}

func TestStructSkipsMismatchedFieldType(t *testing.T) {
	// Same field ID, different wire type: the field is skipped, and
	// since it was optional the struct still builds.
	scope := compileScope(t, `
struct A {
    1: optional i64 value
}

struct B {
    1: optional string value
}
`)
	a := structSpec(t, scope, "A")
	b := structSpec(t, scope, "B")

	av, err := a.Build(map[string]any{"value": int64(5)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	decoded := decodeHost(t, b, encodeHost(t, a, av)).(*Struct)
	if _, ok := decoded.Get("value"); ok {
		t.Error("mismatched field was not skipped")
	}
}

func TestStructDefaultsAreCopied(t *testing.T) {
	scope := compileScope(t, `
struct Box {
    1: optional list<i32> items = [1, 2]
}
`)
	box := structSpec(t, scope, "Box")

	first, err := box.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := box.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Mutating one instance's defaulted value must not leak.
	first.Field("items").([]any)[0] = int32(99)
	if !hostEqual(second.Field("items"), []any{int32(1), int32(2)}) {
		t.Errorf("default mutated across instances: %v", second.Field("items"))
	}
}

func TestStructIdentityValidation(t *testing.T) {
	scope := compileScope(t, userIDL+`
struct Account {
    1: required string name
}
`)
	user := structSpec(t, scope, "User")
	account := structSpec(t, scope, "Account")

	a, err := account.New("x")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// A value of a different spec is rejected even with a compatible
	// shape.
	if err := user.Validate(a); err == nil {
		t.Error("Validate accepted a value of another spec")
	}
}

func TestNestedStructs(t *testing.T) {
	scope := compileScope(t, `
struct Point {
    1: required double x
    2: required double y
}

struct Segment {
    1: required Point start
    2: required Point end
}
`)
	point := structSpec(t, scope, "Point")
	segment := structSpec(t, scope, "Segment")

	p1, _ := point.New(0.0, 1.0)
	p2, _ := point.New(2.0, 3.0)
	seg, err := segment.New(p1, p2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	roundTrip(t, segment, seg)
}

func TestRecursiveStructLinking(t *testing.T) {
	// Tree -> Leaf | Branch -> Tree is the canonical cyclic graph;
	// linking must terminate and produce a cyclic spec graph.
	scope := compileScope(t, `
union Tree {
    1: Leaf leaf
    2: Branch branch
}

struct Leaf {
    1: required i32 value
}

struct Branch {
    1: required Tree left
    2: required Tree right
}
`)
	tree := unionSpec(t, scope, "Tree")
	branch := structSpec(t, scope, "Branch")

	// The pointer graph must be cyclic: Branch.left resolves to the
	// same Tree spec.
	if branch.Fields()[0].Spec != TypeSpec(tree) {
		t.Error("Branch.left does not point back at Tree")
	}

	leaf := structSpec(t, scope, "Leaf")
	l1, _ := leaf.New(int32(1))
	l2, _ := leaf.New(int32(2))
	t1, err := tree.Build(map[string]any{"leaf": l1})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t2, err := tree.Build(map[string]any{"leaf": l2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := branch.New(t1, t2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	root, err := tree.Build(map[string]any{"branch": b})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	roundTrip(t, tree, root)
}

func TestExceptionSurface(t *testing.T) {
	scope := compileScope(t, `
exception NotFound {
    1: required string message
}
`)
	notFound := structSpec(t, scope, "NotFound")
	if !notFound.IsException() {
		t.Fatal("exception spec not marked error-like")
	}

	e, err := notFound.New("user missing")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	asErr := e.AsError()
	if asErr == nil {
		t.Fatal("AsError returned nil for an exception value")
	}
	if asErr.Error() == "" {
		t.Error("empty error message")
	}

	// Non-exception values are not errors.
	scope2 := compileScope(t, userIDL)
	u, _ := structSpec(t, scope2, "User").New("a")
	if u.AsError() != nil {
		t.Error("plain struct value reported error-like")
	}
}

func TestStrictModeRequiresRequiredness(t *testing.T) {
	_, err := tryCompileScope(`
struct S {
    1: i32 x
}
`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Errorf("err = %v, want CompileError", err)
	}
}

func TestDuplicateFieldChecks(t *testing.T) {
	for _, src := range []string{
		`struct S { 1: required i32 x 1: required i32 y }`,
		`struct S { 1: required i32 x 2: required i32 x }`,
		`struct S { required i32 x }`,
	} {
		if _, err := tryCompileScope(src); err == nil {
			t.Errorf("%q compiled", src)
		}
	}
}

func TestStructConstants(t *testing.T) {
	scope := compileScope(t, userIDL+`
const User GUEST = {"name": "guest", "isActive": false}
`)
	c, err := scope.ResolveConstSpec("GUEST", 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	guest, ok := c.Surface.(*Struct)
	if !ok {
		t.Fatalf("GUEST = %T", c.Surface)
	}
	if guest.Field("name") != "guest" || guest.Field("isActive") != false {
		t.Errorf("GUEST = %v", guest)
	}
}

func TestConstReferences(t *testing.T) {
	scope := compileScope(t, `
const i32 BASE = 10
const i32 ALIAS = BASE
const list<i32> LIST = [BASE, 20]
`)
	alias, err := scope.ResolveConstSpec("ALIAS", 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !hostEqual(alias.Surface, int32(10)) {
		t.Errorf("ALIAS = %v", alias.Surface)
	}
	list, err := scope.ResolveConstSpec("LIST", 0)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !hostEqual(list.Surface, []any{int32(10), int32(20)}) {
		t.Errorf("LIST = %v", list.Surface)
	}
}

func TestConstTypeMismatch(t *testing.T) {
	_, err := tryCompileScope(`const i32 BAD = "nope"`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Errorf("err = %v, want CompileError", err)
	}
}

func TestTypedefTransparency(t *testing.T) {
	scope := compileScope(t, `
typedef list<string> Names

struct Team {
    1: required Names members
}
`)
	// The typedef name resolves to the underlying spec.
	resolved := typeSpec(t, scope, "Names")
	if _, ok := resolved.(*ListTypeSpec); !ok {
		t.Errorf("Names resolved to %T", resolved)
	}

	team := structSpec(t, scope, "Team")
	if _, ok := team.Fields()[0].Spec.(*ListTypeSpec); !ok {
		t.Errorf("Team.members spec = %T", team.Fields()[0].Spec)
	}

	v, err := team.New([]any{"a", "b"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	roundTrip(t, team, v)
}

func TestUnresolvedReference(t *testing.T) {
	_, err := tryCompileScope(`
struct S {
    1: required Missing x
}
`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want CompileError", err)
	}
}
