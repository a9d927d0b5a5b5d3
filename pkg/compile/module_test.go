package compile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/spec"
)

func compileStore(t *testing.T) *Module {
	t.Helper()
	m, err := Compile("store", storeIDL)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return m
}

func storeType(t *testing.T, m *Module, name string) *spec.StructTypeSpec {
	t.Helper()
	ts, ok := m.Type(name)
	if !ok {
		t.Fatalf("type %q missing", name)
	}
	return ts.(*spec.StructTypeSpec)
}

func TestModuleDumpsLoads(t *testing.T) {
	m := compileStore(t)
	item := storeType(t, m, "Item")

	v, err := item.Build(map[string]any{
		"name":     "gadget",
		"status":   int32(1),
		"counters": map[any]any{"hits": int64(3)},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := m.Dumps(v)
	if err != nil {
		t.Fatalf("Dumps failed: %v", err)
	}
	back, err := m.Loads(item, data)
	if err != nil {
		t.Fatalf("Loads failed: %v", err)
	}
	if !v.Equal(back.(*spec.Struct)) {
		t.Errorf("round trip: %v != %v", v, back)
	}
}

func TestModuleDumpsWireVector(t *testing.T) {
	m, err := Compile("g", `
struct Greeting {
    1: required string name
}
`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	greeting := storeType(t, m, "Greeting")
	g, err := greeting.New("Hi")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	data, err := m.Dumps(g)
	if err != nil {
		t.Fatalf("Dumps failed: %v", err)
	}
	want := []byte{0x0B, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x48, 0x69, 0x00}
	if !bytes.Equal(data, want) {
		t.Errorf("Dumps = % X, want % X", data, want)
	}
}

func TestDumpsMessageCall(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")
	get, _ := svc.Function("get")

	req, err := get.ArgsSpec.Build(map[string]any{"name": "gadget"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := m.DumpsMessage(req, 7)
	if err != nil {
		t.Fatalf("DumpsMessage failed: %v", err)
	}

	// Strict envelope: version 1, CALL.
	if !bytes.HasPrefix(data, []byte{0x80, 0x01, 0x00, 0x01}) {
		t.Errorf("envelope prefix = % X", data[:4])
	}

	msg, err := m.LoadsMessage(svc, data)
	if err != nil {
		t.Fatalf("LoadsMessage failed: %v", err)
	}
	if msg.Name != "get" || msg.SeqID != 7 || msg.Type != huckleberry.CallMessage {
		t.Errorf("message = %+v", msg)
	}
	if msg.Body.(*spec.Struct).Field("name") != "gadget" {
		t.Errorf("body = %v", msg.Body)
	}
}

func TestDumpsMessageOneway(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")
	poke, _ := svc.Function("poke")

	req, err := poke.ArgsSpec.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := m.DumpsMessage(req, 0)
	if err != nil {
		t.Fatalf("DumpsMessage failed: %v", err)
	}
	if data[3] != byte(huckleberry.OnewayMessage) {
		t.Errorf("message type byte = %d, want oneway", data[3])
	}

	msg, err := m.LoadsMessage(svc, data)
	if err != nil {
		t.Fatalf("LoadsMessage failed: %v", err)
	}
	if msg.Type != huckleberry.OnewayMessage {
		t.Errorf("type = %v", msg.Type)
	}
}

func TestDumpsMessageReply(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")
	get, _ := svc.Function("get")
	item := storeType(t, m, "Item")

	result, err := item.New("gadget")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	resp, err := get.ResultSpec.Build(map[string]any{"success": result})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := m.DumpsMessage(resp, 7)
	if err != nil {
		t.Fatalf("DumpsMessage failed: %v", err)
	}
	if data[3] != byte(huckleberry.ReplyMessage) {
		t.Errorf("message type byte = %d, want reply", data[3])
	}

	msg, err := m.LoadsMessage(svc, data)
	if err != nil {
		t.Fatalf("LoadsMessage failed: %v", err)
	}
	success, ok := msg.Body.(*spec.Struct).Get("success")
	if !ok {
		t.Fatal("success field missing")
	}
	if success.(*spec.Struct).Field("name") != "gadget" {
		t.Errorf("success = %v", success)
	}
}

func TestDumpsMessageRejectsPlainStruct(t *testing.T) {
	m := compileStore(t)
	item := storeType(t, m, "Item")
	v, err := item.New("x")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := m.DumpsMessage(v, 0); err == nil {
		t.Error("DumpsMessage accepted a non-envelope value")
	}
}

func TestLoadsMessageNonStrict(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")

	// Non-strict CALL of ping with an empty body: scenario bytes.
	data := []byte{
		0x00, 0x00, 0x00, 0x04, 'p', 'i', 'n', 'g',
		0x01,
		0x00, 0x00, 0x00, 0x0A,
		0x00,
	}
	msg, err := m.LoadsMessage(svc, data)
	if err != nil {
		t.Fatalf("LoadsMessage failed: %v", err)
	}
	if msg.Name != "ping" || msg.SeqID != 10 || msg.Type != huckleberry.CallMessage {
		t.Errorf("message = %+v", msg)
	}
}

func TestLoadsMessageUnknownFunction(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")

	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	w.WriteMessageBegin(huckleberry.MessageHeader{
		Name: "nope", SeqID: 1, Type: huckleberry.CallMessage,
	})
	w.WriteStructEnd()

	_, err := m.LoadsMessage(svc, buf.Bytes())
	var perr *huckleberry.ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want ProtocolError", err)
	}
}

func TestLoadsMessageExceptionEnvelope(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")

	// A TApplicationException-style body under an EXCEPTION envelope.
	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	w.WriteMessageBegin(huckleberry.MessageHeader{
		Name: "get", SeqID: 3, Type: huckleberry.ExceptionMessage,
	})
	w.WriteFieldBegin(huckleberry.FieldHeader{Type: huckleberry.TBinary, ID: 1})
	w.WriteBinary([]byte("boom"))
	w.WriteStructEnd()

	_, err := m.LoadsMessage(svc, buf.Bytes())
	var unknown *huckleberry.UnknownExceptionError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownExceptionError", err)
	}
	if unknown.Response == nil {
		t.Error("error does not carry the wire struct")
	}
}

func TestLoadsMessageUnknownExceptionField(t *testing.T) {
	m := compileStore(t)
	svc, _ := m.Service("Store")

	// A REPLY whose body has field ID 7, unknown to the result spec.
	buf := huckleberry.NewWriteBuffer()
	w := huckleberry.NewBinaryWriter(buf)
	w.WriteMessageBegin(huckleberry.MessageHeader{
		Name: "get", SeqID: 3, Type: huckleberry.ReplyMessage,
	})
	w.WriteFieldBegin(huckleberry.FieldHeader{Type: huckleberry.TI32, ID: 7})
	w.WriteI32(1)
	w.WriteStructEnd()

	_, err := m.LoadsMessage(svc, buf.Bytes())
	var unknown *huckleberry.UnknownExceptionError
	if !errors.As(err, &unknown) {
		t.Errorf("err = %v, want UnknownExceptionError", err)
	}
}
