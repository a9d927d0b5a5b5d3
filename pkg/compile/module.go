package compile

import (
	"fmt"

	"github.com/blockberries/huckleberry/pkg/huckleberry"
	"github.com/blockberries/huckleberry/pkg/spec"
)

// Module is a compiled Thrift document: the linked scope plus the
// public serialization entry points. Modules are immutable and safe
// for concurrent use.
type Module struct {
	name  string
	scope *spec.Scope
}

// NewModule binds a linked scope into a module.
func NewModule(name string, scope *spec.Scope) *Module {
	return &Module{name: name, scope: scope}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Scope exposes the module's compilation scope.
func (m *Module) Scope() *spec.Scope {
	return m.scope
}

// Type returns the linked type spec with the given name.
func (m *Module) Type(name string) (spec.TypeSpec, bool) {
	t, ok := m.scope.TypeSpecs()[name]
	return t, ok
}

// Service returns the linked service spec with the given name.
func (m *Module) Service(name string) (*spec.ServiceSpec, bool) {
	s, ok := m.scope.ServiceSpecs()[name]
	return s, ok
}

// Constant returns the linked value of the named constant.
func (m *Module) Constant(name string) (any, bool) {
	c, ok := m.scope.ConstSpecs()[name]
	if !ok {
		return nil, false
	}
	return c.Surface, true
}

// Dumps serializes a struct, union, or exception value using its
// bound type spec.
func (m *Module) Dumps(obj *spec.Struct) ([]byte, error) {
	buf := huckleberry.GetWriteBuffer()
	defer huckleberry.PutWriteBuffer(buf)

	w := huckleberry.NewBinaryWriter(buf)
	if err := obj.Spec().WriteTo(w, obj); err != nil {
		return nil, err
	}
	return buf.BytesCopy(), nil
}

// Loads deserializes bytes into a host value of the given type.
func (m *Module) Loads(t spec.TypeSpec, data []byte) (any, error) {
	r := huckleberry.NewBinaryReader(huckleberry.NewReadBuffer(data))
	return t.ReadFrom(r)
}

// DumpsMessage wraps a request or response value in a strict message
// envelope. Requests use CALL (or ONEWAY for oneway functions);
// responses use REPLY.
func (m *Module) DumpsMessage(obj *spec.Struct, seqid int32) ([]byte, error) {
	header, err := envelopeHeader(obj, seqid)
	if err != nil {
		return nil, err
	}

	buf := huckleberry.GetWriteBuffer()
	defer huckleberry.PutWriteBuffer(buf)

	w := huckleberry.NewBinaryWriter(buf)
	w.WriteMessageBegin(header)
	if err := obj.Spec().WriteTo(w, obj); err != nil {
		return nil, err
	}
	if w.Err() != nil {
		return nil, w.Err()
	}
	return buf.BytesCopy(), nil
}

func envelopeHeader(obj *spec.Struct, seqid int32) (huckleberry.MessageHeader, error) {
	switch sp := obj.Spec().(type) {
	case *spec.StructTypeSpec:
		if sp.IsRequest() {
			typ := huckleberry.CallMessage
			if sp.OneWay() {
				typ = huckleberry.OnewayMessage
			}
			return huckleberry.MessageHeader{
				Name:  sp.FunctionName(),
				SeqID: seqid,
				Type:  typ,
			}, nil
		}
	case *spec.UnionTypeSpec:
		if sp.IsResponse() {
			return huckleberry.MessageHeader{
				Name:  sp.FunctionName(),
				SeqID: seqid,
				Type:  huckleberry.ReplyMessage,
			}, nil
		}
	}
	return huckleberry.MessageHeader{}, huckleberry.NewTypeMismatchError(
		obj.Spec().Name(),
		"only function request and response values can be enveloped",
	)
}

// Message is a decoded message envelope with its deserialized body.
type Message struct {
	// Name is the function name from the envelope.
	Name string

	// SeqID correlates the message with its request.
	SeqID int32

	// Type is the envelope's message type.
	Type huckleberry.MessageType

	// Body is the request or response value.
	Body any
}

// LoadsMessage unwraps a message envelope and deserializes its body
// using the named function's request or response spec. An EXCEPTION
// body raises UnknownExceptionError carrying the wire struct.
func (m *Module) LoadsMessage(service *spec.ServiceSpec, data []byte) (*Message, error) {
	r := huckleberry.NewBinaryReader(huckleberry.NewReadBuffer(data))
	header := r.ReadMessageBegin()
	if r.Err() != nil {
		return nil, r.Err()
	}

	fn, ok := service.Function(header.Name)
	if !ok {
		return nil, huckleberry.NewProtocolError(
			fmt.Sprintf("service %q has no function %q", service.Name, header.Name), nil,
		)
	}

	var body any
	var err error
	switch header.Type {
	case huckleberry.CallMessage, huckleberry.OnewayMessage:
		body, err = fn.ArgsSpec.ReadFrom(r)
	case huckleberry.ReplyMessage:
		if fn.ResultSpec == nil {
			return nil, huckleberry.NewProtocolError(
				fmt.Sprintf("oneway function %q cannot have a reply", fn.Name), nil,
			)
		}
		body, err = fn.ResultSpec.ReadFrom(r)
	case huckleberry.ExceptionMessage:
		v := r.ReadValue(huckleberry.TStruct)
		if r.Err() != nil {
			return nil, r.Err()
		}
		return nil, &huckleberry.UnknownExceptionError{
			Message:  fmt.Sprintf("server error for %q", header.Name),
			Response: v.(*huckleberry.StructValue),
		}
	default:
		return nil, huckleberry.NewProtocolError(
			fmt.Sprintf("unknown message type %d", header.Type), nil,
		)
	}
	if err != nil {
		return nil, err
	}

	return &Message{
		Name:  header.Name,
		SeqID: header.SeqID,
		Type:  header.Type,
		Body:  body,
	}, nil
}
