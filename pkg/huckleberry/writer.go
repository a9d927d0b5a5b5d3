package huckleberry

import (
	"github.com/blockberries/huckleberry/internal/wire"
)

// BinaryWriter encodes values using the Thrift Binary Protocol. All
// multi-byte integers and doubles are big-endian; message envelopes
// are always written in the strict form.
//
// The writer records the first error that occurs and turns all later
// operations into no-ops; check Err() after a batch of writes.
type BinaryWriter struct {
	buf *WriteBuffer
	err error
	// scratch avoids a per-write allocation for fixed-width values.
	scratch [8]byte
}

// NewBinaryWriter creates a BinaryWriter over the given buffer.
func NewBinaryWriter(buf *WriteBuffer) *BinaryWriter {
	return &BinaryWriter{buf: buf}
}

// Err returns the first error that occurred during writing, if any.
func (w *BinaryWriter) Err() error {
	return w.err
}

// setError records the first error that occurs.
func (w *BinaryWriter) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// WriteBool writes a boolean as a single 0 or 1 byte.
func (w *BinaryWriter) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WriteByte writes a signed 8-bit integer.
func (w *BinaryWriter) WriteByte(v int8) {
	if w.err != nil {
		return
	}
	w.buf.writeByte(byte(v))
}

// WriteI16 writes a big-endian 16-bit integer.
func (w *BinaryWriter) WriteI16(v int16) {
	if w.err != nil {
		return
	}
	w.buf.Write(wire.AppendI16(w.scratch[:0], v))
}

// WriteI32 writes a big-endian 32-bit integer.
func (w *BinaryWriter) WriteI32(v int32) {
	if w.err != nil {
		return
	}
	w.buf.Write(wire.AppendI32(w.scratch[:0], v))
}

// WriteI64 writes a big-endian 64-bit integer.
func (w *BinaryWriter) WriteI64(v int64) {
	if w.err != nil {
		return
	}
	w.buf.Write(wire.AppendI64(w.scratch[:0], v))
}

// WriteDouble writes a float64 as its big-endian IEEE-754 bit pattern.
func (w *BinaryWriter) WriteDouble(v float64) {
	if w.err != nil {
		return
	}
	w.buf.Write(wire.AppendDouble(w.scratch[:0], v))
}

// WriteBinary writes a length-prefixed binary blob:
// length:i32 followed by the raw bytes.
func (w *BinaryWriter) WriteBinary(b []byte) {
	w.WriteI32(int32(len(b)))
	if w.err != nil {
		return
	}
	w.buf.Write(b)
}

// WriteString writes a length-prefixed string without copying it to a
// byte slice first.
func (w *BinaryWriter) WriteString(s string) {
	w.WriteI32(int32(len(s)))
	if w.err != nil {
		return
	}
	w.buf.Write([]byte(s))
}

// WriteFieldBegin writes a struct field header: type:1 | id:2.
// No bytes are emitted between a field's value and the next header.
func (w *BinaryWriter) WriteFieldBegin(h FieldHeader) {
	w.WriteByte(int8(h.Type))
	w.WriteI16(h.ID)
}

// WriteStructEnd terminates a struct's field list with a 0 byte.
// No bytes are emitted at the start of a struct.
func (w *BinaryWriter) WriteStructEnd() {
	w.WriteByte(structEnd)
}

// WriteMapBegin writes a map header: ktype:1 | vtype:1 | size:4.
// Maps have no end marker.
func (w *BinaryWriter) WriteMapBegin(h MapHeader) {
	w.WriteByte(int8(h.KeyType))
	w.WriteByte(int8(h.ValueType))
	w.WriteI32(h.Size)
}

// WriteSetBegin writes a set header: type:1 | size:4.
func (w *BinaryWriter) WriteSetBegin(h SetHeader) {
	w.WriteByte(int8(h.ValueType))
	w.WriteI32(h.Size)
}

// WriteListBegin writes a list header: type:1 | size:4.
func (w *BinaryWriter) WriteListBegin(h ListHeader) {
	w.WriteByte(int8(h.ValueType))
	w.WriteI32(h.Size)
}

// WriteMessageBegin writes a message envelope in the strict form:
// (0x80010000 | type):4 | name_len:4 | name | seqid:4.
func (w *BinaryWriter) WriteMessageBegin(h MessageHeader) {
	w.WriteI32(strictVersion1 | int32(h.Type))
	w.WriteString(h.Name)
	w.WriteI32(h.SeqID)
}

// WriteValue encodes an arbitrary wire value.
func (w *BinaryWriter) WriteValue(v Value) {
	if w.err != nil {
		return
	}
	switch v := v.(type) {
	case BoolValue:
		w.WriteBool(bool(v))
	case ByteValue:
		w.WriteByte(int8(v))
	case DoubleValue:
		w.WriteDouble(float64(v))
	case I16Value:
		w.WriteI16(int16(v))
	case I32Value:
		w.WriteI32(int32(v))
	case I64Value:
		w.WriteI64(int64(v))
	case BinaryValue:
		w.WriteBinary(v)
	case *StructValue:
		for _, f := range v.Fields() {
			w.WriteFieldBegin(FieldHeader{Type: f.Type, ID: f.ID})
			w.WriteValue(f.Value)
		}
		w.WriteStructEnd()
	case *MapValue:
		w.WriteMapBegin(MapHeader{
			KeyType:   v.KeyType,
			ValueType: v.ValueType,
			Size:      int32(len(v.Pairs)),
		})
		for _, p := range v.Pairs {
			w.WriteValue(p.Key)
			w.WriteValue(p.Value)
		}
	case *SetValue:
		w.WriteSetBegin(SetHeader{
			ValueType: v.ValueType,
			Size:      int32(len(v.Values)),
		})
		for _, e := range v.Values {
			w.WriteValue(e)
		}
	case *ListValue:
		w.WriteListBegin(ListHeader{
			ValueType: v.ValueType,
			Size:      int32(len(v.Values)),
		})
		for _, e := range v.Values {
			w.WriteValue(e)
		}
	default:
		w.setError(NewProtocolError("cannot encode unknown value variant", ErrUnknownTType))
	}
}

// EncodeValue serializes a single wire value to bytes.
func EncodeValue(v Value) ([]byte, error) {
	buf := NewWriteBuffer()
	w := NewBinaryWriter(buf)
	w.WriteValue(v)
	if w.Err() != nil {
		return nil, w.Err()
	}
	return buf.Bytes(), nil
}
