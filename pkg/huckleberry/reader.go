package huckleberry

import (
	"github.com/blockberries/huckleberry/internal/wire"
)

// BinaryReader decodes values encoded with the Thrift Binary Protocol.
// It accepts both strict and non-strict message envelopes.
//
// The reader records the first error that occurs and turns all later
// operations into no-ops; check Err() after a batch of reads.
type BinaryReader struct {
	buf   *ReadBuffer
	opts  Options
	depth int
	err   error
}

// NewBinaryReader creates a BinaryReader over the given buffer with
// default options.
func NewBinaryReader(buf *ReadBuffer) *BinaryReader {
	return &BinaryReader{buf: buf, opts: DefaultOptions}
}

// NewBinaryReaderWithOptions creates a BinaryReader with the specified
// options.
func NewBinaryReaderWithOptions(buf *ReadBuffer, opts Options) *BinaryReader {
	return &BinaryReader{buf: buf, opts: opts}
}

// Err returns the first error that occurred during reading, if any.
func (r *BinaryReader) Err() error {
	return r.err
}

// setError records the first error that occurs.
func (r *BinaryReader) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// enterNested increases the nesting depth and checks limits.
func (r *BinaryReader) enterNested() bool {
	if r.opts.Limits.MaxDepth > 0 && r.depth >= r.opts.Limits.MaxDepth {
		r.setError(ErrMaxDepthExceeded)
		return false
	}
	r.depth++
	return true
}

// exitNested decreases the nesting depth.
func (r *BinaryReader) exitNested() {
	if r.depth > 0 {
		r.depth--
	}
}

// ReadBool reads a single byte and interprets it as a boolean.
func (r *BinaryReader) ReadBool() bool {
	return r.ReadByte() == 1
}

// ReadByte reads a signed 8-bit integer.
func (r *BinaryReader) ReadByte() int8 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.Read(wire.ByteSize)
	if err != nil {
		r.setError(err)
		return 0
	}
	return int8(b[0])
}

// ReadI16 reads a big-endian 16-bit integer.
func (r *BinaryReader) ReadI16() int16 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.Read(wire.I16Size)
	if err != nil {
		r.setError(err)
		return 0
	}
	v, _ := wire.DecodeI16(b)
	return v
}

// ReadI32 reads a big-endian 32-bit integer.
func (r *BinaryReader) ReadI32() int32 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.Read(wire.I32Size)
	if err != nil {
		r.setError(err)
		return 0
	}
	v, _ := wire.DecodeI32(b)
	return v
}

// ReadI64 reads a big-endian 64-bit integer.
func (r *BinaryReader) ReadI64() int64 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.Read(wire.I64Size)
	if err != nil {
		r.setError(err)
		return 0
	}
	v, _ := wire.DecodeI64(b)
	return v
}

// ReadDouble reads a big-endian IEEE-754 float64.
func (r *BinaryReader) ReadDouble() float64 {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.Read(wire.DoubleSize)
	if err != nil {
		r.setError(err)
		return 0
	}
	v, _ := wire.DecodeDouble(b)
	return v
}

// ReadBinary reads a length-prefixed binary blob. The returned slice
// is a copy and safe to retain.
func (r *BinaryReader) ReadBinary() []byte {
	n := r.ReadI32()
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.setError(NewProtocolErrorAt(r.buf.Pos(), "negative binary length", ErrNegativeLength))
		return nil
	}
	if r.opts.Limits.MaxBinaryLength > 0 && int(n) > r.opts.Limits.MaxBinaryLength {
		r.setError(ErrMaxBinaryLength)
		return nil
	}
	b, err := r.buf.Take(int(n))
	if err != nil {
		r.setError(err)
		return nil
	}
	return b
}

// ReadString reads a length-prefixed blob as a string.
func (r *BinaryReader) ReadString() string {
	n := r.ReadI32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.setError(NewProtocolErrorAt(r.buf.Pos(), "negative string length", ErrNegativeLength))
		return ""
	}
	if r.opts.Limits.MaxBinaryLength > 0 && int(n) > r.opts.Limits.MaxBinaryLength {
		r.setError(ErrMaxBinaryLength)
		return ""
	}
	b, err := r.buf.Read(int(n))
	if err != nil {
		r.setError(err)
		return ""
	}
	return string(b)
}

// ReadFieldBegin reads the next struct field header. It returns false
// when the struct-end byte is encountered or an error occurred;
// callers must test only the second return value.
func (r *BinaryReader) ReadFieldBegin() (FieldHeader, bool) {
	typ := r.ReadByte()
	if r.err != nil || typ == structEnd {
		return FieldHeader{Type: -1, ID: -1}, false
	}
	id := r.ReadI16()
	if r.err != nil {
		return FieldHeader{Type: -1, ID: -1}, false
	}
	return FieldHeader{Type: TType(typ), ID: id}, true
}

// ReadMapBegin reads a map header.
func (r *BinaryReader) ReadMapBegin() MapHeader {
	h := MapHeader{
		KeyType:   TType(r.ReadByte()),
		ValueType: TType(r.ReadByte()),
		Size:      r.ReadI32(),
	}
	r.checkSize(h.Size)
	return h
}

// ReadSetBegin reads a set header.
func (r *BinaryReader) ReadSetBegin() SetHeader {
	h := SetHeader{
		ValueType: TType(r.ReadByte()),
		Size:      r.ReadI32(),
	}
	r.checkSize(h.Size)
	return h
}

// ReadListBegin reads a list header.
func (r *BinaryReader) ReadListBegin() ListHeader {
	h := ListHeader{
		ValueType: TType(r.ReadByte()),
		Size:      r.ReadI32(),
	}
	r.checkSize(h.Size)
	return h
}

func (r *BinaryReader) checkSize(size int32) {
	if r.err != nil {
		return
	}
	if size < 0 {
		r.setError(NewProtocolErrorAt(r.buf.Pos(), "negative container size", ErrNegativeLength))
		return
	}
	if r.opts.Limits.MaxContainerSize > 0 && int(size) > r.opts.Limits.MaxContainerSize {
		r.setError(ErrMaxContainerSize)
	}
}

// ReadMessageBegin reads a message envelope, accepting both the strict
// and non-strict framing. Strict frames whose version is not 1 fail
// with ErrUnsupportedVersion.
func (r *BinaryReader) ReadMessageBegin() MessageHeader {
	size := r.ReadI32()
	if r.err != nil {
		return MessageHeader{}
	}

	if size < 0 {
		// Strict: (version | type):4 | name~4 | seqid:4
		version := (size & strictVersionMask) >> 16
		if version != 1 {
			r.setError(NewProtocolError("unsupported envelope version", ErrUnsupportedVersion))
			return MessageHeader{}
		}
		typ := MessageType(size & strictTypeMask)
		name := r.ReadString()
		seqid := r.ReadI32()
		if r.err != nil {
			return MessageHeader{}
		}
		return MessageHeader{Name: name, SeqID: seqid, Type: typ}
	}

	// Non-strict: name_len:4 | name | type:1 | seqid:4
	nameBytes, err := r.buf.Take(int(size))
	if err != nil {
		r.setError(err)
		return MessageHeader{}
	}
	typ := MessageType(r.ReadByte())
	seqid := r.ReadI32()
	if r.err != nil {
		return MessageHeader{}
	}
	return MessageHeader{Name: string(nameBytes), SeqID: seqid, Type: typ}
}

// ReadValue decodes an arbitrary wire value of the given type.
func (r *BinaryReader) ReadValue(t TType) Value {
	if r.err != nil {
		return nil
	}
	switch t {
	case TBool:
		return BoolValue(r.ReadBool())
	case TByte:
		return ByteValue(r.ReadByte())
	case TDouble:
		return DoubleValue(r.ReadDouble())
	case TI16:
		return I16Value(r.ReadI16())
	case TI32:
		return I32Value(r.ReadI32())
	case TI64:
		return I64Value(r.ReadI64())
	case TBinary:
		return BinaryValue(r.ReadBinary())
	case TStruct:
		if !r.enterNested() {
			return nil
		}
		defer r.exitNested()
		var fields []FieldValue
		for {
			h, more := r.ReadFieldBegin()
			if !more {
				break
			}
			v := r.ReadValue(h.Type)
			if r.err != nil {
				return nil
			}
			fields = append(fields, FieldValue{ID: h.ID, Type: h.Type, Value: v})
		}
		if r.err != nil {
			return nil
		}
		return NewStructValue(fields)
	case TMap:
		if !r.enterNested() {
			return nil
		}
		defer r.exitNested()
		h := r.ReadMapBegin()
		if r.err != nil {
			return nil
		}
		pairs := make([]MapPair, 0, h.Size)
		for i := int32(0); i < h.Size; i++ {
			k := r.ReadValue(h.KeyType)
			v := r.ReadValue(h.ValueType)
			if r.err != nil {
				return nil
			}
			pairs = append(pairs, MapPair{Key: k, Value: v})
		}
		return &MapValue{KeyType: h.KeyType, ValueType: h.ValueType, Pairs: pairs}
	case TSet:
		if !r.enterNested() {
			return nil
		}
		defer r.exitNested()
		h := r.ReadSetBegin()
		values := r.readElements(h.ValueType, h.Size)
		if r.err != nil {
			return nil
		}
		return &SetValue{ValueType: h.ValueType, Values: values}
	case TList:
		if !r.enterNested() {
			return nil
		}
		defer r.exitNested()
		h := r.ReadListBegin()
		values := r.readElements(h.ValueType, h.Size)
		if r.err != nil {
			return nil
		}
		return &ListValue{ValueType: h.ValueType, Values: values}
	default:
		r.setError(NewProtocolErrorAt(
			r.buf.Pos(), "unknown ttype "+t.String(), ErrUnknownTType,
		))
		return nil
	}
}

func (r *BinaryReader) readElements(t TType, size int32) []Value {
	if r.err != nil {
		return nil
	}
	values := make([]Value, 0, size)
	for i := int32(0); i < size; i++ {
		v := r.ReadValue(t)
		if r.err != nil {
			return nil
		}
		values = append(values, v)
	}
	return values
}

// Skip discards a value of the given type using the protocol's own
// structure, without materializing it. Unknown struct fields are
// skipped this way for forward compatibility.
func (r *BinaryReader) Skip(t TType) {
	if r.err != nil {
		return
	}
	switch t {
	case TBool, TByte:
		r.skipBytes(wire.ByteSize)
	case TDouble:
		r.skipBytes(wire.DoubleSize)
	case TI16:
		r.skipBytes(wire.I16Size)
	case TI32:
		r.skipBytes(wire.I32Size)
	case TI64:
		r.skipBytes(wire.I64Size)
	case TBinary:
		n := r.ReadI32()
		if r.err != nil {
			return
		}
		if n < 0 {
			r.setError(NewProtocolErrorAt(r.buf.Pos(), "negative binary length", ErrNegativeLength))
			return
		}
		r.skipBytes(int(n))
	case TStruct:
		if !r.enterNested() {
			return
		}
		defer r.exitNested()
		for {
			h, more := r.ReadFieldBegin()
			if !more {
				return
			}
			r.Skip(h.Type)
			if r.err != nil {
				return
			}
		}
	case TMap:
		if !r.enterNested() {
			return
		}
		defer r.exitNested()
		h := r.ReadMapBegin()
		if r.err != nil {
			return
		}
		for i := int32(0); i < h.Size; i++ {
			r.Skip(h.KeyType)
			r.Skip(h.ValueType)
			if r.err != nil {
				return
			}
		}
	case TSet:
		if !r.enterNested() {
			return
		}
		defer r.exitNested()
		h := r.ReadSetBegin()
		r.skipElements(h.ValueType, h.Size)
	case TList:
		if !r.enterNested() {
			return
		}
		defer r.exitNested()
		h := r.ReadListBegin()
		r.skipElements(h.ValueType, h.Size)
	default:
		r.setError(NewProtocolErrorAt(
			r.buf.Pos(), "cannot skip unknown ttype "+t.String(), ErrUnknownTType,
		))
	}
}

func (r *BinaryReader) skipBytes(n int) {
	if r.err != nil {
		return
	}
	if err := r.buf.Skip(n); err != nil {
		r.setError(err)
	}
}

func (r *BinaryReader) skipElements(t TType, size int32) {
	if r.err != nil {
		return
	}
	for i := int32(0); i < size; i++ {
		r.Skip(t)
		if r.err != nil {
			return
		}
	}
}

// DecodeValue deserializes a single wire value of the given type from
// bytes.
func DecodeValue(t TType, data []byte) (Value, error) {
	r := NewBinaryReader(NewReadBuffer(data))
	v := r.ReadValue(t)
	if r.Err() != nil {
		return nil, r.Err()
	}
	return v, nil
}
