package huckleberry

// MessageType identifies the kind of a Thrift message envelope.
type MessageType int8

// Message envelope types.
const (
	CallMessage      MessageType = 1
	ReplyMessage     MessageType = 2
	ExceptionMessage MessageType = 3
	OnewayMessage    MessageType = 4
)

// String returns a human-readable name for the message type.
func (t MessageType) String() string {
	switch t {
	case CallMessage:
		return "call"
	case ReplyMessage:
		return "reply"
	case ExceptionMessage:
		return "exception"
	case OnewayMessage:
		return "oneway"
	default:
		return "unknown"
	}
}

// Strict envelope framing constants. The high bit of the leading i32
// distinguishes a strict envelope from a non-strict name length.
const (
	// strictVersion1 is the versioned prefix OR'd with the message
	// type on write: 1000 0000 0000 0001 0000 0000 0000 0000.
	strictVersion1 = -2147418112 // int32(0x80010000)

	// strictVersionMask extracts the version from a strict prefix.
	strictVersionMask = 0x7fff0000

	// strictTypeMask extracts the message type from a strict prefix.
	strictTypeMask = 0xff
)

// FieldHeader precedes every encoded struct field.
type FieldHeader struct {
	// Type is the wire type of the field value.
	Type TType

	// ID is the numeric field identifier.
	ID int16
}

// MapHeader precedes the pairs of an encoded map.
type MapHeader struct {
	KeyType   TType
	ValueType TType
	Size      int32
}

// SetHeader precedes the elements of an encoded set.
type SetHeader struct {
	ValueType TType
	Size      int32
}

// ListHeader precedes the elements of an encoded list.
type ListHeader struct {
	ValueType TType
	Size      int32
}

// MessageHeader is the decoded form of a message envelope.
type MessageHeader struct {
	// Name is the name of the function the message concerns.
	Name string

	// SeqID correlates a response with its request.
	SeqID int32

	// Type is the kind of message.
	Type MessageType
}
