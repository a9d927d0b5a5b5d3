// Package huckleberry implements the runtime core of a Thrift IDL
// compiler: the wire value model, bounded read/write buffers, and a
// bit-exact reader/writer pair for the Thrift Binary Protocol.
package huckleberry

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
// These can be checked using errors.Is().
var (
	// ErrEndOfInput indicates the input was shorter than expected.
	ErrEndOfInput = errors.New("huckleberry: unexpected end of input")

	// ErrUnsupportedVersion indicates a strict message envelope whose
	// version is not 1.
	ErrUnsupportedVersion = errors.New("huckleberry: unsupported envelope version")

	// ErrUnknownTType indicates an unknown type code was encountered
	// during value dispatch.
	ErrUnknownTType = errors.New("huckleberry: unknown ttype code")

	// ErrNegativeLength indicates a negative length prefix was decoded.
	ErrNegativeLength = errors.New("huckleberry: negative length")

	// ErrMaxDepthExceeded indicates the maximum nesting depth was exceeded.
	ErrMaxDepthExceeded = errors.New("huckleberry: maximum nesting depth exceeded")

	// ErrMaxBinaryLength indicates the maximum binary length was exceeded.
	ErrMaxBinaryLength = errors.New("huckleberry: maximum binary length exceeded")

	// ErrMaxContainerSize indicates the maximum container size was exceeded.
	ErrMaxContainerSize = errors.New("huckleberry: maximum container size exceeded")

	// ErrInvalidUTF8 indicates a string value contains invalid UTF-8.
	ErrInvalidUTF8 = errors.New("huckleberry: invalid UTF-8 string")
)

// ProtocolError indicates malformed data encountered during
// serialization or deserialization: a bad envelope, an unsupported
// version, or an unknown type code.
type ProtocolError struct {
	// Offset is the byte offset in the input where the error occurred,
	// or -1 if unknown.
	Offset int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *ProtocolError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("huckleberry: protocol error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("huckleberry: protocol error: %s", e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target.
func (e *ProtocolError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// NewProtocolError creates a new ProtocolError with no offset.
func NewProtocolError(message string, cause error) *ProtocolError {
	return &ProtocolError{Offset: -1, Message: message, Cause: cause}
}

// NewProtocolErrorAt creates a new ProtocolError with offset information.
func NewProtocolErrorAt(offset int, message string, cause error) *ProtocolError {
	return &ProtocolError{Offset: offset, Message: message, Cause: cause}
}

// TypeMismatchError indicates a host value did not match the type
// expected by a spec.
type TypeMismatchError struct {
	// Spec is the name of the spec that rejected the value.
	Spec string

	// Message describes the mismatch.
	Message string
}

func (e *TypeMismatchError) Error() string {
	if e.Spec != "" {
		return fmt.Sprintf("huckleberry: type mismatch for %q: %s", e.Spec, e.Message)
	}
	return fmt.Sprintf("huckleberry: type mismatch: %s", e.Message)
}

// NewTypeMismatchError creates a new TypeMismatchError.
func NewTypeMismatchError(spec, format string, args ...any) *TypeMismatchError {
	return &TypeMismatchError{Spec: spec, Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError indicates an integer value outside the signed range
// of its declared width.
type OutOfRangeError struct {
	// Spec is the name of the integer spec.
	Spec string

	// Value is the offending value.
	Value int64

	// Min and Max bound the acceptable range, inclusive.
	Min, Max int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf(
		"huckleberry: value %d out of range for %q (%d..%d)",
		e.Value, e.Spec, e.Min, e.Max,
	)
}

// MissingRequiredError indicates a required field was absent during
// construction or serialization.
type MissingRequiredError struct {
	// Struct is the name of the struct.
	Struct string

	// Field is the name of the missing field.
	Field string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf(
		"huckleberry: field %q of %q is required and cannot be absent",
		e.Field, e.Struct,
	)
}

// UnknownExceptionError indicates a deserialized function result
// contained an exception field this compilation does not know about.
type UnknownExceptionError struct {
	// Message describes the failure.
	Message string

	// Response is the raw wire struct of the result, for inspection.
	Response *StructValue
}

func (e *UnknownExceptionError) Error() string {
	return fmt.Sprintf("huckleberry: unknown exception: %s", e.Message)
}
