package huckleberry

// Limits defines resource limits applied while decoding.
type Limits struct {
	// MaxDepth is the maximum nesting depth for structs, containers,
	// and skipped values. A value of 0 means no limit.
	MaxDepth int

	// MaxBinaryLength is the maximum length of a binary or string
	// value in bytes. A value of 0 means no limit.
	MaxBinaryLength int

	// MaxContainerSize is the maximum number of elements in a list,
	// set, or map. A value of 0 means no limit.
	MaxContainerSize int
}

// DefaultLimits are the default resource limits.
// These are generous limits suitable for most use cases.
var DefaultLimits = Limits{
	MaxDepth:         64,
	MaxBinaryLength:  64 * 1024 * 1024, // 64 MB
	MaxContainerSize: 10_000_000,
}

// SecureLimits are conservative limits for untrusted input.
var SecureLimits = Limits{
	MaxDepth:         32,
	MaxBinaryLength:  1 * 1024 * 1024, // 1 MB
	MaxContainerSize: 100_000,
}

// NoLimits disables all resource limits.
// Use with caution - only for trusted input.
var NoLimits = Limits{}

// Options configures reader and writer behavior.
type Options struct {
	// Limits specifies decode resource limits.
	Limits Limits
}

// DefaultOptions are the default reader/writer options.
var DefaultOptions = Options{
	Limits: DefaultLimits,
}

// SecureOptions are conservative options for untrusted input.
var SecureOptions = Options{
	Limits: SecureLimits,
}
