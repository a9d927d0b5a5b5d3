package huckleberry

import "sync"

// writeBufferPool provides pooled write buffers for reduced
// allocations on the serialization hot path.
var writeBufferPool = sync.Pool{
	New: func() any {
		return NewWriteBuffer()
	},
}

// GetWriteBuffer gets a WriteBuffer from the pool.
// The buffer should be returned with PutWriteBuffer when done.
func GetWriteBuffer() *WriteBuffer {
	buf := writeBufferPool.Get().(*WriteBuffer)
	buf.Reset()
	return buf
}

// PutWriteBuffer returns a WriteBuffer to the pool.
// The buffer must not be used after calling this.
func PutWriteBuffer(buf *WriteBuffer) {
	if buf == nil {
		return
	}
	// Don't pool large buffers to avoid memory bloat.
	if cap(buf.buf) > 64*1024 {
		return
	}
	buf.Reset()
	writeBufferPool.Put(buf)
}
