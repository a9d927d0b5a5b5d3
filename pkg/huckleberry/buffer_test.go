package huckleberry

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadBufferBasic(t *testing.T) {
	r := NewReadBuffer([]byte{1, 2, 3, 4, 5})
	if r.Available() != 5 {
		t.Errorf("Available() = %d, want 5", r.Available())
	}

	b, err := r.Read(2)
	if err != nil {
		t.Fatalf("Read(2) failed: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2}) {
		t.Errorf("Read(2) = %v, want [1 2]", b)
	}
	if r.Pos() != 2 || r.Available() != 3 {
		t.Errorf("Pos/Available = %d/%d, want 2/3", r.Pos(), r.Available())
	}

	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip(2) failed: %v", err)
	}
	b, err = r.Take(1)
	if err != nil {
		t.Fatalf("Take(1) failed: %v", err)
	}
	if !bytes.Equal(b, []byte{5}) {
		t.Errorf("Take(1) = %v, want [5]", b)
	}
	if r.Available() != 0 {
		t.Errorf("Available() = %d, want 0", r.Available())
	}
}

func TestReadBufferEndOfInput(t *testing.T) {
	r := NewReadBuffer([]byte{1, 2})
	if _, err := r.Read(3); !errors.Is(err, ErrEndOfInput) {
		t.Errorf("Read(3) err = %v, want ErrEndOfInput", err)
	}
	// A failed read must not advance the offset.
	if r.Pos() != 0 {
		t.Errorf("Pos() after failed read = %d, want 0", r.Pos())
	}
	if err := r.Skip(5); !errors.Is(err, ErrEndOfInput) {
		t.Errorf("Skip(5) err = %v, want ErrEndOfInput", err)
	}
	if _, err := r.Take(3); !errors.Is(err, ErrEndOfInput) {
		t.Errorf("Take(3) err = %v, want ErrEndOfInput", err)
	}
}

func TestReadBufferTakeCopies(t *testing.T) {
	data := []byte{1, 2, 3}
	r := NewReadBuffer(data)
	b, err := r.Take(3)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	b[0] = 99
	if data[0] != 1 {
		t.Error("Take did not copy the underlying data")
	}
}

func TestReadBufferReset(t *testing.T) {
	r := NewReadBuffer([]byte{1})
	if _, err := r.Read(1); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	r.Reset([]byte{7, 8})
	if r.Pos() != 0 || r.Available() != 2 {
		t.Errorf("after Reset: Pos/Available = %d/%d, want 0/2", r.Pos(), r.Available())
	}
}

func TestWriteBufferBasic(t *testing.T) {
	w := NewWriteBuffer()
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
	w.Write([]byte("hello"))
	w.Write([]byte(" world"))
	if got := string(w.Bytes()); got != "hello world" {
		t.Errorf("Bytes() = %q, want %q", got, "hello world")
	}
	if w.Len() != 11 {
		t.Errorf("Len() = %d, want 11", w.Len())
	}

	w.Reset()
	if w.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", w.Len())
	}
}

func TestWriteBufferGrowth(t *testing.T) {
	w := NewWriteBufferSize(4)
	// Exceed the initial capacity repeatedly.
	for i := 0; i < 100; i++ {
		w.Write([]byte{byte(i), byte(i + 1), byte(i + 2)})
	}
	if w.Len() != 300 {
		t.Fatalf("Len() = %d, want 300", w.Len())
	}
	b := w.Bytes()
	for i := 0; i < 100; i++ {
		if b[i*3] != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i*3, b[i*3], byte(i))
		}
	}
}

func TestWriteBufferLargeSingleWrite(t *testing.T) {
	w := NewWriteBufferSize(8)
	// Doubling 8 is insufficient; the buffer must grow by the shortfall.
	big := make([]byte, 10_000)
	w.Write(big)
	if w.Len() != 10_000 {
		t.Errorf("Len() = %d, want 10000", w.Len())
	}
}

func TestWriteBufferBytesCopy(t *testing.T) {
	w := NewWriteBuffer()
	w.Write([]byte{1, 2, 3})
	c := w.BytesCopy()
	w.Reset()
	w.Write([]byte{9, 9, 9})
	if !bytes.Equal(c, []byte{1, 2, 3}) {
		t.Errorf("BytesCopy was aliased: %v", c)
	}
}

func TestWriteBufferPool(t *testing.T) {
	buf := GetWriteBuffer()
	buf.Write([]byte{1})
	PutWriteBuffer(buf)

	buf2 := GetWriteBuffer()
	if buf2.Len() != 0 {
		t.Errorf("pooled buffer not reset, Len() = %d", buf2.Len())
	}
	PutWriteBuffer(buf2)

	// PutWriteBuffer with nil should not panic.
	PutWriteBuffer(nil)
}
