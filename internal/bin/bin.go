// Package bin reads and writes the 32-bit scalars that make up the
// Wayland wire format. The protocol transmits them in host byte
// order, so values are reinterpreted rather than serialized.
package bin

import (
	"io"
	"unsafe"
)

// Bytes returns v's in-memory representation.
func Bytes[T ~int32 | ~uint32](v T) [4]byte {
	return *(*[4]byte)(unsafe.Pointer(&v))
}

// Value reinterprets data as a T.
func Value[T ~int32 | ~uint32](data [4]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}

// Read reads exactly one T from r.
func Read[T ~int32 | ~uint32](r io.Reader) (T, error) {
	var data [4]byte
	_, err := io.ReadFull(r, data[:])
	if err != nil {
		return 0, err
	}
	return Value[T](data), nil
}

// Write writes v to w.
func Write[T ~int32 | ~uint32](w io.Writer, v T) error {
	data := Bytes(v)
	_, err := w.Write(data[:])
	return err
}
