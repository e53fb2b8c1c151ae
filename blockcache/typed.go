package blockcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/noxer/bytewriter"
)

// SizeOf gives the encoded size of T, in bytes. T must have a fixed layout as
// defined by [binary.Size]: fixed-size numbers, bools, arrays, and structs of
// those. Anything else panics.
func SizeOf[T any]() uint {
	var zero T
	size := binary.Size(zero)
	if size < 0 || reflect.TypeOf(zero).Kind() == reflect.Slice {
		panic(fmt.Sprintf("blockcache: %T has no fixed on-disk layout", zero))
	}
	return uint(size)
}

func decodeInto[T any](data []byte, order binary.ByteOrder, value *T) {
	err := binary.Read(bytes.NewReader(data), order, value)
	if err != nil {
		panic(fmt.Sprintf("blockcache: failed to decode %T: %s", *value, err.Error()))
	}
}

func encodeFrom[T any](data []byte, order binary.ByteOrder, value *T) {
	err := binary.Write(bytewriter.New(data), order, value)
	if err != nil {
		panic(fmt.Sprintf("blockcache: failed to encode %T: %s", *value, err.Error()))
	}
}

// Read decodes a T stored at `offset` in the block and returns the result of
// calling `fn` on it. The block's lock is held while `fn` runs.
//
// `offset + SizeOf[T]()` must not exceed the block size; violating this panics.
func Read[T any, V any](handle *Handle, offset uint, fn func(value *T) V) V {
	entry := handle.live()
	var result V

	entry.view(offset, SizeOf[T](), func(data []byte) {
		var value T
		decodeInto(data, entry.order, &value)
		result = fn(&value)
	})
	return result
}

// Modify decodes a T stored at `offset` in the block, lets `fn` change it, then
// writes back only the bytes whose encoding changed. Blank fields, padding and
// any bytes behind fields `fn` leaves alone keep their original contents. The
// block is marked dirty even if `fn` changes nothing. Bounds are checked as in
// [Read].
func Modify[T any, V any](handle *Handle, offset uint, fn func(value *T) V) V {
	entry := handle.live()
	var result V

	entry.update(offset, SizeOf[T](), func(data []byte) {
		var value T
		decodeInto(data, entry.order, &value)
		before := make([]byte, len(data))
		encodeFrom(before, entry.order, &value)

		result = fn(&value)

		after := make([]byte, len(data))
		encodeFrom(after, entry.order, &value)
		for i := range after {
			if after[i] != before[i] {
				data[i] = after[i]
			}
		}
	})
	return result
}

// Get is shorthand for reading a single T at `offset`.
func Get[T any](handle *Handle, offset uint) T {
	return Read(handle, offset, func(value *T) T { return *value })
}

// Set is shorthand for overwriting the T at `offset` with `value`.
func Set[T any](handle *Handle, offset uint, value T) {
	Modify(handle, offset, func(current *T) struct{} {
		*current = value
		return struct{}{}
	})
}
