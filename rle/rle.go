// Package rle expands the (count, value) run-length streams stored in
// animation frame slots.
package rle

import (
	"errors"
	"fmt"
)

// ErrFormat is returned when a stream does not expand to exactly the
// expected number of bytes.
var ErrFormat = errors.New("rle: malformed stream")

// Decode expands src into dst. dst must already have the expected frame
// size; it is never grown. If the pairs in src over- or under-fill dst the
// contents of dst are undefined and must not be displayed.
func Decode(dst, src []byte) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("%w: odd length %d", ErrFormat, len(src))
	}

	pos := 0
	for i := 0; i < len(src); i += 2 {
		count := int(src[i])
		value := src[i+1]
		if pos+count > len(dst) {
			return fmt.Errorf("%w: overflows %d bytes at pair %d", ErrFormat, len(dst), i/2)
		}
		run := dst[pos : pos+count]
		for j := range run {
			run[j] = value
		}
		pos += count
	}

	if pos != len(dst) {
		return fmt.Errorf("%w: expands to %d bytes, want %d", ErrFormat, pos, len(dst))
	}
	return nil
}

// DecodedSize returns the number of bytes src expands to.
func DecodedSize(src []byte) (int, error) {
	if len(src)%2 != 0 {
		return 0, fmt.Errorf("%w: odd length %d", ErrFormat, len(src))
	}
	n := 0
	for i := 0; i < len(src); i += 2 {
		n += int(src[i])
	}
	return n, nil
}

// Encode appends the run-length encoding of src to dst. Runs longer than
// 255 bytes are split.
func Encode(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		value := src[i]
		count := 1
		for i+count < len(src) && src[i+count] == value && count < 255 {
			count++
		}
		dst = append(dst, byte(count), value)
		i += count
	}
	return dst
}
