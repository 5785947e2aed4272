// Package bitutil provides the low-level integer and bit codecs that the
// rest of the HDT implementation builds on: VByte varint encoding, packed
// fixed-width integer arrays, and a succinct, rank/select-indexed bitmap.
package bitutil

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrOutOfRange is returned by Bitmap accessors when an index or rank
// argument falls outside the sealed bitmap's domain.
var ErrOutOfRange = errors.New("bitutil: index out of range")

// MaxVByteLen is the maximum number of bytes a single VByte-encoded
// uint64 can occupy.
const MaxVByteLen = binary.MaxVarintLen64

// PutUvarint writes x to buf in little-endian base-128 form (high bit of
// each byte set iff another byte follows) and returns the number of bytes
// written. buf must be at least MaxVByteLen bytes long.
func PutUvarint(buf []byte, x uint64) int {
	return binary.PutUvarint(buf, x)
}

// Uvarint decodes a VByte-encoded uint64 from the start of buf. It returns
// the value and the number of bytes consumed, or (0, 0) if buf does not
// hold a complete encoding.
func Uvarint(buf []byte) (uint64, int) {
	return binary.Uvarint(buf)
}

// WriteUvarint VByte-encodes x to w.
func WriteUvarint(w io.Writer, x uint64) (int, error) {
	var buf [MaxVByteLen]byte
	n := binary.PutUvarint(buf[:], x)
	return w.Write(buf[:n])
}

// ReadUvarint reads a single VByte-encoded uint64 from r.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}
