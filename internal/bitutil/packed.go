package bitutil

import (
	"encoding/binary"
	"math/bits"
)

// PackedArray is a tightly packed array of n unsigned integers, each
// exactly width bits wide. It is the fixed-width ("Log64") encoding used
// by integer streams and by BitmapTriples' streamY/streamZ.
type PackedArray struct {
	words []uint64
	width uint
	n     int
}

// WidthFor returns the number of bits needed to represent every value in
// [0, max] (at least 1).
func WidthFor(max uint64) uint {
	if max == 0 {
		return 1
	}
	return uint(bits.Len64(max))
}

// NewPackedArray allocates a packed array holding n values, each width
// bits wide. All values are initially zero.
func NewPackedArray(n int, width uint) *PackedArray {
	if width == 0 {
		width = 1
	}
	nwords := (n*int(width) + 63) / 64
	return &PackedArray{words: make([]uint64, nwords), width: width, n: n}
}

// Len returns the number of elements in the array.
func (p *PackedArray) Len() int { return p.n }

// Width returns the bit width of each element.
func (p *PackedArray) Width() uint { return p.width }

// Get returns the i-th element.
func (p *PackedArray) Get(i int) uint64 {
	bitPos := i * int(p.width)
	wordIdx := bitPos / 64
	bitOff := uint(bitPos % 64)

	lo := p.words[wordIdx] >> bitOff
	if bitOff+p.width <= 64 {
		return lo & mask(p.width)
	}
	hi := p.words[wordIdx+1] << (64 - bitOff)
	return (lo | hi) & mask(p.width)
}

// Set stores v (truncated to width bits) as the i-th element.
func (p *PackedArray) Set(i int, v uint64) {
	v &= mask(p.width)
	bitPos := i * int(p.width)
	wordIdx := bitPos / 64
	bitOff := uint(bitPos % 64)

	p.words[wordIdx] &^= mask(p.width) << bitOff
	p.words[wordIdx] |= v << bitOff
	if bitOff+p.width > 64 {
		rem := bitOff + p.width - 64
		p.words[wordIdx+1] &^= mask(rem)
		p.words[wordIdx+1] |= v >> (p.width - rem)
	}
}

func mask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// ByteSize returns the serialized size in bytes.
func (p *PackedArray) ByteSize() int {
	return 8 * len(p.words)
}

// Bytes serializes the packed array: n (vbyte), width (vbyte), then the
// raw little-endian words.
func (p *PackedArray) Bytes() []byte {
	buf := make([]byte, 0, MaxVByteLen*2+p.ByteSize())
	var tmp [MaxVByteLen]byte
	k := binary.PutUvarint(tmp[:], uint64(p.n))
	buf = append(buf, tmp[:k]...)
	k = binary.PutUvarint(tmp[:], uint64(p.width))
	buf = append(buf, tmp[:k]...)
	for _, w := range p.words {
		var wb [8]byte
		binary.LittleEndian.PutUint64(wb[:], w)
		buf = append(buf, wb[:]...)
	}
	return buf
}

// LoadPackedArray parses a packed array previously written by Bytes. It
// returns the array and the number of bytes consumed.
func LoadPackedArray(buf []byte) (*PackedArray, int, error) {
	n, k1 := binary.Uvarint(buf)
	if k1 <= 0 {
		return nil, 0, ErrOutOfRange
	}
	width, k2 := binary.Uvarint(buf[k1:])
	if k2 <= 0 {
		return nil, 0, ErrOutOfRange
	}
	off := k1 + k2
	p := NewPackedArray(int(n), uint(width))
	need := off + p.ByteSize()
	if len(buf) < need {
		return nil, 0, ErrOutOfRange
	}
	for i := range p.words {
		p.words[i] = binary.LittleEndian.Uint64(buf[off+8*i:])
	}
	return p, need, nil
}
