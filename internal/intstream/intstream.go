// Package intstream implements the polymorphic unsigned-integer sequence
// abstraction used throughout the HDT triples and dictionary encodings:
// a sequence of uint64s, stored either as a fixed-width packed array
// ("Log64") or as per-entry VByte varints, dispatched on a persisted type
// tag so a reader can pick the right decoder without out-of-band
// information.
package intstream

import (
	"encoding/binary"
	"errors"

	"github.com/boutros/hdt/internal/bitutil"
)

// Tag identifies which concrete encoding a Stream uses on disk.
type Tag byte

const (
	TagLog64 Tag = iota + 1
	TagVByte
)

// ErrUnknownTag is returned when a stream's persisted tag byte does not
// match any known encoding.
var ErrUnknownTag = errors.New("intstream: unknown stream tag")

// Stream is a sequence of unsigned integers supporting random access.
type Stream interface {
	// Get returns the i-th element (0-based).
	Get(i int) uint64
	// Len returns the number of elements.
	Len() int
	// ByteSize returns the serialized size in bytes.
	ByteSize() int
	// Tag returns the encoding's type tag.
	Tag() Tag
	// Bytes serializes the stream, tag byte first.
	Bytes() []byte
}

// Builder accumulates values and picks an encoding for them once sealed.
type Builder struct {
	vals []uint64
	max  uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Append records the next value in the sequence.
func (b *Builder) Append(v uint64) {
	b.vals = append(b.vals, v)
	if v > b.max {
		b.max = v
	}
}

// Len returns the number of values appended so far.
func (b *Builder) Len() int { return len(b.vals) }

// BuildLog64 seals the builder into a fixed-width packed stream, with the
// width chosen as ceil(log2(max+1)) (spec.md §4.A/§4.C).
func (b *Builder) BuildLog64() *Log64 {
	width := bitutil.WidthFor(b.max)
	arr := bitutil.NewPackedArray(len(b.vals), width)
	for i, v := range b.vals {
		arr.Set(i, v)
	}
	return &Log64{arr: arr}
}

// BuildVByte seals the builder into a per-entry VByte stream.
func (b *Builder) BuildVByte() *VByte {
	v := &VByte{n: len(b.vals)}
	for _, x := range b.vals {
		var tmp [bitutil.MaxVByteLen]byte
		k := bitutil.PutUvarint(tmp[:], x)
		v.data = append(v.data, tmp[:k]...)
		v.offsets = append(v.offsets, len(v.data))
	}
	return v
}

// Log64 is a fixed-width packed integer stream.
type Log64 struct {
	arr *bitutil.PackedArray
}

func (s *Log64) Get(i int) uint64 { return s.arr.Get(i) }
func (s *Log64) Len() int         { return s.arr.Len() }
func (s *Log64) ByteSize() int    { return s.arr.ByteSize() }
func (s *Log64) Tag() Tag         { return TagLog64 }

func (s *Log64) Bytes() []byte {
	buf := []byte{byte(TagLog64)}
	return append(buf, s.arr.Bytes()...)
}

// LoadLog64 parses a Log64 stream's payload (after the tag byte has
// already been consumed).
func LoadLog64(buf []byte) (*Log64, int, error) {
	arr, n, err := bitutil.LoadPackedArray(buf)
	if err != nil {
		return nil, 0, err
	}
	return &Log64{arr: arr}, n, nil
}

// VByte is a per-entry variable-length integer stream. Entries are
// concatenated VByte encodings; offsets records each entry's end offset
// into data so Get(i) can slice directly instead of re-scanning from the
// start.
type VByte struct {
	data    []byte
	offsets []int
}

func (s *VByte) Get(i int) uint64 {
	start := 0
	if i > 0 {
		start = s.offsets[i-1]
	}
	v, _ := bitutil.Uvarint(s.data[start:s.offsets[i]])
	return v
}

func (s *VByte) Len() int      { return len(s.offsets) }
func (s *VByte) ByteSize() int { return len(s.data) }
func (s *VByte) Tag() Tag      { return TagVByte }

func (s *VByte) Bytes() []byte {
	buf := make([]byte, 0, 1+bitutil.MaxVByteLen+len(s.data))
	buf = append(buf, byte(TagVByte))
	var tmp [bitutil.MaxVByteLen]byte
	k := bitutil.PutUvarint(tmp[:], uint64(len(s.data)))
	buf = append(buf, tmp[:k]...)
	buf = append(buf, s.data...)
	return buf
}

// LoadVByte parses a VByte stream's payload (after the tag byte has
// already been consumed), reconstructing the offsets index by scanning
// once.
func LoadVByte(buf []byte) (*VByte, int, error) {
	size, k := binary.Uvarint(buf)
	if k <= 0 {
		return nil, 0, bitutil.ErrOutOfRange
	}
	off := k
	if len(buf) < off+int(size) {
		return nil, 0, bitutil.ErrOutOfRange
	}
	data := buf[off : off+int(size)]
	v := &VByte{data: append([]byte(nil), data...)}
	pos := 0
	for pos < len(data) {
		_, n := bitutil.Uvarint(data[pos:])
		if n <= 0 {
			return nil, 0, bitutil.ErrOutOfRange
		}
		pos += n
		v.offsets = append(v.offsets, pos)
	}
	return v, off + int(size), nil
}

// Load dispatches on the leading tag byte to parse any Stream.
func Load(buf []byte) (Stream, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrUnknownTag
	}
	tag := Tag(buf[0])
	switch tag {
	case TagLog64:
		s, n, err := LoadLog64(buf[1:])
		if err != nil {
			return nil, 0, err
		}
		return s, n + 1, nil
	case TagVByte:
		s, n, err := LoadVByte(buf[1:])
		if err != nil {
			return nil, 0, err
		}
		return s, n + 1, nil
	default:
		return nil, 0, ErrUnknownTag
	}
}
