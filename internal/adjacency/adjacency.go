// Package adjacency implements the adjacency-list abstraction of
// spec.md §4.D: an integer stream paired with a delimiting bitmap,
// grouping the stream into variable-length, internally sorted lists.
//
// Group boundaries are derived from the bitmap's succinct select1: group
// x (1-based) is the run of stream positions ending at the x-th 1-bit
// (inclusive) and starting right after the (x-1)-th 1-bit, mirroring
// original_source/trunk/hdt-lib/src/stream/AdjacencyList.cpp's find/last
// pair (a group's last member is select1(x); each subsequent group picks
// up where the previous one's select1 left off).
package adjacency

import (
	"errors"

	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/intstream"
)

// ErrNotFound is returned by FindXY when a searched-for value is not a
// member of the given list's internally-sorted run. Spec.md §4.D treats
// this as "empty iterator", not an error condition callers must handle
// specially, but the adjacency list itself still needs to say so.
var ErrNotFound = errors.New("adjacency: value not found in list")

// List pairs an element stream with a bitmap that marks, for each
// element, whether it is the last member of its group.
type List struct {
	Elements intstream.Stream
	Bitmap   *bitutil.Bitmap // must be sealed
}

// New returns a List over the given, already-sealed bitmap.
func New(elements intstream.Stream, bitmap *bitutil.Bitmap) *List {
	return &List{Elements: elements, Bitmap: bitmap}
}

// CountLists returns the number of delimited groups (1-bits in Bitmap).
func (l *List) CountLists() uint64 {
	return l.Bitmap.CountOnes()
}

// Last returns the final stream position (0-based, inclusive) of group x
// (1-based): the position of the x-th 1-bit.
func (l *List) Last(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	pos, err := l.Bitmap.Select1(x)
	if err != nil {
		return uint64(l.Elements.Len()) - 1
	}
	return pos
}

// Find returns the first stream position (0-based) of group x (1-based):
// one past the previous group's last position, or 0 for the first group.
func (l *List) Find(x uint64) uint64 {
	if x <= 1 {
		return 0
	}
	return l.Last(x-1) + 1
}

// CountItemsY returns the number of elements in group x.
func (l *List) CountItemsY(x uint64) uint64 {
	if x == 0 || x > l.CountLists() {
		return 0
	}
	return l.Last(x) - l.Find(x) + 1
}

// Get returns the raw element stream value at position pos.
func (l *List) Get(pos uint64) uint64 {
	return l.Elements.Get(int(pos))
}

// FindXY returns the stream position of value y within group x, via
// binary search (groups are sorted ascending by construction of the
// triples builder). It returns ErrNotFound if y is not present.
func (l *List) FindXY(x uint64, y uint64) (uint64, error) {
	if x == 0 || x > l.CountLists() {
		return 0, ErrNotFound
	}
	begin := l.Find(x)
	end := l.Last(x)
	if int64(end) < int64(begin) {
		return 0, ErrNotFound
	}
	for begin <= end {
		mid := begin + (end-begin)/2
		v := l.Get(mid)
		switch {
		case y > v:
			begin = mid + 1
		case y < v:
			if mid == 0 {
				return 0, ErrNotFound
			}
			end = mid - 1
		default:
			return mid, nil
		}
	}
	return 0, ErrNotFound
}

// FindListIndex returns the (1-based) group owning the given global
// stream position.
func (l *List) FindListIndex(globalPos uint64) uint64 {
	r1, _ := l.Bitmap.Rank1(globalPos)
	if bit, _ := l.Bitmap.Access(globalPos); bit {
		return r1
	}
	return r1 + 1
}

// Bytes serializes the list: the element stream (tagged, self-framing)
// followed by the delimiting bitmap.
func (l *List) Bytes() []byte {
	buf := append([]byte(nil), l.Elements.Bytes()...)
	return append(buf, l.Bitmap.Bytes()...)
}

// LoadList parses a List previously written by Bytes, returning it and
// the number of bytes consumed.
func LoadList(buf []byte) (*List, int, error) {
	elements, n, err := intstream.Load(buf)
	if err != nil {
		return nil, 0, err
	}
	bm, m, err := bitutil.LoadBitmap(buf[n:])
	if err != nil {
		return nil, 0, err
	}
	return &List{Elements: elements, Bitmap: bm}, n + m, nil
}
