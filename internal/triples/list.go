package triples

import (
	"encoding/binary"
	"sort"

	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/dictionary"
)

// List is the mutable in-memory staging area triples are accumulated
// into before being sorted, deduplicated and compacted into a Plain or
// Bitmap store. It is also persisted as-is when triples.type is
// TriplesList or TriplesListDisk (see Bytes).
type List struct {
	ids   []dictionary.TripleID
	order Order
}

// NewList returns an empty List that will sort in the given Order.
func NewList(order Order) *List { return &List{order: order} }

// Insert appends tid to the list.
func (l *List) Insert(tid dictionary.TripleID) { l.ids = append(l.ids, tid) }

// Len returns the number of triples currently staged (including
// duplicates before RemoveDuplicates is called).
func (l *List) Len() int { return len(l.ids) }

// At returns the i-th staged triple.
func (l *List) At(i int) dictionary.TripleID { return l.ids[i] }

// Sort orders the staged triples by l's Order.
func (l *List) Sort() {
	sort.Slice(l.ids, func(i, j int) bool { return less(l.ids[i], l.ids[j], l.order) })
}

// RemoveDuplicates collapses adjacent equal triples, assuming Sort has
// already been called. It returns the number of triples removed.
func (l *List) RemoveDuplicates() int {
	if len(l.ids) == 0 {
		return 0
	}
	out := l.ids[:1]
	for _, tid := range l.ids[1:] {
		if !equal(tid, out[len(out)-1]) {
			out = append(out, tid)
		}
	}
	removed := len(l.ids) - len(out)
	l.ids = out
	return removed
}

// Search performs a linear scan, returning every staged triple
// matching pattern (a TripleID with zero components treated as
// wildcards).
func (l *List) Search(pattern dictionary.TripleID) []dictionary.TripleID {
	var out []dictionary.TripleID
	for _, tid := range l.ids {
		if matches(tid, pattern) {
			out = append(out, tid)
		}
	}
	return out
}

// SearchIter is Search wrapped in an Iterator, for callers (the join
// planner's Store contract) that need the same interface Plain and
// Bitmap expose regardless of which triples form backs them.
func (l *List) SearchIter(pattern dictionary.TripleID) Iterator {
	return newSliceIterator(l.Search(pattern))
}

func matches(tid, pattern dictionary.TripleID) bool {
	if pattern.Subj != 0 && pattern.Subj != tid.Subj {
		return false
	}
	if pattern.Pred != 0 && pattern.Pred != tid.Pred {
		return false
	}
	if pattern.Obj != 0 && pattern.Obj != tid.Obj {
		return false
	}
	return true
}

// All returns every staged triple, in current list order.
func (l *List) All() []dictionary.TripleID { return l.ids }

// Bytes serializes l as a flat, uncompacted triples list: the order
// byte, the triple count (vbyte), then each triple as three
// little-endian uint64s. This backs the persisted
// triples.type=TriplesList config option of spec.md §6 — it is never
// produced by default, since Bitmap is the default final form.
func (l *List) Bytes() []byte {
	var tmp [bitutil.MaxVByteLen]byte
	buf := []byte{byte(l.order)}
	k := bitutil.PutUvarint(tmp[:], uint64(len(l.ids)))
	buf = append(buf, tmp[:k]...)
	var wb [24]byte
	for _, tid := range l.ids {
		binary.LittleEndian.PutUint64(wb[0:8], tid.Subj)
		binary.LittleEndian.PutUint64(wb[8:16], tid.Pred)
		binary.LittleEndian.PutUint64(wb[16:24], tid.Obj)
		buf = append(buf, wb[:]...)
	}
	return buf
}

// LoadTriplesList parses a List previously written by Bytes, returning
// it and the number of bytes consumed.
func LoadTriplesList(buf []byte) (*List, int, error) {
	if len(buf) < 1 {
		return nil, 0, bitutil.ErrOutOfRange
	}
	order := Order(buf[0])
	off := 1
	n, k := bitutil.Uvarint(buf[off:])
	if k <= 0 {
		return nil, 0, bitutil.ErrOutOfRange
	}
	off += k

	need := off + 24*int(n)
	if len(buf) < need {
		return nil, 0, bitutil.ErrOutOfRange
	}
	ids := make([]dictionary.TripleID, n)
	for i := range ids {
		base := off + 24*i
		ids[i] = dictionary.TripleID{
			Subj: binary.LittleEndian.Uint64(buf[base : base+8]),
			Pred: binary.LittleEndian.Uint64(buf[base+8 : base+16]),
			Obj:  binary.LittleEndian.Uint64(buf[base+16 : base+24]),
		}
	}
	return &List{ids: ids, order: order}, need, nil
}
