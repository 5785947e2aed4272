package triples

import (
	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/dictionary"
	"github.com/boutros/hdt/internal/intstream"
)

// Plain stores triples as three parallel integer columns (X, Y, Z) in
// the receiver's Order, with no further compaction. It is a simple
// alternative to the Bitmap form.
type Plain struct {
	order Order
	x, y, z intstream.Stream
	n       int
}

// LoadFromList sorts list (if not already sorted) and copies its
// triples into three parallel Log64 streams in order.
func LoadFromList(list *List, order Order) *Plain {
	list.order = order
	list.Sort()
	list.RemoveDuplicates()

	xb := intstream.NewBuilder()
	yb := intstream.NewBuilder()
	zb := intstream.NewBuilder()
	for _, tid := range list.All() {
		x, y, z := order.components(tid)
		xb.Append(x)
		yb.Append(y)
		zb.Append(z)
	}
	return &Plain{
		order: order,
		x:     xb.BuildLog64(),
		y:     yb.BuildLog64(),
		z:     zb.BuildLog64(),
		n:     list.Len(),
	}
}

// Len returns the number of triples stored.
func (p *Plain) Len() int { return p.n }

// At returns the i-th triple (0-based), in the dataset's original
// (Subj,Pred,Obj) form regardless of storage Order.
func (p *Plain) At(i int) dictionary.TripleID {
	return p.order.assemble(p.x.Get(i), p.y.Get(i), p.z.Get(i))
}

// Search returns an Iterator over the triples matching pattern. A
// pattern with every component wildcarded iterates sequentially; any
// fixed component is enforced by a post-filter over the sequential
// scan.
func (p *Plain) Search(pattern dictionary.TripleID) Iterator {
	seq := &plainIterator{p: p}
	if pattern.Subj == 0 && pattern.Pred == 0 && pattern.Obj == 0 {
		return seq
	}
	return &filterIterator{inner: seq, pattern: pattern}
}

type plainIterator struct {
	p   *Plain
	pos int
}

func (it *plainIterator) HasNext() bool { return it.pos < it.p.Len() }
func (it *plainIterator) Next() dictionary.TripleID {
	tid := it.p.At(it.pos)
	it.pos++
	return tid
}
func (it *plainIterator) HasPrevious() bool { return it.pos > 0 }
func (it *plainIterator) Previous() dictionary.TripleID {
	it.pos--
	return it.p.At(it.pos)
}
func (it *plainIterator) GoToStart() { it.pos = 0 }

// Bytes serializes p: the storage order (one byte), the triple count
// (vbyte), then the X, Y and Z streams in turn.
func (p *Plain) Bytes() []byte {
	var buf []byte
	var tmp [bitutil.MaxVByteLen]byte
	buf = append(buf, byte(p.order))
	k := bitutil.PutUvarint(tmp[:], uint64(p.n))
	buf = append(buf, tmp[:k]...)
	buf = append(buf, p.x.Bytes()...)
	buf = append(buf, p.y.Bytes()...)
	buf = append(buf, p.z.Bytes()...)
	return buf
}

// LoadPlain parses a Plain previously written by Bytes, returning it
// and the number of bytes consumed.
func LoadPlain(buf []byte) (*Plain, int, error) {
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

	x, k1, err := intstream.Load(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += k1
	y, k2, err := intstream.Load(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += k2
	z, k3, err := intstream.Load(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += k3

	return &Plain{order: order, x: x, y: y, z: z, n: int(n)}, off, nil
}
