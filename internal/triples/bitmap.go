package triples

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/boutros/hdt/internal/adjacency"
	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/dictionary"
	"github.com/boutros/hdt/internal/intstream"
)

// Bitmap is the compact adjacency-of-adjacency triple store: subjects
// are an implicit 1..n range, each subject's predicates are a group in
// (streamY, bitmapY), and each (subject,predicate) pair's objects are
// a group in (streamZ, bitmapZ). It is the main on-disk form HDT
// produces.
type Bitmap struct {
	order Order
	adjY  *adjacency.List // subject -> predicates
	adjZ  *adjacency.List // (subject,predicate) -> objects

	predIndex map[uint64]*roaring.Bitmap // predicate id -> streamY positions
	objIndex  map[uint64]*roaring.Bitmap // object id -> streamZ positions

	// Warnf, if non-nil, is called when a pattern needing a reverse
	// index falls back to a sequential scan because GenerateIndex was
	// never called.
	Warnf func(format string, args ...interface{})
}

// BuildBitmap sorts and deduplicates list, then compacts it into a
// Bitmap in SPO order (the only order this package indexes).
func BuildBitmap(list *List) *Bitmap {
	list.order = SPO
	list.Sort()
	list.RemoveDuplicates()

	yBuilder := intstream.NewBuilder()
	yBits := bitutil.NewBitmap()
	zBuilder := intstream.NewBuilder()
	zBits := bitutil.NewBitmap()

	triples := list.All()
	for i, tid := range triples {
		lastForSubj := i == len(triples)-1 || triples[i+1].Subj != tid.Subj
		lastForPair := lastForSubj || triples[i+1].Pred != tid.Pred
		if lastForPair {
			yBuilder.Append(tid.Pred)
			yBits.Append(lastForSubj)
		}

		zBuilder.Append(tid.Obj)
		zBits.Append(lastForPair)
	}
	yBits.Seal()
	zBits.Seal()

	return &Bitmap{
		order: SPO,
		adjY:  adjacency.New(yBuilder.BuildLog64(), yBits),
		adjZ:  adjacency.New(zBuilder.BuildLog64(), zBits),
	}
}

// NumTriples returns the total number of stored triples.
func (b *Bitmap) NumTriples() int { return b.adjZ.Elements.Len() }

// NumSubjects returns the number of distinct subjects.
func (b *Bitmap) NumSubjects() uint64 { return b.adjY.CountLists() }

// HasIndex reports whether GenerateIndex has been called.
func (b *Bitmap) HasIndex() bool { return b.predIndex != nil }

// GenerateIndex builds the reverse index supporting patterns whose
// fixed component comes after a wildcard in SPO storage order: (?,p,?),
// (?,?,o) and (?,p,o).
func (b *Bitmap) GenerateIndex() {
	predIndex := make(map[uint64]*roaring.Bitmap)
	n := b.adjY.Elements.Len()
	for yPos := 0; yPos < n; yPos++ {
		pred := b.adjY.Get(uint64(yPos))
		bm, ok := predIndex[pred]
		if !ok {
			bm = roaring.New()
			predIndex[pred] = bm
		}
		bm.Add(uint32(yPos))
	}

	objIndex := make(map[uint64]*roaring.Bitmap)
	m := b.adjZ.Elements.Len()
	for zPos := 0; zPos < m; zPos++ {
		obj := b.adjZ.Get(uint64(zPos))
		bm, ok := objIndex[obj]
		if !ok {
			bm = roaring.New()
			objIndex[obj] = bm
		}
		bm.Add(uint32(zPos))
	}

	b.predIndex = predIndex
	b.objIndex = objIndex
}

// predicatesOf returns the 0-based streamY position range [first,last]
// for subject s (1-based), or ok=false if s is out of range.
func (b *Bitmap) predicatesOf(s uint64) (first, last uint64, ok bool) {
	if s < 1 || s > b.NumSubjects() {
		return 0, 0, false
	}
	return b.adjY.Find(s), b.adjY.Last(s), true
}

// objectsOf returns the 0-based streamZ position range [first,last]
// for the (subject,predicate) pair located at yPos (0-based streamY
// position), or ok=false if that pair has no objects.
func (b *Bitmap) objectsOf(yPos uint64) (first, last uint64, ok bool) {
	listIdx := yPos + 1
	if listIdx < 1 || listIdx > b.adjZ.CountLists() {
		return 0, 0, false
	}
	return b.adjZ.Find(listIdx), b.adjZ.Last(listIdx), true
}

func (b *Bitmap) subjectAt(yPos uint64) uint64 { return b.adjY.FindListIndex(yPos) }
func (b *Bitmap) pairOf(zPos uint64) (yPos uint64) {
	return b.adjZ.FindListIndex(zPos) - 1
}

func (b *Bitmap) warnf(format string, args ...interface{}) {
	if b.Warnf != nil {
		b.Warnf(format, args...)
	}
}

// Search dispatches pattern to the appropriate navigation or reverse-
// index strategy among the eight (s,p,o) wildcard shapes, returning an
// Iterator over matching triples in storage order.
func (b *Bitmap) Search(pattern dictionary.TripleID) Iterator {
	switch {
	case pattern.Subj != 0 && pattern.Pred != 0 && pattern.Obj != 0:
		return b.searchSPO(pattern)
	case pattern.Subj != 0 && pattern.Pred != 0:
		return b.searchSP(pattern)
	case pattern.Subj != 0 && pattern.Obj != 0:
		return b.searchSO(pattern)
	case pattern.Subj != 0:
		return b.searchS(pattern)
	case pattern.Pred != 0 && pattern.Obj != 0:
		return b.searchPO(pattern)
	case pattern.Pred != 0:
		return b.searchP(pattern)
	case pattern.Obj != 0:
		return b.searchO(pattern)
	default:
		return b.searchAll()
	}
}

func (b *Bitmap) searchAll() Iterator {
	var out []dictionary.TripleID
	for yPos := 0; yPos < b.adjY.Elements.Len(); yPos++ {
		s := b.subjectAt(uint64(yPos))
		p := b.adjY.Get(uint64(yPos))
		first, last, ok := b.objectsOf(uint64(yPos))
		if !ok {
			continue
		}
		for zPos := first; zPos <= last; zPos++ {
			out = append(out, dictionary.TripleID{Subj: s, Pred: p, Obj: b.adjZ.Get(zPos)})
		}
	}
	return newSliceIterator(out)
}

// searchS iterates the predicate list of subject s, then the nested
// object lists — pattern shape (s,?,?).
func (b *Bitmap) searchS(pattern dictionary.TripleID) Iterator {
	var out []dictionary.TripleID
	first, last, ok := b.predicatesOf(pattern.Subj)
	if !ok {
		return newSliceIterator(nil)
	}
	for yPos := first; yPos <= last; yPos++ {
		p := b.adjY.Get(yPos)
		zFirst, zLast, ok := b.objectsOf(yPos)
		if !ok {
			continue
		}
		for zPos := zFirst; zPos <= zLast; zPos++ {
			out = append(out, dictionary.TripleID{Subj: pattern.Subj, Pred: p, Obj: b.adjZ.Get(zPos)})
		}
	}
	return newSliceIterator(out)
}

// searchSO iterates the predicates of s, filtering on object — shape (s,?,o).
func (b *Bitmap) searchSO(pattern dictionary.TripleID) Iterator {
	return &filterIterator{inner: b.searchS(pattern), pattern: pattern}
}

// searchSP iterates the objects under (s,p) — shape (s,p,?).
func (b *Bitmap) searchSP(pattern dictionary.TripleID) Iterator {
	yPos, err := b.adjY.FindXY(pattern.Subj, pattern.Pred)
	if err != nil {
		return newSliceIterator(nil)
	}
	first, last, ok := b.objectsOf(yPos)
	if !ok {
		return newSliceIterator(nil)
	}
	var out []dictionary.TripleID
	for zPos := first; zPos <= last; zPos++ {
		out = append(out, dictionary.TripleID{Subj: pattern.Subj, Pred: pattern.Pred, Obj: b.adjZ.Get(zPos)})
	}
	return newSliceIterator(out)
}

// searchSPO is a single exact lookup — shape (s,p,o).
func (b *Bitmap) searchSPO(pattern dictionary.TripleID) Iterator {
	it := b.searchSP(pattern)
	var out []dictionary.TripleID
	for it.HasNext() {
		tid := it.Next()
		if tid.Obj == pattern.Obj {
			out = append(out, tid)
			break
		}
	}
	return newSliceIterator(out)
}

// searchP uses the reverse predicate index — shape (?,p,?). Falls back
// to a full scan filtered on predicate if no index was generated.
func (b *Bitmap) searchP(pattern dictionary.TripleID) Iterator {
	if !b.HasIndex() {
		b.warnf("triples: no reverse index, falling back to scan for predicate pattern")
		return &filterIterator{inner: b.searchAll(), pattern: pattern}
	}
	bm, ok := b.predIndex[pattern.Pred]
	if !ok {
		return newSliceIterator(nil)
	}
	var out []dictionary.TripleID
	it := bm.Iterator()
	for it.HasNext() {
		yPos := uint64(it.Next())
		s := b.subjectAt(yPos)
		first, last, ok := b.objectsOf(yPos)
		if !ok {
			continue
		}
		for zPos := first; zPos <= last; zPos++ {
			out = append(out, dictionary.TripleID{Subj: s, Pred: pattern.Pred, Obj: b.adjZ.Get(zPos)})
		}
	}
	return newSliceIterator(out)
}

// searchO uses the reverse object index — shape (?,?,o).
func (b *Bitmap) searchO(pattern dictionary.TripleID) Iterator {
	if !b.HasIndex() {
		b.warnf("triples: no reverse index, falling back to scan for object pattern")
		return &filterIterator{inner: b.searchAll(), pattern: pattern}
	}
	bm, ok := b.objIndex[pattern.Obj]
	if !ok {
		return newSliceIterator(nil)
	}
	var out []dictionary.TripleID
	it := bm.Iterator()
	for it.HasNext() {
		zPos := uint64(it.Next())
		yPos := b.pairOf(zPos)
		s := b.subjectAt(yPos)
		p := b.adjY.Get(yPos)
		out = append(out, dictionary.TripleID{Subj: s, Pred: p, Obj: pattern.Obj})
	}
	return newSliceIterator(out)
}

// Bytes serializes b: the two adjacency lists (streamY+bitmapY,
// streamZ+bitmapZ) in turn. The reverse index is not persisted — it is
// a query-time accelerator rebuilt by GenerateIndex on load, per
// spec.md §4.J ("builds forward + reverse indexes on demand").
func (b *Bitmap) Bytes() []byte {
	buf := append([]byte(nil), b.adjY.Bytes()...)
	return append(buf, b.adjZ.Bytes()...)
}

// LoadBitmapTriples parses a Bitmap previously written by Bytes,
// returning it (in SPO order, with no reverse index yet built) and the
// number of bytes consumed.
func LoadBitmapTriples(buf []byte) (*Bitmap, int, error) {
	adjY, n, err := adjacency.LoadList(buf)
	if err != nil {
		return nil, 0, err
	}
	adjZ, m, err := adjacency.LoadList(buf[n:])
	if err != nil {
		return nil, 0, err
	}
	return &Bitmap{order: SPO, adjY: adjY, adjZ: adjZ}, n + m, nil
}

// searchPO intersects the predicate and object reverse indexes — shape (?,p,o).
func (b *Bitmap) searchPO(pattern dictionary.TripleID) Iterator {
	if !b.HasIndex() {
		b.warnf("triples: no reverse index, falling back to scan for predicate+object pattern")
		return &filterIterator{inner: b.searchAll(), pattern: pattern}
	}
	predBm, ok := b.predIndex[pattern.Pred]
	if !ok {
		return newSliceIterator(nil)
	}
	objBm, ok := b.objIndex[pattern.Obj]
	if !ok {
		return newSliceIterator(nil)
	}
	var out []dictionary.TripleID
	it := objBm.Iterator()
	for it.HasNext() {
		zPos := uint64(it.Next())
		yPos := b.pairOf(zPos)
		if predBm.Contains(uint32(yPos)) {
			s := b.subjectAt(yPos)
			out = append(out, dictionary.TripleID{Subj: s, Pred: pattern.Pred, Obj: pattern.Obj})
		}
	}
	return newSliceIterator(out)
}
