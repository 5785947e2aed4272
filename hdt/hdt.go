// Package hdt is the facade tying the internal HDT components
// together: building a container from an RDF stream, saving and
// loading the binary form, and answering single-pattern and
// multi-pattern (join) queries against a frozen container.
package hdt

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/boutros/hdt/internal/codec"
	"github.com/boutros/hdt/internal/dictionary"
	"github.com/boutros/hdt/internal/join"
	"github.com/boutros/hdt/internal/triples"
	"github.com/boutros/hdt/rdf"
)

// diskStagingList builds an in-memory, sorted, deduplicated List for a
// graph too large to comfortably sort in place, by staging triple ids
// through a DiskList first: insertion order doesn't matter, since
// DiskList.Each replays them in storage order for free off of Bolt's
// B+tree key order.
func diskStagingList(order triples.Order, g *rdf.Graph, dict *dictionary.Dictionary) (*triples.List, error) {
	f, err := os.CreateTemp("", "hdt-stage-*.db")
	if err != nil {
		return nil, wrapError(IOError, err)
	}
	path := f.Name()
	f.Close()

	dl, err := triples.OpenDiskList(path, order)
	if err != nil {
		return nil, wrapError(IOError, err)
	}
	defer dl.Close()

	for _, tr := range g.Triples() {
		tid := dictionary.TripleID{
			Subj: dict.StringToID(rdf.TermString(tr.Subj), dictionary.Subject),
			Pred: dict.StringToID(rdf.TermString(tr.Pred), dictionary.Predicate),
			Obj:  dict.StringToID(rdf.TermString(tr.Obj), dictionary.Object),
		}
		if err := dl.Insert(tid); err != nil {
			return nil, wrapError(IOError, err)
		}
	}

	list := triples.NewList(order)
	err = dl.Each(func(tid dictionary.TripleID) bool {
		list.Insert(tid)
		return true
	})
	if err != nil {
		return nil, wrapError(IOError, err)
	}
	return list, nil
}

// HDT is a frozen, read-optimized RDF graph: a dictionary mapping
// terms to ids, and exactly one of the three triples forms storing
// the id-encoded triples. It owns both exclusively; once built or
// loaded, an HDT is immutable and safe for concurrent readers (but not
// concurrent iterators — see spec.md §5).
type HDT struct {
	dict    *dictionary.Dictionary
	order   triples.Order
	bitmap  *triples.Bitmap
	plain   *triples.Plain
	list    *triples.List
	compact bool // bitmap built/loaded as triples.type=Compact: no reverse index

	header  *rdf.Graph
	options *Options
}

// NumTriples reports the number of stored triples.
func (h *HDT) NumTriples() int {
	switch {
	case h.bitmap != nil:
		return h.bitmap.NumTriples()
	case h.plain != nil:
		return h.plain.Len()
	case h.list != nil:
		return h.list.Len()
	default:
		return 0
	}
}

// Dictionary exposes the underlying term dictionary, for callers that
// need direct id<->string translation.
func (h *HDT) Dictionary() *dictionary.Dictionary { return h.dict }

// SetWarnf wires a diagnostic hook called whenever Search falls back to
// a sequential scan for lack of a reverse index (triples.type=Compact,
// or Bitmap before GenerateIndex). The library never logs on its own;
// a caller wanting these diagnostics passes log.Printf or similar.
func (h *HDT) SetWarnf(fn func(format string, args ...interface{})) {
	if h.bitmap != nil {
		h.bitmap.Warnf = fn
	}
}

// Header returns the descriptive metadata graph read from, or built
// for, this HDT.
func (h *HDT) Header() *rdf.Graph { return h.header }

func parseOrder(s string) (triples.Order, error) {
	switch s {
	case "", "SPO":
		return triples.SPO, nil
	case "SOP":
		return triples.SOP, nil
	case "PSO":
		return triples.PSO, nil
	case "POS":
		return triples.POS, nil
	case "OSP":
		return triples.OSP, nil
	case "OPS":
		return triples.OPS, nil
	default:
		return 0, newError(InvalidState, "unrecognized triples.component.order %q", s)
	}
}

// LoadFromRDF builds a new HDT from an N-Triples stream: terms are
// collected into a dictionary, triples are resolved to ids, sorted,
// deduplicated, and compacted into the triples.type named by opts (nil
// for the documented defaults). This is the only way to construct an
// HDT other than Open/Load — there is no incremental insert once a
// dictionary is frozen, per spec.md §3 Lifecycle.
func LoadFromRDF(r io.Reader, opts *Options) (*HDT, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	order, err := parseOrder(opts.ComponentOrder)
	if err != nil {
		return nil, err
	}

	dec := rdf.NewDecoder(r)
	g, err := dec.DecodeAll()
	if err != nil {
		return nil, newParseError(0, "%v", err)
	}

	plain := dictionary.NewPlain()
	for _, tr := range g.Triples() {
		if err := plain.Insert(rdf.TermString(tr.Subj), dictionary.Subject); err != nil {
			return nil, wrapError(InvalidState, err)
		}
		if err := plain.Insert(rdf.TermString(tr.Pred), dictionary.Predicate); err != nil {
			return nil, wrapError(InvalidState, err)
		}
		if err := plain.Insert(rdf.TermString(tr.Obj), dictionary.Object); err != nil {
			return nil, wrapError(InvalidState, err)
		}
	}
	sections, err := plain.Freeze()
	if err != nil {
		return nil, wrapError(InvalidState, err)
	}
	dict := dictionary.New(sections, opts.DictBlockSize)

	h := &HDT{dict: dict, order: triples.SPO, options: opts}
	switch opts.TriplesType {
	case "TriplesListDisk":
		// Stages through a BoltDB-backed DiskList instead of sorting an
		// in-memory slice, for graphs too large to sort comfortably in
		// place.
		list, err := diskStagingList(order, g, dict)
		if err != nil {
			return nil, err
		}
		h.order = order
		h.list = list
	default:
		list := triples.NewList(order)
		for _, tr := range g.Triples() {
			list.Insert(dictionary.TripleID{
				Subj: dict.StringToID(rdf.TermString(tr.Subj), dictionary.Subject),
				Pred: dict.StringToID(rdf.TermString(tr.Pred), dictionary.Predicate),
				Obj:  dict.StringToID(rdf.TermString(tr.Obj), dictionary.Object),
			})
		}
		switch opts.TriplesType {
		case "", "Bitmap":
			h.bitmap = triples.BuildBitmap(list)
			h.bitmap.GenerateIndex()
		case "Compact":
			// Same wire format as Bitmap, but no reverse index: patterns
			// needing one fall back to a sequential scan (Bitmap.Warnf).
			h.bitmap = triples.BuildBitmap(list)
			h.compact = true
		case "Plain":
			h.order = order
			h.plain = triples.LoadFromList(list, order)
		case "TriplesList":
			list.Sort()
			list.RemoveDuplicates()
			h.order = order
			h.list = list
		default:
			return nil, newError(InvalidState, "unrecognized triples.type %q", opts.TriplesType)
		}
	}

	if !opts.NoHeader {
		h.header = buildHeader(h, opts, time.Now())
	} else {
		h.header = rdf.NewGraph()
	}
	return h, nil
}

// Open reads an HDT container previously written by Save from path.
func Open(path string) (*HDT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapError(IOError, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads an HDT container previously written by Save from r.
func Load(r io.Reader) (*HDT, error) {
	c, err := codec.ReadContainer(r)
	if err != nil {
		return nil, wrapError(FormatError, err)
	}

	h := &HDT{dict: c.Dictionary, options: DefaultOptions()}
	if c.DictCI != nil {
		if v, ok := c.DictCI.Get("dictionary.type"); ok {
			h.options.DictionaryType = v
		}
		if v, ok := c.DictCI.Get("dict.block.size"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				h.options.DictBlockSize = n
			}
		}
	}
	if c.TriplesCI != nil {
		if v, ok := c.TriplesCI.Get("triples.component.order"); ok {
			h.options.ComponentOrder = v
		}
	}

	switch c.Triples.Tag {
	case codec.TagTriplesBitmap:
		h.bitmap = c.Triples.Bitmap
		h.bitmap.GenerateIndex()
	case codec.TagTriplesCompact:
		h.bitmap = c.Triples.Bitmap
		h.compact = true
	case codec.TagTriplesPlain:
		h.plain = c.Triples.Plain
		h.order = c.Triples.Order
	case codec.TagTriplesList:
		h.list = c.Triples.List
		h.order = c.Triples.Order
	default:
		return nil, newError(FormatError, "unrecognized triples section tag %d", c.Triples.Tag)
	}

	if len(c.HeaderBytes) > 0 {
		g, err := rdf.NewDecoder(bytes.NewReader(c.HeaderBytes)).DecodeAll()
		if err != nil {
			return nil, newParseError(0, "decoding header section: %v", err)
		}
		h.header = g
	} else {
		h.header = rdf.NewGraph()
	}
	return h, nil
}

// Save serializes h to path, overwriting any existing file.
func (h *HDT) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return wrapError(IOError, err)
	}
	defer f.Close()
	if err := h.writeTo(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return wrapError(IOError, err)
	}
	return nil
}

func (h *HDT) writeTo(w io.Writer) error {
	headerCI := codec.NewControlInformation(codec.KindHeader)
	headerCI.Set("format", "ntriples")

	dictCI := codec.NewControlInformation(codec.KindDictionary)
	dictCI.Set("dictionary.type", "PFC")
	if h.options != nil {
		dictCI.Set("dict.block.size", strconv.Itoa(h.options.DictBlockSize))
	}

	triplesCI := codec.NewControlInformation(codec.KindTriples)
	triplesCI.Set("triples.component.order", h.order.String())

	ts, err := h.triplesSection()
	if err != nil {
		return err
	}
	triplesCI.Set("triples.type", string(triplesTypeName(ts.Tag)))

	var headerBytes []byte
	if h.header != nil {
		headerBytes = encodeHeader(h.header)
	}

	c := &codec.Container{
		HeaderCI:    headerCI,
		HeaderBytes: headerBytes,
		DictCI:      dictCI,
		Dictionary:  h.dict,
		TriplesCI:   triplesCI,
		Triples:     ts,
	}
	if err := codec.WriteContainer(w, c); err != nil {
		return wrapError(IOError, err)
	}
	return nil
}

// HeaderBytes returns the header section's standalone encoding, the
// same bytes rdf2hdt's "-H" flag writes to its own file.
func (h *HDT) HeaderBytes() []byte {
	if h.header == nil {
		return nil
	}
	return encodeHeader(h.header)
}

// DictionaryBytes returns the dictionary section's standalone
// encoding, the same bytes rdf2hdt's "-D" flag writes to its own file.
func (h *HDT) DictionaryBytes() []byte {
	return codec.EncodeDictionary(h.dict)
}

// TriplesBytes returns the triples section's standalone encoding, the
// same bytes rdf2hdt's "-T" flag writes to its own file.
func (h *HDT) TriplesBytes() ([]byte, error) {
	ts, err := h.triplesSection()
	if err != nil {
		return nil, err
	}
	b, err := codec.EncodeTriples(ts)
	if err != nil {
		return nil, wrapError(FormatError, err)
	}
	return b, nil
}

func (h *HDT) triplesSection() (codec.TriplesSection, error) {
	switch {
	case h.bitmap != nil:
		tag := codec.TagTriplesBitmap
		if h.compact {
			tag = codec.TagTriplesCompact
		}
		return codec.TriplesSection{Tag: tag, Bitmap: h.bitmap}, nil
	case h.plain != nil:
		return codec.TriplesSection{Tag: codec.TagTriplesPlain, Order: h.order, Plain: h.plain}, nil
	case h.list != nil:
		return codec.TriplesSection{Tag: codec.TagTriplesList, Order: h.order, List: h.list}, nil
	default:
		return codec.TriplesSection{}, newError(InvalidState, "HDT has no triples store to save")
	}
}

func triplesTypeName(tag codec.SectionTag) string {
	switch tag {
	case codec.TagTriplesBitmap:
		return "Bitmap"
	case codec.TagTriplesCompact:
		return "Compact"
	case codec.TagTriplesPlain:
		return "Plain"
	case codec.TagTriplesList:
		return "TriplesList"
	default:
		return "unknown"
	}
}

// searchIDs dispatches pattern to whichever triples form backs h.
func (h *HDT) searchIDs(pattern dictionary.TripleID) triples.Iterator {
	switch {
	case h.bitmap != nil:
		return h.bitmap.Search(pattern)
	case h.plain != nil:
		return h.plain.Search(pattern)
	case h.list != nil:
		return h.list.SearchIter(pattern)
	default:
		panic("hdt: HDT has no triples store")
	}
}

// TripleIterator walks Search's matching triples, translating each
// back into an rdf.Triple as it is consumed.
type TripleIterator struct {
	h     *HDT
	inner triples.Iterator
}

// HasNext reports whether another triple remains.
func (it *TripleIterator) HasNext() bool { return it.inner.HasNext() }

// Next returns the next matching triple.
func (it *TripleIterator) Next() (rdf.Triple, error) {
	tid := it.inner.Next()
	return it.h.toTriple(tid)
}

func (h *HDT) toTriple(tid dictionary.TripleID) (rdf.Triple, error) {
	s, err := h.dict.IDToString(tid.Subj, dictionary.Subject)
	if err != nil {
		return rdf.Triple{}, wrapError(FormatError, err)
	}
	p, err := h.dict.IDToString(tid.Pred, dictionary.Predicate)
	if err != nil {
		return rdf.Triple{}, wrapError(FormatError, err)
	}
	o, err := h.dict.IDToString(tid.Obj, dictionary.Object)
	if err != nil {
		return rdf.Triple{}, wrapError(FormatError, err)
	}
	subjTerm, err := rdf.ParseTerm(s)
	if err != nil {
		return rdf.Triple{}, newParseError(0, "subject %q: %v", s, err)
	}
	predTerm, err := rdf.ParseTerm(p)
	if err != nil {
		return rdf.Triple{}, newParseError(0, "predicate %q: %v", p, err)
	}
	objTerm, err := rdf.ParseTerm(o)
	if err != nil {
		return rdf.Triple{}, newParseError(0, "object %q: %v", o, err)
	}
	return rdf.Triple{Subj: subjTerm.(rdf.URI), Pred: predTerm.(rdf.URI), Obj: objTerm}, nil
}

// Search resolves a triple pattern and returns an iterator over
// matching triples in storage order. Each of subj, pred, obj is either
// empty (a wildcard, matching spec.md §3's TripleID) or a term in
// rdf.TermString's canonical form — "<uri>", "_:label" or a quoted
// literal.
func (h *HDT) Search(subj, pred, obj string) *TripleIterator {
	pattern := h.dict.TripleStringToTripleID(subj, pred, obj)
	return &TripleIterator{h: h, inner: h.searchIDs(pattern)}
}

// Dump writes every stored triple to w as N-Triples, in storage order.
func (h *HDT) Dump(w io.Writer) error {
	enc := rdf.NewEncoder(w)
	it := h.Search("", "", "")
	for it.HasNext() {
		tr, err := it.Next()
		if err != nil {
			return err
		}
		if err := enc.Encode(tr); err != nil {
			return wrapError(IOError, err)
		}
	}
	if err := enc.Flush(); err != nil {
		return wrapError(IOError, err)
	}
	return nil
}

// joinStore adapts HDT.searchIDs to the join.Store contract, so
// internal/join never needs to know which of the three triples forms
// is backing a given HDT.
type joinStore struct{ h *HDT }

func (s joinStore) Search(pattern dictionary.TripleID) join.Iterator {
	return s.h.searchIDs(pattern)
}

// JoinTerm is one component of a JoinPattern: either a fixed term in
// rdf.TermString's canonical form, or a named variable to be bound by
// the join.
type JoinTerm struct {
	Var   string
	Value string
}

// JVar returns a variable JoinTerm.
func JVar(name string) JoinTerm { return JoinTerm{Var: name} }

// JConst returns a fixed-term JoinTerm.
func JConst(value string) JoinTerm { return JoinTerm{Value: value} }

// JoinPattern is a triple pattern over term strings and variable
// names, the string-level counterpart of internal/join.Pattern.
type JoinPattern struct {
	S, P, O JoinTerm
}

func (jt JoinTerm) resolve(dict *dictionary.Dictionary, role dictionary.Role) join.Term {
	if jt.Var != "" {
		return join.Var(jt.Var)
	}
	return join.Const(dict.StringToID(jt.Value, role))
}

// SearchJoin evaluates a basic graph pattern (a conjunction of triple
// patterns joined on shared variables) and returns one row per
// solution, each row mapping a requested variable name to its bound
// term string.
func (h *HDT) SearchJoin(patterns []JoinPattern, vars []string) ([]map[string]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	joinPatterns := make([]join.Pattern, len(patterns))
	varRole := make(map[string]dictionary.Role, len(vars))
	for i, p := range patterns {
		joinPatterns[i] = join.Pattern{
			S: p.S.resolve(h.dict, dictionary.Subject),
			P: p.P.resolve(h.dict, dictionary.Predicate),
			O: p.O.resolve(h.dict, dictionary.Object),
		}
		if p.S.Var != "" {
			if _, ok := varRole[p.S.Var]; !ok {
				varRole[p.S.Var] = dictionary.Subject
			}
		}
		if p.P.Var != "" {
			if _, ok := varRole[p.P.Var]; !ok {
				varRole[p.P.Var] = dictionary.Predicate
			}
		}
		if p.O.Var != "" {
			if _, ok := varRole[p.O.Var]; !ok {
				varRole[p.O.Var] = dictionary.Object
			}
		}
	}

	binding := join.Plan(joinPatterns, joinStore{h: h}, vars)

	var rows []map[string]string
	binding.GoToStart()
	for binding.FindNext() {
		row := make(map[string]string, binding.NumVars())
		for i := 0; i < binding.NumVars(); i++ {
			name := binding.VarName(i)
			id := binding.Value(i)
			s, err := h.dict.IDToString(id, varRole[name])
			if err != nil {
				return nil, wrapError(FormatError, err)
			}
			row[name] = s
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func buildHeader(h *HDT, opts *Options, now time.Time) *rdf.Graph {
	g := rdf.NewGraph()
	format := rdf.URI(rdf.BNode("format").String())
	dict := rdf.URI(rdf.BNode("dictionary").String())
	trip := rdf.URI(rdf.BNode("triples").String())

	insert := func(s rdf.URI, p rdf.URI, o rdf.Term) { g.Insert(rdf.Triple{Subj: s, Pred: p, Obj: o}) }

	dcIssued := rdf.URI("http://purl.org/dc/terms/issued")
	hdtDictionary := rdf.URI("http://purl.org/hdt/hdt#dictionary")
	hdtTriples := rdf.URI("http://purl.org/hdt/hdt#triples")
	hdtDictType := rdf.URI("http://purl.org/hdt/hdt#dictionaryType")
	hdtNumShared := rdf.URI("http://purl.org/hdt/hdt#numShared")
	hdtTriplesType := rdf.URI("http://purl.org/hdt/hdt#triplesType")
	hdtNumTriples := rdf.URI("http://purl.org/hdt/hdt#numTriples")
	hdtOrder := rdf.URI("http://purl.org/hdt/hdt#order")

	insert(format, dcIssued, rdf.NewTypedLiteral(now.UTC().Format("2006-01-02T15:04:05"), rdf.XSDdateTimeStamp))
	insert(format, hdtDictionary, dict)
	insert(format, hdtTriples, trip)
	insert(dict, hdtDictType, rdf.NewLiteral(opts.DictionaryType))
	insert(dict, hdtNumShared, rdf.NewLiteral(h.dict.NumShared()))
	insert(trip, hdtTriplesType, rdf.NewLiteral(opts.TriplesType))
	insert(trip, hdtNumTriples, rdf.NewLiteral(h.NumTriples()))
	insert(trip, hdtOrder, rdf.NewLiteral(h.order.String()))
	return g
}

func encodeHeader(g *rdf.Graph) []byte {
	var buf bytes.Buffer
	enc := rdf.NewEncoder(&buf)
	for _, tr := range g.Sorted() {
		_ = enc.Encode(tr)
	}
	_ = enc.Flush()
	return buf.Bytes()
}
