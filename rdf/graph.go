package rdf

import (
	"sort"
	"strings"
)

// Triple represents an RDF triple (statement): subject, predicate, object.
// Subj and Pred are typed URI; a blank-node subject is represented as a
// URI holding its "_:label" form, the same convention Decoder.bnode uses.
type Triple struct {
	Subj URI
	Pred URI
	Obj  Term
}

// String returns an N-Triples serialization of the Triple.
func (tr Triple) String() string {
	var b []byte
	b = append(b, TermString(tr.Subj)...)
	b = append(b, ' ')
	b = append(b, TermString(tr.Pred)...)
	b = append(b, ' ')
	b = append(b, TermString(tr.Obj)...)
	b = append(b, " ."...)
	return string(b)
}

// TermString returns t's canonical N-Triples term syntax: "<uri>" for a
// URI, "_:label" for a blank node, and a quoted literal (with optional
// @lang or ^^<datatype>) for a Literal. internal/dictionary stores every
// term under this string, so it round-trips through ParseTerm.
func TermString(t Term) string {
	if u, ok := t.(URI); ok && strings.HasPrefix(string(u), "_:") {
		return string(u)
	}
	return encodeTerm(t)
}

func encodeTerm(t Term) string {
	switch v := t.(type) {
	case URI:
		return "<" + string(v) + ">"
	case BNode:
		return v.String()
	case Literal:
		switch v.DataType() {
		case XSDstring:
			return quote(v.value)
		case RDFlangString:
			return quote(v.value) + "@" + v.language
		default:
			return quote(v.value) + "^^<" + string(v.datatype) + ">"
		}
	}
	return ""
}

func quote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			b = append(b, string(r)...)
		}
	}
	b = append(b, '"')
	return string(b)
}

// Graph is an in-memory collection of triples, keyed by subject then
// predicate for fast Insert/Has/Delete. The HDT build path
// (hdt.LoadFromRDF) decodes its whole input into a Graph with
// Decoder.DecodeAll before building the dictionary and triples.
type Graph struct {
	nodes map[URI]map[URI]Terms
}

// NewGraph returns a new, empty Graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[URI]map[URI]Terms)}
}

// Size returns the number of triples in the Graph.
func (g *Graph) Size() (n int) {
	for _, props := range g.nodes {
		for _, vals := range props {
			n += len(vals)
		}
	}
	return n
}

// Triples returns all triples in the Graph, in no particular order.
func (g *Graph) Triples() []Triple {
	trs := make([]Triple, 0, g.Size())
	for subj, props := range g.nodes {
		for pred, terms := range props {
			for _, term := range terms {
				trs = append(trs, Triple{Subj: subj, Pred: pred, Obj: term})
			}
		}
	}
	return trs
}

// Insert adds one or more triples to the Graph, returning the number
// not already present.
func (g *Graph) Insert(trs ...Triple) (n int) {
	for _, t := range trs {
		if g.Has(t) {
			continue
		}
		if _, ok := g.nodes[t.Subj]; !ok {
			g.nodes[t.Subj] = make(map[URI]Terms)
		}
		g.nodes[t.Subj][t.Pred] = append(g.nodes[t.Subj][t.Pred], t.Obj)
		n++
	}
	return n
}

// Has reports whether tr is present in the Graph.
func (g *Graph) Has(tr Triple) bool {
	if props, ok := g.nodes[tr.Subj]; ok {
		for _, term := range props[tr.Pred] {
			if term == tr.Obj {
				return true
			}
		}
	}
	return false
}

// Delete removes one or more triples from the Graph, returning the
// number actually removed.
func (g *Graph) Delete(trs ...Triple) (n int) {
	for _, tr := range trs {
		terms, ok := g.nodes[tr.Subj][tr.Pred]
		if !ok {
			continue
		}
		for i, term := range terms {
			if term == tr.Obj {
				g.nodes[tr.Subj][tr.Pred] = append(terms[:i], terms[i+1:]...)
				n++
				break
			}
		}
	}
	return n
}

// Eq reports whether g and other contain exactly the same triples.
func (g *Graph) Eq(other *Graph) bool {
	if g.Size() != other.Size() {
		return false
	}
	for _, tr := range g.Triples() {
		if !other.Has(tr) {
			return false
		}
	}
	return true
}

// Sorted returns the Graph's triples sorted by subject, then predicate,
// then object string form — the order an HDT build requires.
func (g *Graph) Sorted() []Triple {
	trs := g.Triples()
	sort.Slice(trs, func(i, j int) bool {
		if trs[i].Subj != trs[j].Subj {
			return trs[i].Subj < trs[j].Subj
		}
		if trs[i].Pred != trs[j].Pred {
			return trs[i].Pred < trs[j].Pred
		}
		return trs[i].Obj.String() < trs[j].Obj.String()
	})
	return trs
}
