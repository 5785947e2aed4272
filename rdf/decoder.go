package rdf

import (
	"fmt"
	"io"
	"strings"
)

// Decoder is a streaming N-Triples decoder. Triples are read one at a
// time with Decode; DecodeAll collects the whole stream into a Graph.
type Decoder struct {
	scanner *scanner

	tr       Triple
	keepSubj bool
	keepPred bool

	// Skolemize turns a blank node label into a URI. If nil, a blank
	// node becomes a URI holding its "_:label" form.
	Skolemize func(label string) URI
}

// NewDecoder returns a new Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: newScanner(r)}
}

// Decode returns the next Triple in the stream. It returns io.EOF when
// the stream is exhausted.
func (d *Decoder) Decode() (Triple, error) {
	if !d.keepSubj {
		if err := d.parseSubject(); err != nil {
			return Triple{}, err
		}
	}
	if !d.keepPred {
		if err := d.parsePredicate(); err != nil {
			return Triple{}, err
		}
	}
	if err := d.parseObject(); err != nil {
		return Triple{}, err
	}
	return d.tr, nil
}

func (d *Decoder) parseSubject() error {
	for {
		tok := d.scanner.Scan()
		switch tok.Type {
		case tokenURI:
			d.tr.Subj = NewURI(tok.Text)
			return nil
		case tokenBNode:
			d.tr.Subj = URI(d.bnode(tok.Text))
			return nil
		case tokenEOL:
			continue
		case tokenEOF:
			return io.EOF
		default:
			return d.errorf(tok, "expected subject")
		}
	}
}

func (d *Decoder) bnode(label string) URI {
	if d.Skolemize != nil {
		return d.Skolemize(label)
	}
	return URI(BNode(label).String())
}

func (d *Decoder) parsePredicate() error {
	tok := d.scanner.Scan()
	if tok.Type != tokenURI {
		return d.errorf(tok, "expected predicate URI")
	}
	d.tr.Pred = NewURI(tok.Text)
	return nil
}

func (d *Decoder) parseObject() error {
	tok := d.scanner.Scan()
	switch tok.Type {
	case tokenURI:
		d.tr.Obj = NewURI(tok.Text)
	case tokenBNode:
		d.tr.Obj = d.bnode(tok.Text)
	case tokenLiteral:
		next := d.scanner.Scan()
		switch next.Type {
		case tokenTypeMarker:
			dt := d.scanner.Scan()
			if dt.Type != tokenURI {
				return d.errorf(dt, "expected datatype URI")
			}
			d.tr.Obj = NewTypedLiteral(tok.Text, NewURI(dt.Text))
		case tokenLangTag:
			d.tr.Obj = NewLangLiteral(tok.Text, next.Text)
		default:
			d.tr.Obj = NewLiteral(tok.Text)
			return d.finishAfter(next)
		}
	case tokenEOF:
		return io.EOF
	default:
		return d.errorf(tok, "expected object")
	}

	end := d.scanner.Scan()
	return d.finishAfter(end)
}

// finishAfter consumes the terminating dot, resetting keepSubj/keepPred
// for the next call to Decode.
func (d *Decoder) finishAfter(tok token) error {
	switch tok.Type {
	case tokenDot:
		d.keepSubj = false
		d.keepPred = false
		return nil
	case tokenEOF:
		return io.EOF
	default:
		return d.errorf(tok, "expected '.'")
	}
}

func (d *Decoder) errorf(tok token, msg string) error {
	return fmt.Errorf("%d:%d: %s, got %s %q", d.scanner.Row, d.scanner.Col, msg, tok.Type, tok.Text)
}

// ParseTerm parses a single canonical term string, as produced by
// TermString, back into a Term. It runs the string through the same
// object-position grammar Decode uses, by wrapping it in a throwaway
// triple, so a dictionary-stored term and a freshly-decoded object
// always parse identically.
func ParseTerm(s string) (Term, error) {
	d := NewDecoder(strings.NewReader("<urn:hdt:s> <urn:hdt:p> " + s + " .\n"))
	tr, err := d.Decode()
	if err != nil {
		return nil, err
	}
	return tr.Obj, nil
}

// DecodeAll parses the entire stream into a Graph.
func (d *Decoder) DecodeAll() (*Graph, error) {
	g := NewGraph()
	for {
		tr, err := d.Decode()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return g, err
		}
		g.Insert(tr)
	}
}
