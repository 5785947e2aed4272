package rdf

import (
	"io"
	"strings"
	"testing"
)

func TestDecodeSimple(t *testing.T) {
	input := `<http://ex.org/s1> <http://ex.org/p1> <http://ex.org/o1> .
<http://ex.org/s1> <http://ex.org/p2> "hello" .
<http://ex.org/s2> <http://ex.org/p1> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://ex.org/s2> <http://ex.org/p2> "bonjour"@fr .
`
	d := NewDecoder(strings.NewReader(input))
	var got []Triple
	for {
		tr, err := d.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, tr)
	}
	if len(got) != 4 {
		t.Fatalf("got %d triples, want 4", len(got))
	}
	if got[0].Subj != "http://ex.org/s1" || got[0].Pred != "http://ex.org/p1" {
		t.Errorf("triple 0 = %+v", got[0])
	}
	lit, ok := got[1].Obj.(Literal)
	if !ok || lit.String() != "hello" || lit.DataType() != XSDstring {
		t.Errorf("triple 1 object = %+v", got[1].Obj)
	}
	typedLit, ok := got[2].Obj.(Literal)
	if !ok || typedLit.DataType() != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("triple 2 object = %+v", got[2].Obj)
	}
	langLit, ok := got[3].Obj.(Literal)
	if !ok || langLit.Lang() != "fr" {
		t.Errorf("triple 3 object = %+v", got[3].Obj)
	}
}

func TestDecodeAllIntoGraph(t *testing.T) {
	input := `<http://ex.org/s> <http://ex.org/p> <http://ex.org/o1> .
<http://ex.org/s> <http://ex.org/p> <http://ex.org/o2> .
`
	d := NewDecoder(strings.NewReader(input))
	g, err := d.DecodeAll()
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if g.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", g.Size())
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	trs := []Triple{
		{Subj: "http://ex.org/s", Pred: "http://ex.org/p", Obj: URI("http://ex.org/o")},
		{Subj: "http://ex.org/s", Pred: "http://ex.org/p", Obj: NewLiteral("hi there")},
		{Subj: "http://ex.org/s", Pred: "http://ex.org/p", Obj: NewLangLiteral("hallo", "de")},
	}
	var buf strings.Builder
	enc := NewEncoder(&buf)
	for _, tr := range trs {
		if err := enc.Encode(tr); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dec := NewDecoder(strings.NewReader(buf.String()))
	for i, want := range trs {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if got.Subj != want.Subj || got.Pred != want.Pred || got.Obj != want.Obj {
			t.Errorf("triple %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestTermStringParseTermRoundtrip(t *testing.T) {
	terms := []Term{
		URI("http://ex.org/s"),
		URI(BNode("b0").String()),
		NewLiteral("hi there"),
		NewLangLiteral("hallo", "de"),
		NewTypedLiteral("42", XSDinteger),
	}
	for _, want := range terms {
		s := TermString(want)
		got, err := ParseTerm(s)
		if err != nil {
			t.Fatalf("ParseTerm(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseTerm(TermString(%+v)) = %+v, want %+v", want, got, want)
		}
	}
}

func TestTripleStringBlankNodeSubject(t *testing.T) {
	tr := Triple{Subj: URI(BNode("b0").String()), Pred: "http://ex.org/p", Obj: URI("http://ex.org/o")}
	want := `_:b0 <http://ex.org/p> <http://ex.org/o> .`
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
