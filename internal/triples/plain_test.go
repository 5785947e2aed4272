package triples

import (
	"reflect"
	"testing"

	"github.com/boutros/hdt/internal/dictionary"
)

func TestPlainLoadFromList(t *testing.T) {
	l := NewList(SPO)
	for _, tid := range sampleTriples() {
		l.Insert(tid)
	}
	p := LoadFromList(l, SPO)
	if p.Len() != len(sampleTriples()) {
		t.Fatalf("Len() = %d, want %d", p.Len(), len(sampleTriples()))
	}

	var got []dictionary.TripleID
	for i := 0; i < p.Len(); i++ {
		got = append(got, p.At(i))
	}
	want := sampleTriples()
	sortTriples(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("At() sequence = %+v, want %+v", got, want)
	}
}

func TestPlainSearch(t *testing.T) {
	l := NewList(SPO)
	for _, tid := range sampleTriples() {
		l.Insert(tid)
	}
	p := LoadFromList(l, SPO)

	got := collect(p.Search(dictionary.TripleID{Subj: 1, Pred: 1}))
	want := []dictionary.TripleID{
		{Subj: 1, Pred: 1, Obj: 10},
		{Subj: 1, Pred: 1, Obj: 20},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Search(Subj=1,Pred=1) = %+v, want %+v", got, want)
	}

	all := collect(p.Search(dictionary.TripleID{}))
	if len(all) != len(sampleTriples()) {
		t.Fatalf("Search(wildcard) = %d results, want %d", len(all), len(sampleTriples()))
	}
}

func TestPlainSerializeRoundtrip(t *testing.T) {
	l := NewList(SPO)
	for _, tid := range sampleTriples() {
		l.Insert(tid)
	}
	p := LoadFromList(l, SPO)
	buf := p.Bytes()
	got, n, err := LoadPlain(buf)
	if err != nil {
		t.Fatalf("LoadPlain: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("LoadPlain consumed %d bytes, want %d", n, len(buf))
	}
	if got.Len() != p.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), p.Len())
	}
	for i := 0; i < p.Len(); i++ {
		if got.At(i) != p.At(i) {
			t.Fatalf("At(%d) = %+v, want %+v", i, got.At(i), p.At(i))
		}
	}
}
