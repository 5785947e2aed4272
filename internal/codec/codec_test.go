package codec

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/boutros/hdt/internal/dictionary"
	"github.com/boutros/hdt/internal/triples"
)

func buildTestContainer(t *testing.T) *Container {
	t.Helper()
	plain := dictionary.NewPlain()
	plain.Insert("http://ex.org/alice", dictionary.Subject)
	plain.Insert("http://ex.org/bob", dictionary.Subject)
	plain.Insert("http://ex.org/knows", dictionary.Predicate)
	plain.Insert("http://ex.org/alice", dictionary.Object) // shared
	sections, err := plain.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	dict := dictionary.New(sections, dictionary.DefaultBlockSize)

	subj := dict.StringToID("http://ex.org/bob", dictionary.Subject)
	pred := dict.StringToID("http://ex.org/knows", dictionary.Predicate)
	obj := dict.StringToID("http://ex.org/alice", dictionary.Object)

	list := triples.NewList(triples.SPO)
	list.Insert(dictionary.TripleID{Subj: subj, Pred: pred, Obj: obj})
	bitmap := triples.BuildBitmap(list)

	headerCI := NewControlInformation(KindHeader)
	headerCI.Set("format", "ntriples")

	dictCI := NewControlInformation(KindDictionary)
	dictCI.Set("dictionary.type", "PFC")
	dictCI.Set("dict.block.size", "8")
	dictCI.Set("$mapping", "1")

	triplesCI := NewControlInformation(KindTriples)
	triplesCI.Set("triples.type", "Bitmap")
	triplesCI.Set("triples.component.order", "SPO")

	return &Container{
		HeaderCI:    headerCI,
		HeaderBytes: []byte("<http://ex.org/> <http://ex.org/p> \"dataset\" .\n"),
		DictCI:      dictCI,
		Dictionary:  dict,
		TriplesCI:   triplesCI,
		Triples:     TriplesSection{Tag: TagTriplesBitmap, Bitmap: bitmap},
	}
}

func TestControlInformationRoundtrip(t *testing.T) {
	ci := NewControlInformation(KindDictionary)
	ci.Set("dictionary.type", "PFC")
	ci.Set("dict.block.size", "16")

	var buf bytes.Buffer
	if err := ci.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadControlInformation(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("ReadControlInformation: %v", err)
	}
	if got.Kind != KindDictionary {
		t.Fatalf("Kind = %v, want KindDictionary", got.Kind)
	}
	if v, _ := got.Get("dictionary.type"); v != "PFC" {
		t.Fatalf("dictionary.type = %q, want PFC", v)
	}
	if v, _ := got.Get("dict.block.size"); v != "16" {
		t.Fatalf("dict.block.size = %q, want 16", v)
	}
}

func TestControlInformationBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not an hdt control block at all")
	if _, err := ReadControlInformation(bufio.NewReader(buf)); err != ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestContainerRoundtrip(t *testing.T) {
	c := buildTestContainer(t)

	var buf bytes.Buffer
	if err := WriteContainer(&buf, c); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	got, err := ReadContainer(&buf)
	if err != nil {
		t.Fatalf("ReadContainer: %v", err)
	}
	if !bytes.Equal(got.HeaderBytes, c.HeaderBytes) {
		t.Fatalf("HeaderBytes = %q, want %q", got.HeaderBytes, c.HeaderBytes)
	}
	if v, _ := got.DictCI.Get("dictionary.type"); v != "PFC" {
		t.Fatalf("dictionary.type = %q, want PFC", v)
	}
	if got.Triples.Bitmap == nil {
		t.Fatal("Triples.Bitmap is nil after roundtrip")
	}
	if got.Triples.Bitmap.NumTriples() != c.Triples.Bitmap.NumTriples() {
		t.Fatalf("NumTriples() = %d, want %d", got.Triples.Bitmap.NumTriples(), c.Triples.Bitmap.NumTriples())
	}

	wantID := c.Dictionary.StringToID("http://ex.org/bob", dictionary.Subject)
	gotID := got.Dictionary.StringToID("http://ex.org/bob", dictionary.Subject)
	if wantID != gotID || wantID == 0 {
		t.Fatalf("StringToID(bob) = %d, want %d (nonzero)", gotID, wantID)
	}
}

func TestDecodeDictionaryUnknownTag(t *testing.T) {
	if _, err := DecodeDictionary([]byte{0xFF}); err != ErrUnknownSectionTag {
		t.Fatalf("err = %v, want ErrUnknownSectionTag", err)
	}
}

func TestDecodeDictionaryNotImplementedTag(t *testing.T) {
	if _, err := DecodeDictionary([]byte{byte(TagHTFC)}); err != ErrNotImplemented {
		t.Fatalf("err = %v, want ErrNotImplemented", err)
	}
}
