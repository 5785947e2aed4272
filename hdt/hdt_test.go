package hdt

import (
	"bytes"
	"sort"
	"strings"
	"testing"
)

const sampleNTriples = `<http://ex.org/alice> <http://ex.org/knows> <http://ex.org/bob> .
<http://ex.org/alice> <http://ex.org/knows> <http://ex.org/carol> .
<http://ex.org/bob> <http://ex.org/knows> <http://ex.org/carol> .
<http://ex.org/alice> <http://ex.org/name> "Alice" .
<http://ex.org/bob> <http://ex.org/name> "Bob" .
<http://ex.org/carol> <http://ex.org/name> "Carol" .
`

func buildSample(t *testing.T) *HDT {
	t.Helper()
	h, err := LoadFromRDF(strings.NewReader(sampleNTriples), nil)
	if err != nil {
		t.Fatalf("LoadFromRDF: %v", err)
	}
	return h
}

func TestLoadFromRDFCounts(t *testing.T) {
	h := buildSample(t)
	if got := h.NumTriples(); got != 6 {
		t.Fatalf("NumTriples() = %d, want 6", got)
	}
}

func TestSearchWildcardEnumeratesAll(t *testing.T) {
	h := buildSample(t)
	it := h.Search("", "", "")
	n := 0
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
		n++
	}
	if n != 6 {
		t.Fatalf("got %d triples, want 6", n)
	}
}

func TestSearchByPattern(t *testing.T) {
	h := buildSample(t)
	it := h.Search("<http://ex.org/alice>", "<http://ex.org/knows>", "")
	var objs []string
	for it.HasNext() {
		tr, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		objs = append(objs, tr.Obj.String())
	}
	sort.Strings(objs)
	want := []string{"http://ex.org/bob", "http://ex.org/carol"}
	if len(objs) != len(want) || objs[0] != want[0] || objs[1] != want[1] {
		t.Fatalf("objects = %v, want %v", objs, want)
	}
}

func TestDumpRoundtrip(t *testing.T) {
	h := buildSample(t)
	var buf bytes.Buffer
	if err := h.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	h2, err := LoadFromRDF(&buf, nil)
	if err != nil {
		t.Fatalf("LoadFromRDF(dumped): %v", err)
	}
	if h2.NumTriples() != h.NumTriples() {
		t.Fatalf("NumTriples after roundtrip = %d, want %d", h2.NumTriples(), h.NumTriples())
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	h := buildSample(t)
	var buf bytes.Buffer
	if err := h.writeTo(&buf); err != nil {
		t.Fatalf("writeTo: %v", err)
	}

	h2, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h2.NumTriples() != h.NumTriples() {
		t.Fatalf("NumTriples = %d, want %d", h2.NumTriples(), h.NumTriples())
	}
	it := h2.Search("<http://ex.org/alice>", "<http://ex.org/name>", "")
	if !it.HasNext() {
		t.Fatal("expected at least one result for alice's name")
	}
	tr, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tr.Obj.String() != "Alice" {
		t.Fatalf("name = %q, want Alice", tr.Obj.String())
	}
}

func TestSaveLoadCompactRoundtrip(t *testing.T) {
	opts := DefaultOptions()
	opts.TriplesType = "Compact"
	h, err := LoadFromRDF(strings.NewReader(sampleNTriples), opts)
	if err != nil {
		t.Fatalf("LoadFromRDF: %v", err)
	}

	var buf bytes.Buffer
	if err := h.writeTo(&buf); err != nil {
		t.Fatalf("writeTo: %v", err)
	}
	h2, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !h2.compact {
		t.Fatal("expected compact flag to round-trip through Save/Load")
	}
	if h2.NumTriples() != h.NumTriples() {
		t.Fatalf("NumTriples = %d, want %d", h2.NumTriples(), h.NumTriples())
	}
}

func TestLoadFromRDFTriplesListDisk(t *testing.T) {
	opts := DefaultOptions()
	opts.TriplesType = "TriplesListDisk"
	h, err := LoadFromRDF(strings.NewReader(sampleNTriples), opts)
	if err != nil {
		t.Fatalf("LoadFromRDF: %v", err)
	}
	if got := h.NumTriples(); got != 6 {
		t.Fatalf("NumTriples() = %d, want 6", got)
	}
	it := h.Search("<http://ex.org/alice>", "<http://ex.org/knows>", "")
	n := 0
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
		n++
	}
	if n != 2 {
		t.Fatalf("got %d results, want 2", n)
	}
}

func TestSetWarnfFiresOnCompactScanFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.TriplesType = "Compact"
	h, err := LoadFromRDF(strings.NewReader(sampleNTriples), opts)
	if err != nil {
		t.Fatalf("LoadFromRDF: %v", err)
	}
	var fired bool
	h.SetWarnf(func(format string, args ...interface{}) { fired = true })

	it := h.Search("", "<http://ex.org/knows>", "")
	for it.HasNext() {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if !fired {
		t.Error("expected Warnf to fire for a predicate-only pattern with no reverse index")
	}
}

func TestSearchJoinTwoPatterns(t *testing.T) {
	h := buildSample(t)

	patterns := []JoinPattern{
		{S: JVar("x"), P: JConst("<http://ex.org/knows>"), O: JVar("y")},
		{S: JVar("y"), P: JConst("<http://ex.org/name>"), O: JVar("n")},
	}
	rows, err := h.SearchJoin(patterns, []string{"x", "n"})
	if err != nil {
		t.Fatalf("SearchJoin: %v", err)
	}
	got := make(map[string]bool)
	for _, row := range rows {
		got[row["x"]+"/"+row["n"]] = true
	}
	want := []string{
		"<http://ex.org/alice>/\"Bob\"",
		"<http://ex.org/alice>/\"Carol\"",
		"<http://ex.org/bob>/\"Carol\"",
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing row %q in %v", w, got)
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d distinct rows, want %d: %v", len(got), len(want), got)
	}
}

func TestSearchJoinEmptyPatternSet(t *testing.T) {
	h := buildSample(t)
	rows, err := h.SearchJoin(nil, []string{"x"})
	if err != nil {
		t.Fatalf("SearchJoin: %v", err)
	}
	if rows != nil {
		t.Fatalf("rows = %v, want nil", rows)
	}
}

func TestHeaderContainsExpectedBlankNodes(t *testing.T) {
	h := buildSample(t)
	var buf bytes.Buffer
	if err := h.writeTo(&buf); err != nil {
		t.Fatalf("writeTo: %v", err)
	}
	s := buf.String()
	for _, want := range []string{"_:format", "_:dictionary", "_:triples", "purl.org/dc/terms/issued"} {
		if !strings.Contains(s, want) {
			t.Errorf("serialized container missing %q", want)
		}
	}
}
