package triples

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/boutros/hdt/internal/dictionary"
)

func TestDiskListInsertAndEach(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.db")
	dl, err := OpenDiskList(path, SPO)
	if err != nil {
		t.Fatalf("OpenDiskList: %v", err)
	}
	defer dl.Close()

	for _, tid := range sampleTriples() {
		if err := dl.Insert(tid); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	// Re-insert one triple; Len() should not double-count it.
	if err := dl.Insert(sampleTriples()[0]); err != nil {
		t.Fatalf("Insert duplicate: %v", err)
	}
	if dl.Len() != len(sampleTriples()) {
		t.Fatalf("Len() = %d, want %d", dl.Len(), len(sampleTriples()))
	}

	var got []dictionary.TripleID
	err = dl.Each(func(tid dictionary.TripleID) bool {
		got = append(got, tid)
		return true
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	want := sampleTriples()
	sortTriples(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Each() order = %+v, want %+v", got, want)
	}
}
