package dictionary

import "testing"

func buildTestDictionary(t *testing.T) *Dictionary {
	t.Helper()
	p := NewPlain()
	terms := []struct {
		term string
		role Role
	}{
		{"http://ex.org/alice", Subject},
		{"http://ex.org/bob", Subject},
		{"http://ex.org/bob", Object},
		{"http://ex.org/charlie", Object},
		{"http://ex.org/knows", Predicate},
		{"http://ex.org/likes", Predicate},
	}
	for _, tc := range terms {
		if err := p.Insert(tc.term, tc.role); err != nil {
			t.Fatal(err)
		}
	}
	sections, err := p.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return New(sections, 2)
}

func TestDictionaryStringToIDAndBack(t *testing.T) {
	d := buildTestDictionary(t)

	subjID := d.StringToID("http://ex.org/alice", Subject)
	if subjID == 0 {
		t.Fatal("alice not found as subject")
	}
	got, err := d.IDToString(subjID, Subject)
	if err != nil || got != "http://ex.org/alice" {
		t.Errorf("IDToString(%d, Subject) = (%q, %v), want alice", subjID, got, err)
	}

	sharedAsSubj := d.StringToID("http://ex.org/bob", Subject)
	sharedAsObj := d.StringToID("http://ex.org/bob", Object)
	if sharedAsSubj == 0 || sharedAsSubj != sharedAsObj {
		t.Errorf("shared term ids differ across roles: subj=%d obj=%d", sharedAsSubj, sharedAsObj)
	}

	predID := d.StringToID("http://ex.org/knows", Predicate)
	if predID == 0 {
		t.Fatal("knows not found as predicate")
	}
	got, err = d.IDToString(predID, Predicate)
	if err != nil || got != "http://ex.org/knows" {
		t.Errorf("IDToString(%d, Predicate) = (%q, %v)", predID, got, err)
	}

	if id := d.StringToID("http://ex.org/nobody", Subject); id != 0 {
		t.Errorf("StringToID(missing) = %d, want 0", id)
	}
}

func TestTripleStringToTripleID(t *testing.T) {
	d := buildTestDictionary(t)
	tid := d.TripleStringToTripleID("http://ex.org/alice", "http://ex.org/knows", "")
	if tid.Subj == 0 || tid.Pred == 0 || tid.Obj != 0 {
		t.Errorf("tid = %+v, want Subj,Pred != 0 and Obj == 0", tid)
	}

	tid = d.TripleStringToTripleID("http://ex.org/nobody", "", "")
	if tid.Subj != 0 {
		t.Errorf("tid.Subj = %d, want 0 for unknown term", tid.Subj)
	}
}

func TestDictionarySerializeRoundtrip(t *testing.T) {
	d := buildTestDictionary(t)
	buf := d.Bytes()

	got, n, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d bytes, want %d", n, len(buf))
	}

	id := d.StringToID("http://ex.org/alice", Subject)
	s, err := got.IDToString(id, Subject)
	if err != nil || s != "http://ex.org/alice" {
		t.Errorf("roundtrip IDToString(%d) = (%q, %v)", id, s, err)
	}
}
