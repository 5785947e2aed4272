package join

import (
	"reflect"
	"sort"
	"testing"

	"github.com/boutros/hdt/internal/dictionary"
)

// fakeStore is a linear-scan Store over an in-memory triple set, used
// to exercise the planner without building a real HDT.
type fakeStore struct {
	triples []dictionary.TripleID
}

func (s *fakeStore) Search(pattern dictionary.TripleID) Iterator {
	var rows []dictionary.TripleID
	for _, tid := range s.triples {
		if matchesPattern(tid, pattern) {
			rows = append(rows, tid)
		}
	}
	return &sliceIter{rows: rows, pos: -1}
}

func matchesPattern(tid, pattern dictionary.TripleID) bool {
	if pattern.Subj != 0 && pattern.Subj != tid.Subj {
		return false
	}
	if pattern.Pred != 0 && pattern.Pred != tid.Pred {
		return false
	}
	if pattern.Obj != 0 && pattern.Obj != tid.Obj {
		return false
	}
	return true
}

type sliceIter struct {
	rows []dictionary.TripleID
	pos  int
}

func (it *sliceIter) HasNext() bool { return it.pos+1 < len(it.rows) }
func (it *sliceIter) Next() dictionary.TripleID {
	it.pos++
	return it.rows[it.pos]
}

// data: (person, knows, person) and (person, name, literal-id) triples
// used across the join tests. ids are small, non-zero so 0 can stand
// for "wildcard" in patterns.
func sampleStore() *fakeStore {
	return &fakeStore{triples: []dictionary.TripleID{
		{Subj: 1, Pred: 10, Obj: 2}, // alice knows bob
		{Subj: 1, Pred: 10, Obj: 3}, // alice knows carol
		{Subj: 2, Pred: 10, Obj: 3}, // bob knows carol
		{Subj: 1, Pred: 20, Obj: 100}, // alice name "Alice"
		{Subj: 2, Pred: 20, Obj: 200}, // bob name "Bob"
		{Subj: 3, Pred: 20, Obj: 300}, // carol name "Carol"
	}}
}

func drain(b VarBinding) []map[string]uint64 {
	var out []map[string]uint64
	b.GoToStart()
	for b.FindNext() {
		row := make(map[string]uint64, b.NumVars())
		for i := 0; i < b.NumVars(); i++ {
			row[b.VarName(i)] = b.Value(i)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["x"] < out[j]["x"] || (out[i]["x"] == out[j]["x"] && out[i]["y"] < out[j]["y"])
	})
	return out
}

func TestTriplePatternBindingMaterializes(t *testing.T) {
	store := sampleStore()
	p := Pattern{S: Var("x"), P: Const(10), O: Var("y")}
	b := NewTriplePatternBinding(p, store)
	if b.NumVars() != 2 {
		t.Fatalf("NumVars() = %d, want 2", b.NumVars())
	}
	if got := b.EstimatedNumResults(); got != 3 {
		t.Fatalf("EstimatedNumResults() = %d, want 3", got)
	}
	var rows []map[string]uint64
	for b.FindNext() {
		rows = append(rows, map[string]uint64{"x": b.Value(0), "y": b.Value(1)})
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
}

func TestTriplePatternBindingReparametrize(t *testing.T) {
	store := sampleStore()
	p := Pattern{S: Const(1), P: Const(10), O: Var("y")}
	b := NewTriplePatternBinding(p, store)
	rp, ok := VarBinding(b).(reparametrizable)
	if !ok {
		t.Fatal("TriplePatternBinding does not implement reparametrizable")
	}
	bound := rp.Reparametrize("y", 2)
	if bound.EstimatedNumResults() != 1 {
		t.Fatalf("Reparametrize EstimatedNumResults() = %d, want 1", bound.EstimatedNumResults())
	}
}

func TestPlanTwoPatternJoin(t *testing.T) {
	store := sampleStore()
	// ?x knows ?y . ?y name ?yname
	patterns := []Pattern{
		{S: Var("x"), P: Const(10), O: Var("y")},
		{S: Var("y"), P: Const(20), O: Var("yname")},
	}
	result := Plan(patterns, store, []string{"x", "y", "yname"})

	var got []map[string]uint64
	result.GoToStart()
	for result.FindNext() {
		got = append(got, map[string]uint64{
			"x":     result.Value(result.VarIndex("x")),
			"y":     result.Value(result.VarIndex("y")),
			"yname": result.Value(result.VarIndex("yname")),
		})
	}
	want := []map[string]uint64{
		{"x": 1, "y": 2, "yname": 200},
		{"x": 1, "y": 3, "yname": 300},
		{"x": 2, "y": 3, "yname": 300},
	}
	sort.Slice(got, func(i, j int) bool {
		return got[i]["x"] < got[j]["x"] || (got[i]["x"] == got[j]["x"] && got[i]["y"] < got[j]["y"])
	})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan() = %+v, want %+v", got, want)
	}
}

func TestPlanNoSharedVariableFallsBackToCartesian(t *testing.T) {
	store := sampleStore()
	patterns := []Pattern{
		{S: Var("x"), P: Const(10), O: Const(2)},
		{S: Var("z"), P: Const(20), O: Const(300)},
	}
	result := Plan(patterns, store, []string{"x", "z"})
	count := 0
	result.GoToStart()
	for result.FindNext() {
		count++
	}
	// {x: alice} join {z: carol} with no shared variable -> cross
	// product of 1 left row and 1 right row.
	if count != 1 {
		t.Fatalf("got %d rows, want 1", count)
	}
}

func TestPlanEmptyPatternSet(t *testing.T) {
	result := Plan(nil, sampleStore(), []string{"x"})
	if result.FindNext() {
		t.Fatal("expected empty binding stream for empty pattern set")
	}
}

func TestPlanUnmatchedTermYieldsEmptyJoin(t *testing.T) {
	store := sampleStore()
	patterns := []Pattern{
		{S: Var("x"), P: Const(10), O: Var("y")},
		{S: Var("y"), P: Const(999999), O: Var("z")}, // predicate never occurs
	}
	result := Plan(patterns, store, []string{"x", "y", "z"})
	if result.FindNext() {
		t.Fatal("expected join containing an empty leaf to be empty")
	}
}

func TestMergeJoinAndIndexJoinAgree(t *testing.T) {
	store := sampleStore()
	left := NewTriplePatternBinding(Pattern{S: Var("x"), P: Const(10), O: Var("y")}, store)
	right := NewTriplePatternBinding(Pattern{S: Var("y"), P: Const(20), O: Var("n")}, store)

	merge := NewMergeJoinBinding(left, right, "y")
	left2 := NewTriplePatternBinding(Pattern{S: Var("x"), P: Const(10), O: Var("y")}, store)
	right2 := NewTriplePatternBinding(Pattern{S: Var("y"), P: Const(20), O: Var("n")}, store)
	index := NewIndexJoinBinding(left2, right2, "y")

	if !reflect.DeepEqual(drain(merge), drain(index)) {
		t.Fatalf("MergeJoin and IndexJoin disagree:\nmerge=%+v\nindex=%+v", drain(merge), drain(index))
	}
}

func TestCartesianJoin(t *testing.T) {
	store := sampleStore()
	left := NewTriplePatternBinding(Pattern{S: Var("x"), P: Const(10), O: Const(2)}, store)
	right := NewTriplePatternBinding(Pattern{S: Var("y"), P: Const(20), O: Const(300)}, store)
	cj := NewCartesianJoinBinding(left, right)
	rows := drain(cj)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["x"] != 1 || rows[0]["y"] != 3 {
		t.Fatalf("got %+v, want x=1 y=3", rows[0])
	}
}
