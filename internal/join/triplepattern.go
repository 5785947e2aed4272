package join

import "github.com/boutros/hdt/internal/dictionary"

// row is one matched triple already projected down to a TripleID; the
// binding layer reads off whichever of S/P/O its variables track.
type row = dictionary.TripleID

// TriplePatternBinding is a leaf VarBinding: it runs pattern once
// against a Store, materializes the matching rows (there is no
// unbounded result set in this implementation — every leaf is a
// concrete HDT pattern search), and projects each row onto the
// pattern's variables in S,P,O encounter order.
type TriplePatternBinding struct {
	pattern Pattern
	store   Store
	vars    []string // variable names, S,P,O order, deduplicated
	rows    []row
	pos     int

	// subjectOrdered records whether rows are guaranteed emitted in
	// ascending subject order: true for every pattern shape except
	// those driven purely by the object reverse index ((?,?,o) and
	// (?,p,o)), where iteration instead follows posting-list order.
	subjectOrdered bool
}

// NewTriplePatternBinding resolves pattern against store and
// materializes the result.
func NewTriplePatternBinding(pattern Pattern, store Store) *TriplePatternBinding {
	b := &TriplePatternBinding{pattern: pattern, store: store}
	b.vars = collectVars(pattern)

	search := dictionary.TripleID{}
	if !pattern.S.IsVar() {
		search.Subj = pattern.S.ID
	}
	if !pattern.P.IsVar() {
		search.Pred = pattern.P.ID
	}
	if !pattern.O.IsVar() {
		search.Obj = pattern.O.ID
	}

	b.subjectOrdered = !(pattern.S.IsVar() && !pattern.O.IsVar())

	it := store.Search(search)
	for it.HasNext() {
		b.rows = append(b.rows, it.Next())
	}
	b.pos = -1
	return b
}

func collectVars(p Pattern) []string {
	var vars []string
	seen := make(map[string]bool)
	for _, t := range []Term{p.S, p.P, p.O} {
		if t.IsVar() && !seen[t.Var] {
			vars = append(vars, t.Var)
			seen[t.Var] = true
		}
	}
	return vars
}

func (b *TriplePatternBinding) NumVars() int        { return len(b.vars) }
func (b *TriplePatternBinding) VarName(i int) string { return b.vars[i] }

func (b *TriplePatternBinding) VarIndex(name string) int {
	for i, v := range b.vars {
		if v == name {
			return i
		}
	}
	return -1
}

func (b *TriplePatternBinding) Value(i int) uint64 {
	switch b.vars[i] {
	case b.pattern.S.Var:
		return b.rows[b.pos].Subj
	case b.pattern.P.Var:
		return b.rows[b.pos].Pred
	case b.pattern.O.Var:
		return b.rows[b.pos].Obj
	}
	return 0
}

func (b *TriplePatternBinding) FindNext() bool {
	if b.pos+1 >= len(b.rows) {
		return false
	}
	b.pos++
	return true
}

func (b *TriplePatternBinding) GoToStart() { b.pos = -1 }

func (b *TriplePatternBinding) EstimatedNumResults() uint64 { return uint64(len(b.rows)) }

func (b *TriplePatternBinding) IsOrdered(i int) bool {
	return b.vars[i] == b.pattern.S.Var && b.subjectOrdered
}

// Reparametrize rebuilds this pattern with varName bound to value,
// re-running the search against the original store. It is how
// IndexJoinBinding turns a left row into a right-side lookup instead
// of a full re-scan.
func (b *TriplePatternBinding) Reparametrize(varName string, value uint64) VarBinding {
	p := b.pattern
	if p.S.Var == varName {
		p.S = Const(value)
	}
	if p.P.Var == varName {
		p.P = Const(value)
	}
	if p.O.Var == varName {
		p.O = Const(value)
	}
	return NewTriplePatternBinding(p, b.store)
}
