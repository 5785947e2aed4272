// Package join implements the multi-pattern join planner: given a set
// of triple patterns and a list of required output variables, it picks
// a left-deep plan over merge-joins, index-joins and (when two
// patterns share no variable) a Cartesian product, cost-driven by each
// leaf's cardinality estimate and sortedness.
package join

import "github.com/boutros/hdt/internal/dictionary"

// Term is one component of a triple pattern: either a constant
// dictionary id, or a named variable to be bound by the join.
type Term struct {
	Var string // "" means this component is a constant
	ID  uint64
}

// Const returns a fixed, already-resolved Term.
func Const(id uint64) Term { return Term{ID: id} }

// Var returns a variable Term with the given name.
func Var(name string) Term { return Term{Var: name} }

// IsVar reports whether t is a variable rather than a constant.
func (t Term) IsVar() bool { return t.Var != "" }

// Pattern is a triple pattern with each component either bound or a
// variable.
type Pattern struct {
	S, P, O Term
}

// VarBinding is a row source over a fixed, ordered tuple of variable
// names — the common interface leaves and every join combinator
// implement.
type VarBinding interface {
	// NumVars returns the number of variables this binding projects.
	NumVars() int
	// VarName returns the name of the i-th projected variable.
	VarName(i int) string
	// VarIndex returns the position of name among this binding's
	// variables, or -1 if it is not projected here.
	VarIndex(name string) int
	// Value returns the current row's value for variable i.
	Value(i int) uint64
	// FindNext advances to the next row, returning false once
	// exhausted.
	FindNext() bool
	// GoToStart resets iteration to before the first row.
	GoToStart()
	// EstimatedNumResults is a cardinality hint used by the planner.
	EstimatedNumResults() uint64
	// IsOrdered reports whether rows are emitted in ascending order of
	// variable i's value.
	IsOrdered(i int) bool
}

// Store is the triple-pattern search surface the join planner needs
// from an HDT: resolve a pattern to an iterator of matching TripleIDs.
type Store interface {
	Search(pattern dictionary.TripleID) Iterator
}

// Iterator is the minimal triples.Iterator surface the join package
// depends on, kept local so this package does not need to import
// internal/triples for its own interfaces.
type Iterator interface {
	HasNext() bool
	Next() dictionary.TripleID
}
