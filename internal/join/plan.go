package join

import "sort"

// mergeJoinThreshold is the root-cardinality cutoff above which the
// planner prefers a sort-merge join over an index-nested-loop join,
// provided both sides are ordered on the shared variable.
const mergeJoinThreshold = 200000

// leaf pairs a TriplePatternBinding with whether it has been merged
// into the growing plan tree yet.
type leaf struct {
	binding *TriplePatternBinding
	merged  bool
}

// Plan builds a left-deep join tree over patterns and projects it down
// to vars. An empty pattern set returns an empty binding. A pattern
// referencing a dictionary id with no matches produces a zero-row leaf
// that empties any join it participates in, exactly like any other
// leaf — no special case is needed beyond what TriplePatternBinding and
// the join combinators already do.
func Plan(patterns []Pattern, store Store, vars []string) VarBinding {
	if len(patterns) == 0 {
		return newRowSet(vars)
	}

	leaves := make([]*leaf, len(patterns))
	for i, p := range patterns {
		leaves[i] = &leaf{binding: NewTriplePatternBinding(p, store)}
	}
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].binding.EstimatedNumResults() < leaves[j].binding.EstimatedNumResults()
	})

	root := leaves[0]
	root.merged = true
	var current VarBinding = root.binding
	rootCardinality := root.binding.EstimatedNumResults()

	remaining := len(leaves) - 1
	for remaining > 0 {
		next, joinVar := firstSharing(leaves, current)
		if next == nil {
			next = smallestUnmerged(leaves)
			current = NewCartesianJoinBinding(current, next.binding)
			next.merged = true
			remaining--
			rootCardinality = current.EstimatedNumResults()
			continue
		}

		li := current.VarIndex(joinVar)
		ri := next.binding.VarIndex(joinVar)
		if rootCardinality > mergeJoinThreshold && li != -1 && ri != -1 &&
			current.IsOrdered(li) && next.binding.IsOrdered(ri) {
			current = NewMergeJoinBinding(current, next.binding, joinVar)
		} else {
			current = NewIndexJoinBinding(current, next.binding, joinVar)
		}
		next.merged = true
		remaining--
		rootCardinality = current.EstimatedNumResults()
	}

	return newProjection(current, vars)
}

// firstSharing returns the first unmerged leaf that shares a variable
// with current, and that shared variable, or (nil, "") if none do.
func firstSharing(leaves []*leaf, current VarBinding) (*leaf, string) {
	for _, l := range leaves {
		if l.merged {
			continue
		}
		for i := 0; i < l.binding.NumVars(); i++ {
			name := l.binding.VarName(i)
			if current.VarIndex(name) != -1 {
				return l, name
			}
		}
	}
	return nil, ""
}

// smallestUnmerged returns the lowest-cardinality unmerged leaf;
// leaves is already sorted ascending by estimate so this is the first
// one still unmerged.
func smallestUnmerged(leaves []*leaf) *leaf {
	for _, l := range leaves {
		if !l.merged {
			return l
		}
	}
	return nil
}

// projection restricts an underlying VarBinding to a subset of its
// variables, in the order requested. It is how Plan honors the
// caller's requested vars regardless of what intermediate joins added
// along the way.
type projection struct {
	inner VarBinding
	vars  []string
	idx   []int // inner.VarIndex(vars[i])
}

func newProjection(inner VarBinding, vars []string) *projection {
	if vars == nil {
		vars = make([]string, inner.NumVars())
		for i := range vars {
			vars[i] = inner.VarName(i)
		}
	}
	idx := make([]int, len(vars))
	for i, v := range vars {
		idx[i] = inner.VarIndex(v)
	}
	return &projection{inner: inner, vars: vars, idx: idx}
}

func (p *projection) NumVars() int        { return len(p.vars) }
func (p *projection) VarName(i int) string { return p.vars[i] }

func (p *projection) VarIndex(name string) int {
	for i, v := range p.vars {
		if v == name {
			return i
		}
	}
	return -1
}

func (p *projection) Value(i int) uint64 {
	if p.idx[i] == -1 {
		return 0
	}
	return p.inner.Value(p.idx[i])
}

func (p *projection) FindNext() bool             { return p.inner.FindNext() }
func (p *projection) GoToStart()                 { p.inner.GoToStart() }
func (p *projection) EstimatedNumResults() uint64 { return p.inner.EstimatedNumResults() }

func (p *projection) IsOrdered(i int) bool {
	if p.idx[i] == -1 {
		return false
	}
	return p.inner.IsOrdered(p.idx[i])
}
