package join

// reparametrizable is implemented by bindings that can rebuild
// themselves around a single bound variable instead of being
// re-scanned row by row. TriplePatternBinding is the only
// implementation today: binding its variable to a concrete value
// turns a full HDT pattern search into a targeted one.
type reparametrizable interface {
	Reparametrize(varName string, value uint64) VarBinding
}

// IndexJoinBinding joins left and right on joinVar by iterating left's
// rows and, for each one, probing right for matches. When right
// supports Reparametrize the probe re-runs the underlying pattern
// search with joinVar bound, which is the cheap path the planner
// prefers whenever right isn't already known to be sorted on joinVar.
// Otherwise it falls back to a nested-loop scan over right's
// materialized rows.
type IndexJoinBinding struct {
	*rowSet
}

// NewIndexJoinBinding builds the index-joined row set.
func NewIndexJoinBinding(left, right VarBinding, joinVar string) *IndexJoinBinding {
	rs := newRowSet(mergedVars(left, right))

	if rp, ok := right.(reparametrizable); ok {
		left.GoToStart()
		for left.FindNext() {
			li := left.VarIndex(joinVar)
			if li == -1 {
				continue
			}
			leftRow := rowOf(left)
			probe := rp.Reparametrize(joinVar, left.Value(li))
			probe.GoToStart()
			for probe.FindNext() {
				rs.rows = append(rs.rows, combine(leftRow, rowOf(probe)))
			}
		}
		return &IndexJoinBinding{rowSet: rs}
	}

	rightRows := allValues(right)
	left.GoToStart()
	for left.FindNext() {
		li := left.VarIndex(joinVar)
		if li == -1 {
			continue
		}
		leftRow := rowOf(left)
		lv := left.Value(li)
		for _, rightRow := range rightRows {
			if rightRow[joinVar] == lv {
				rs.rows = append(rs.rows, combine(leftRow, rightRow))
			}
		}
	}
	return &IndexJoinBinding{rowSet: rs}
}

// rowOf snapshots a binding's current row into a name-keyed map.
func rowOf(b VarBinding) map[string]uint64 {
	row := make(map[string]uint64, b.NumVars())
	for i := 0; i < b.NumVars(); i++ {
		row[b.VarName(i)] = b.Value(i)
	}
	return row
}
