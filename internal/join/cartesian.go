package join

// CartesianJoinBinding pairs every row of left with every row of right.
// The planner only reaches for this when two leaves share no variable,
// so there is no join condition to apply.
type CartesianJoinBinding struct {
	*rowSet
}

// NewCartesianJoinBinding builds the cross-joined row set.
func NewCartesianJoinBinding(left, right VarBinding) *CartesianJoinBinding {
	leftRows := allValues(left)
	rightRows := allValues(right)

	rs := newRowSet(mergedVars(left, right))
	for _, lr := range leftRows {
		for _, rr := range rightRows {
			rs.rows = append(rs.rows, combine(lr, rr))
		}
	}
	return &CartesianJoinBinding{rowSet: rs}
}
