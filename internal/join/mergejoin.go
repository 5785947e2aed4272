package join

import "sort"

// MergeJoinBinding joins left and right on joinVar by sort-merging
// their materialized rows. Both sides are sorted on joinVar here
// before merging, so the result does not depend on their input order;
// the planner only picks this strategy when VarBinding.IsOrdered
// reports both sides as ordered.
type MergeJoinBinding struct {
	*rowSet
}

// NewMergeJoinBinding builds the merge-joined row set.
func NewMergeJoinBinding(left, right VarBinding, joinVar string) *MergeJoinBinding {
	leftRows := allValues(left)
	rightRows := allValues(right)
	sort.Slice(leftRows, func(i, j int) bool { return leftRows[i][joinVar] < leftRows[j][joinVar] })
	sort.Slice(rightRows, func(i, j int) bool { return rightRows[i][joinVar] < rightRows[j][joinVar] })

	rs := newRowSet(mergedVars(left, right))
	i, j := 0, 0
	for i < len(leftRows) && j < len(rightRows) {
		lv, rv := leftRows[i][joinVar], rightRows[j][joinVar]
		switch {
		case lv < rv:
			i++
		case lv > rv:
			j++
		default:
			li := i
			for li < len(leftRows) && leftRows[li][joinVar] == lv {
				li++
			}
			rj := j
			for rj < len(rightRows) && rightRows[rj][joinVar] == rv {
				rj++
			}
			for a := i; a < li; a++ {
				for b := j; b < rj; b++ {
					rs.rows = append(rs.rows, combine(leftRows[a], rightRows[b]))
				}
			}
			i, j = li, rj
		}
	}
	return &MergeJoinBinding{rowSet: rs}
}

func combine(left, right map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}
