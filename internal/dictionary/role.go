// Package dictionary implements the HDT string dictionary: a mutable
// staging structure (Plain) that is frozen into four immutable,
// front-coded sections (Shared, SubjectsOnly, Predicates, ObjectsOnly)
// addressed through a global-id mapping (Dictionary).
package dictionary

// Role identifies which position in a triple a term occupies. A term
// that appears as both a subject and an object across the dataset is
// assigned to the Shared partition at freeze time regardless of the
// Role it was inserted under.
type Role int

const (
	Subject Role = iota
	Predicate
	Object
)

func (r Role) String() string {
	switch r {
	case Subject:
		return "subject"
	case Predicate:
		return "predicate"
	case Object:
		return "object"
	default:
		return "unknown role"
	}
}
