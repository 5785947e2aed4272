package dictionary

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// splitPrefix splits a term into a namespace prefix and a suffix, at
// the last '/' or '#' anywhere in the string — the same heuristic split point Plain dictionaries use to pool common
// namespace strings instead of repeating them per term.
func splitPrefix(term string) (prefix, suffix string) {
	cut := -1
	for i := len(term) - 1; i >= 0; i-- {
		switch term[i] {
		case '/', '#':
			cut = i + 1
		}
		if cut != -1 {
			break
		}
	}
	if cut <= 0 || cut >= len(term) {
		return "", term
	}
	return term[:cut], term[cut:]
}

// entry is one staged term awaiting an id, assigned only at Freeze.
type entry struct {
	prefix string
	suffix string
}

func (e entry) term() string { return e.prefix + e.suffix }

// Plain is the mutable dictionary staging area. Terms are inserted
// under a Role; Freeze partitions and sorts them into the four final
// sections.
type Plain struct {
	subjects   map[uint64][]entry
	predicates map[uint64][]entry
	objects    map[uint64][]entry

	prefixPool map[string]string // interned prefix strings

	frozen bool
}

// NewPlain returns a new, empty Plain dictionary.
func NewPlain() *Plain {
	return &Plain{
		subjects:   make(map[uint64][]entry),
		predicates: make(map[uint64][]entry),
		objects:    make(map[uint64][]entry),
		prefixPool: make(map[string]string),
	}
}

func hashString(s string) uint64 { return xxhash.Sum64String(s) }

func (p *Plain) intern(prefix string) string {
	if prefix == "" {
		return ""
	}
	if pooled, ok := p.prefixPool[prefix]; ok {
		return pooled
	}
	p.prefixPool[prefix] = prefix
	return prefix
}

func bucketHas(bucket []entry, term string) bool {
	for _, e := range bucket {
		if e.term() == term {
			return true
		}
	}
	return false
}

// Insert stages term under role. Duplicate inserts of the same term
// under the same role are no-ops. Insert returns ErrFrozen if called
// after Freeze.
func (p *Plain) Insert(term string, role Role) error {
	if p.frozen {
		return ErrFrozen
	}
	prefix, suffix := splitPrefix(term)
	prefix = p.intern(prefix)
	h := hashString(term)

	var table map[uint64][]entry
	switch role {
	case Subject:
		table = p.subjects
	case Predicate:
		table = p.predicates
	case Object:
		table = p.objects
	}
	if bucketHas(table[h], term) {
		return nil
	}
	table[h] = append(table[h], entry{prefix: prefix, suffix: suffix})
	return nil
}

// Frozen reports whether Freeze has been called.
func (p *Plain) Frozen() bool { return p.frozen }

// Sections is the result of freezing a Plain dictionary: four
// lexicographically sorted term lists, ready to be front-coded.
type Sections struct {
	Shared       []string
	SubjectsOnly []string
	Predicates   []string
	ObjectsOnly  []string
}

func flatten(table map[uint64][]entry) map[string]struct{} {
	out := make(map[string]struct{})
	for _, bucket := range table {
		for _, e := range bucket {
			out[e.term()] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Freeze computes the shared partition (subjects ∩ objects), sorts the
// four resulting sections lexicographically, and marks p as frozen so
// further Insert calls are rejected.
func (p *Plain) Freeze() (*Sections, error) {
	if p.frozen {
		return nil, ErrFrozen
	}
	p.frozen = true

	subjSet := flatten(p.subjects)
	objSet := flatten(p.objects)
	predSet := flatten(p.predicates)

	shared := make(map[string]struct{})
	for term := range subjSet {
		if _, ok := objSet[term]; ok {
			shared[term] = struct{}{}
			delete(subjSet, term)
			delete(objSet, term)
		}
	}

	return &Sections{
		Shared:       sortedKeys(shared),
		SubjectsOnly: sortedKeys(subjSet),
		Predicates:   sortedKeys(predSet),
		ObjectsOnly:  sortedKeys(objSet),
	}, nil
}
