package dictionary

// Mapping selects the global-id policy used to translate between a
// role-local id and the single id space a Dictionary's callers deal
// in. MAPPING1 is the only policy implemented: Shared takes ids
// 1..|Shared|, SubjectsOnly continues after it, and ObjectsOnly
// continues after SubjectsOnly, so a subjects-only and an objects-only
// term never share an id. MAPPING2, in which SubjectsOnly and
// ObjectsOnly both start right after Shared, is not implemented.
type Mapping int

const MAPPING1 Mapping = 1

// Dictionary is the frozen, queryable four-section term dictionary.
// Shared holds terms used as both a subject and an object; those
// terms share one id space between the Subject and Object roles.
// SubjectsOnly ids start after Shared's range and ObjectsOnly ids
// start after SubjectsOnly's (Predicates has its own, wholly separate
// space).
type Dictionary struct {
	shared       *CachedSection
	subjectsOnly *CachedSection
	predicates   *CachedSection
	objectsOnly  *CachedSection
	mapping      Mapping
}

// New builds a Dictionary from the four sorted sections produced by
// Plain.Freeze, front-coding each with blockSize (DefaultBlockSize if
// blockSize <= 0) and wrapping it in an LRU cache.
func New(sections *Sections, blockSize int) *Dictionary {
	return &Dictionary{
		shared:       NewCachedSection(BuildPFC(sections.Shared, blockSize), 0),
		subjectsOnly: NewCachedSection(BuildPFC(sections.SubjectsOnly, blockSize), 0),
		predicates:   NewCachedSection(BuildPFC(sections.Predicates, blockSize), 0),
		objectsOnly:  NewCachedSection(BuildPFC(sections.ObjectsOnly, blockSize), 0),
		mapping:      MAPPING1,
	}
}

// NumShared and NumPredicates report the size of those partitions;
// NumSubjects and NumObjects report how many distinct terms play the
// subject or object role. NumSubjects is also the highest subject id.
func (d *Dictionary) NumShared() uint64     { return uint64(d.shared.NumStrings()) }
func (d *Dictionary) NumSubjects() uint64   { return d.NumShared() + uint64(d.subjectsOnly.NumStrings()) }
func (d *Dictionary) NumPredicates() uint64 { return uint64(d.predicates.NumStrings()) }
func (d *Dictionary) NumObjects() uint64    { return d.NumShared() + uint64(d.objectsOnly.NumStrings()) }

// IDToString resolves a role-local id to its term. It returns
// ErrNotFound if id is outside the role's valid range.
func (d *Dictionary) IDToString(id uint64, role Role) (string, error) {
	if id == 0 {
		return "", ErrNotFound
	}
	switch role {
	case Predicate:
		return d.predicates.Extract(id)
	case Subject:
		if id <= d.NumShared() {
			return d.shared.Extract(id)
		}
		return d.subjectsOnly.Extract(id - d.NumShared())
	case Object:
		if id <= d.NumShared() {
			return d.shared.Extract(id)
		}
		if id <= d.NumSubjects() {
			return "", ErrNotFound
		}
		return d.objectsOnly.Extract(id - d.NumSubjects())
	default:
		return "", ErrNotFound
	}
}

// StringToID resolves a term to its role-local id, or 0 if the term is
// absent under that role.
func (d *Dictionary) StringToID(term string, role Role) uint64 {
	if id, err := d.shared.Locate(term); err == nil {
		switch role {
		case Subject, Object:
			return id
		}
	}
	switch role {
	case Predicate:
		if id, err := d.predicates.Locate(term); err == nil {
			return id
		}
	case Subject:
		if id, err := d.subjectsOnly.Locate(term); err == nil {
			return d.NumShared() + id
		}
	case Object:
		if id, err := d.objectsOnly.Locate(term); err == nil {
			return d.NumSubjects() + id
		}
	}
	return 0
}

// TripleID is a fully-resolved triple of dictionary ids. A zero
// component means the corresponding term was absent from the
// dictionary, and any pattern using it naturally yields zero results.
type TripleID struct {
	Subj, Pred, Obj uint64
}

// TripleStringToTripleID resolves each non-empty component of a
// string-form triple pattern to its id; empty strings represent
// wildcards and are passed through as 0.
func (d *Dictionary) TripleStringToTripleID(subj, pred, obj string) TripleID {
	var tid TripleID
	if subj != "" {
		tid.Subj = d.StringToID(subj, Subject)
	}
	if pred != "" {
		tid.Pred = d.StringToID(pred, Predicate)
	}
	if obj != "" {
		tid.Obj = d.StringToID(obj, Object)
	}
	return tid
}

// FillSuggestions appends up to max subject-or-object terms starting
// with prefix, drawn from the shared and role-specific sections.
func (d *Dictionary) FillSuggestions(prefix string, role Role, max int) []string {
	var out []string
	out = d.shared.FillSuggestions(prefix, max, out)
	switch role {
	case Predicate:
		out = d.predicates.FillSuggestions(prefix, max-len(out), out)
	case Subject:
		out = d.subjectsOnly.FillSuggestions(prefix, max-len(out), out)
	case Object:
		out = d.objectsOnly.FillSuggestions(prefix, max-len(out), out)
	}
	return out
}

// Bytes serializes the dictionary: the mapping byte, then each of the
// four sections in Shared/SubjectsOnly/Predicates/ObjectsOnly order.
func (d *Dictionary) Bytes() []byte {
	out := []byte{byte(d.mapping)}
	out = append(out, d.shared.pfc.Bytes()...)
	out = append(out, d.subjectsOnly.pfc.Bytes()...)
	out = append(out, d.predicates.pfc.Bytes()...)
	out = append(out, d.objectsOnly.pfc.Bytes()...)
	return out
}

// Load deserializes a Dictionary written by Bytes, returning the
// number of bytes consumed.
func Load(buf []byte) (*Dictionary, int, error) {
	off := 0
	mapping := Mapping(buf[off])
	off++

	shared, n, err := LoadPFC(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	subjectsOnly, n, err := LoadPFC(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	predicates, n, err := LoadPFC(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	objectsOnly, n, err := LoadPFC(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	return &Dictionary{
		shared:       NewCachedSection(shared, 0),
		subjectsOnly: NewCachedSection(subjectsOnly, 0),
		predicates:   NewCachedSection(predicates, 0),
		objectsOnly:  NewCachedSection(objectsOnly, 0),
		mapping:      mapping,
	}, off, nil
}
