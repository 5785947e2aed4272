package dictionary

import "errors"

var (
	// ErrFrozen is returned by Insert once the dictionary has been
	// frozen by Freeze.
	ErrFrozen = errors.New("dictionary: invalid state: already frozen")
	// ErrNotFrozen names the not-yet-frozen state. No operation in this
	// package returns it: a Dictionary is only ever built from frozen
	// Sections, and IDToString reports a bad id with ErrNotFound.
	ErrNotFrozen = errors.New("dictionary: invalid state: not yet frozen")
	// ErrNotFound is returned by PFC.Locate/Extract when a term or id
	// has no entry in the section.
	ErrNotFound = errors.New("dictionary: not found")
)
