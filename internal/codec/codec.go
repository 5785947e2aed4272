// Package codec implements the HDT container framing of spec.md
// §4.M/§6: a small self-delimiting ControlInformation key/value block
// precedes each of the three top-level sections (header, dictionary,
// triples), and the dictionary/triples payload that follows is itself
// prefixed by a one-byte section type tag a factory dispatches on.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/dictionary"
	"github.com/boutros/hdt/internal/triples"
)

// Kind identifies which top-level HDT section a ControlInformation
// block precedes.
type Kind byte

const (
	KindHeader Kind = iota + 1
	KindDictionary
	KindTriples
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "HEADER"
	case KindDictionary:
		return "DICTIONARY"
	case KindTriples:
		return "TRIPLES"
	default:
		return "UNKNOWN"
	}
}

// magic opens every ControlInformation block so a reader can detect a
// truncated or non-HDT stream up front instead of misparsing it.
var magic = [4]byte{'$', 'H', 'D', 'T'}

// ErrBadMagic is returned when a ControlInformation block's leading
// bytes do not match the expected magic.
var ErrBadMagic = errors.New("codec: bad control information magic")

// ErrUnknownSectionTag is returned when a dictionary or triples
// payload's leading tag byte does not match any tag this package
// knows how to decode.
var ErrUnknownSectionTag = errors.New("codec: unknown section tag")

// ErrNotImplemented is returned for section tags that are recognized
// (named in spec.md's GLOSSARY or config table) but have no decoder in
// this implementation.
var ErrNotImplemented = errors.New("codec: section tag recognized but not implemented")

// ControlInformation is the key/value header preceding each top-level
// section: a Kind discriminator plus an open bag of string options
// (codification, stream.x/y/z, triples.component.order, $mapping,
// $sizeStrings, ...). Unrecognized keys round-trip unchanged — the
// bag is never validated against a closed schema, matching spec.md
// §6's "open key/value bag" framing.
type ControlInformation struct {
	Kind    Kind
	Options map[string]string
}

// NewControlInformation returns an empty ControlInformation of the
// given kind.
func NewControlInformation(kind Kind) *ControlInformation {
	return &ControlInformation{Kind: kind, Options: make(map[string]string)}
}

// Set records an option, overwriting any existing value for key.
func (ci *ControlInformation) Set(key, value string) {
	if ci.Options == nil {
		ci.Options = make(map[string]string)
	}
	ci.Options[key] = value
}

// Get returns an option's value and whether it was present.
func (ci *ControlInformation) Get(key string) (string, bool) {
	v, ok := ci.Options[key]
	return v, ok
}

// encode renders the options bag as sorted "key=value\n" ASCII lines,
// so the same ControlInformation always serializes identically.
func (ci *ControlInformation) encode() []byte {
	keys := make([]string, 0, len(ci.Options))
	for k := range ci.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(ci.Options[k])
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func decodeOptions(payload []byte) map[string]string {
	opts := make(map[string]string)
	for _, line := range strings.Split(string(payload), "\n") {
		if line == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		opts[kv[0]] = kv[1]
	}
	return opts
}

// WriteTo writes ci to w: magic, kind byte, vbyte-prefixed options
// payload.
func (ci *ControlInformation) WriteTo(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(ci.Kind)}); err != nil {
		return err
	}
	payload := ci.encode()
	if _, err := bitutil.WriteUvarint(w, uint64(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadControlInformation reads one ControlInformation block from r.
func ReadControlInformation(r *bufio.Reader) (*ControlInformation, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, err
	}
	if got != magic {
		return nil, ErrBadMagic
	}
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	size, err := bitutil.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &ControlInformation{Kind: Kind(kindByte), Options: decodeOptions(payload)}, nil
}

// SectionTag identifies the concrete on-disk encoding of a dictionary
// or triples section payload, read as the first byte after a
// ControlInformation block.
type SectionTag byte

const (
	// Dictionary section tags.
	TagPFC  SectionTag = iota + 1 // the only implemented dictionary.type
	TagHTFC                      // named by spec.md's GLOSSARY, no encoder/decoder here
	TagDictPlain

	// Triples section tags.
	TagTriplesBitmap  // triples.type=Bitmap (default)
	TagTriplesCompact // triples.type=Compact — same wire format as Bitmap, no reverse index built on load
	TagTriplesPlain   // triples.type=Plain
	TagTriplesList    // triples.type=TriplesList / TriplesListDisk
)

// writeSection writes tag followed by payload, each section's own
// self-framing length (if any) already baked into payload by its
// producer.
func writeSection(w io.Writer, tag SectionTag, payload []byte) error {
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// EncodeDictionary renders d as a tagged section payload. Only PFC is
// ever produced, since internal/dictionary implements no other
// dictionary.type.
func EncodeDictionary(d *dictionary.Dictionary) []byte {
	return append([]byte{byte(TagPFC)}, d.Bytes()...)
}

// DecodeDictionary parses a tagged dictionary section payload
// previously written by EncodeDictionary.
func DecodeDictionary(buf []byte) (*dictionary.Dictionary, error) {
	if len(buf) == 0 {
		return nil, ErrUnknownSectionTag
	}
	switch SectionTag(buf[0]) {
	case TagPFC:
		d, _, err := dictionary.Load(buf[1:])
		return d, err
	case TagHTFC, TagDictPlain:
		return nil, ErrNotImplemented
	default:
		return nil, ErrUnknownSectionTag
	}
}

// TriplesSection is the decoded form of a tagged triples payload: the
// tag names which of the three fields is populated. Bitmap covers both
// TagTriplesBitmap and TagTriplesCompact, which share a wire format —
// the only difference is whether the caller calls GenerateIndex after
// loading.
type TriplesSection struct {
	Tag    SectionTag
	Order  triples.Order
	Bitmap *triples.Bitmap
	Plain  *triples.Plain
	List   *triples.List
}

// EncodeTriples renders a TriplesSection as a tagged section payload.
// Exactly one of Bitmap, Plain or List must be set, matching Tag.
func EncodeTriples(ts TriplesSection) ([]byte, error) {
	switch ts.Tag {
	case TagTriplesBitmap, TagTriplesCompact:
		if ts.Bitmap == nil {
			return nil, fmt.Errorf("codec: EncodeTriples: tag %d set but Bitmap is nil", ts.Tag)
		}
		return append([]byte{byte(ts.Tag)}, ts.Bitmap.Bytes()...), nil
	case TagTriplesPlain:
		if ts.Plain == nil {
			return nil, errors.New("codec: EncodeTriples: TagTriplesPlain set but Plain is nil")
		}
		return append([]byte{byte(ts.Tag)}, ts.Plain.Bytes()...), nil
	case TagTriplesList:
		if ts.List == nil {
			return nil, errors.New("codec: EncodeTriples: TagTriplesList set but List is nil")
		}
		return append([]byte{byte(ts.Tag)}, ts.List.Bytes()...), nil
	default:
		return nil, ErrUnknownSectionTag
	}
}

// DecodeTriples parses a tagged triples payload previously written by
// EncodeTriples.
func DecodeTriples(buf []byte) (TriplesSection, error) {
	if len(buf) == 0 {
		return TriplesSection{}, ErrUnknownSectionTag
	}
	tag := SectionTag(buf[0])
	switch tag {
	case TagTriplesBitmap, TagTriplesCompact:
		b, _, err := triples.LoadBitmapTriples(buf[1:])
		if err != nil {
			return TriplesSection{}, err
		}
		return TriplesSection{Tag: tag, Order: triples.SPO, Bitmap: b}, nil
	case TagTriplesPlain:
		p, _, err := triples.LoadPlain(buf[1:])
		if err != nil {
			return TriplesSection{}, err
		}
		return TriplesSection{Tag: tag, Plain: p}, nil
	case TagTriplesList:
		l, _, err := triples.LoadTriplesList(buf[1:])
		if err != nil {
			return TriplesSection{}, err
		}
		return TriplesSection{Tag: tag, List: l}, nil
	default:
		return TriplesSection{}, ErrUnknownSectionTag
	}
}

func writeBlock(w io.Writer, payload []byte) error {
	if _, err := bitutil.WriteUvarint(w, uint64(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readBlock(r *bufio.Reader) ([]byte, error) {
	size, err := bitutil.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Container is the complete decoded representation of an HDT file.
type Container struct {
	HeaderCI    *ControlInformation
	HeaderBytes []byte
	DictCI      *ControlInformation
	Dictionary  *dictionary.Dictionary
	TriplesCI   *ControlInformation
	Triples     TriplesSection
}

// WriteContainer serializes c to w in the order spec.md §4.M mandates:
//
//	[ControlInfo:HEADER]  [HeaderBytes]
//	[ControlInfo:DICT]    [tagged dictionary section]
//	[ControlInfo:TRIPLES] [tagged triples section]
func WriteContainer(w io.Writer, c *Container) error {
	if err := c.HeaderCI.WriteTo(w); err != nil {
		return err
	}
	if err := writeBlock(w, c.HeaderBytes); err != nil {
		return err
	}

	if err := c.DictCI.WriteTo(w); err != nil {
		return err
	}
	if err := writeBlock(w, EncodeDictionary(c.Dictionary)); err != nil {
		return err
	}

	if err := c.TriplesCI.WriteTo(w); err != nil {
		return err
	}
	triplesPayload, err := EncodeTriples(c.Triples)
	if err != nil {
		return err
	}
	return writeBlock(w, triplesPayload)
}

// ReadContainer parses a complete HDT file from r.
func ReadContainer(r io.Reader) (*Container, error) {
	br := bufio.NewReader(r)

	headerCI, err := ReadControlInformation(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading header control information: %w", err)
	}
	headerBytes, err := readBlock(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading header block: %w", err)
	}

	dictCI, err := ReadControlInformation(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading dictionary control information: %w", err)
	}
	dictBuf, err := readBlock(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading dictionary block: %w", err)
	}
	dict, err := DecodeDictionary(dictBuf)
	if err != nil {
		return nil, fmt.Errorf("codec: decoding dictionary section: %w", err)
	}

	triplesCI, err := ReadControlInformation(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading triples control information: %w", err)
	}
	triplesBuf, err := readBlock(br)
	if err != nil {
		return nil, fmt.Errorf("codec: reading triples block: %w", err)
	}
	ts, err := DecodeTriples(triplesBuf)
	if err != nil {
		return nil, fmt.Errorf("codec: decoding triples section: %w", err)
	}

	return &Container{
		HeaderCI:    headerCI,
		HeaderBytes: headerBytes,
		DictCI:      dictCI,
		Dictionary:  dict,
		TriplesCI:   triplesCI,
		Triples:     ts,
	}, nil
}
