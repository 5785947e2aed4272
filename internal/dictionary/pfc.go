package dictionary

import (
	"sort"
	"strings"

	"github.com/boutros/hdt/internal/bitutil"
	"github.com/boutros/hdt/internal/intstream"
)

// DefaultBlockSize is the number of consecutive terms grouped into one
// front-coded block when no override is given.
const DefaultBlockSize = 8

// PFC is an immutable, front-coded section of sorted terms: the first
// term of each block is stored verbatim, and every following term is
// stored as (length of common prefix with the previous term, suffix).
type PFC struct {
	payload    []byte          // concatenation of all blocks
	blockStart intstream.Stream // byte offset of each block's first term
	numStrings int
	blockSize  int
}

// BuildPFC front-codes the given lexicographically sorted, duplicate-free
// terms into a PFC section using blockSize as the run length (DefaultBlockSize
// if blockSize <= 0).
func BuildPFC(terms []string, blockSize int) *PFC {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	p := &PFC{numStrings: len(terms), blockSize: blockSize}

	var buf []byte
	offsets := intstream.NewBuilder()
	var prev string
	for i, term := range terms {
		if i%blockSize == 0 {
			offsets.Append(uint64(len(buf)))
			buf = append(buf, term...)
			buf = append(buf, 0)
		} else {
			lcp := commonPrefixLen(prev, term)
			var tmp [bitutil.MaxVByteLen]byte
			n := bitutil.PutUvarint(tmp[:], uint64(lcp))
			buf = append(buf, tmp[:n]...)
			buf = append(buf, term[lcp:]...)
			buf = append(buf, 0)
		}
		prev = term
	}
	p.payload = buf
	p.blockStart = offsets.BuildLog64()
	return p
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// NumStrings returns the number of terms stored in the section.
func (p *PFC) NumStrings() int { return p.numStrings }

// readCString reads a NUL-terminated string starting at off, returning
// the string and the offset just past the NUL.
func readCString(buf []byte, off int) (string, int) {
	end := off
	for buf[end] != 0 {
		end++
	}
	return string(buf[off:end]), end + 1
}

// blockOf decodes block index b entirely, returning its terms in order.
func (p *PFC) blockOf(b int) []string {
	start := int(p.blockStart.Get(b))
	remaining := p.numStrings - b*p.blockSize
	n := p.blockSize
	if remaining < n {
		n = remaining
	}
	terms := make([]string, 0, n)
	off := start
	var prev string
	for i := 0; i < n; i++ {
		if i == 0 {
			s, next := readCString(p.payload, off)
			prev = s
			off = next
		} else {
			lcp, k := bitutil.Uvarint(p.payload[off:])
			off += k
			suffix, next := readCString(p.payload, off)
			prev = prev[:lcp] + suffix
			off = next
		}
		terms = append(terms, prev)
	}
	return terms
}

func (p *PFC) numBlocks() int {
	if p.numStrings == 0 {
		return 0
	}
	return (p.numStrings + p.blockSize - 1) / p.blockSize
}

// firstTermOf returns the verbatim first term of block b without
// decoding the rest of the block.
func (p *PFC) firstTermOf(b int) string {
	start := int(p.blockStart.Get(b))
	s, _ := readCString(p.payload, start)
	return s
}

// Locate returns the 1-based index of term within the section, or
// ErrNotFound if term is absent.
func (p *PFC) Locate(term string) (uint64, error) {
	if p.numStrings == 0 {
		return 0, ErrNotFound
	}
	nb := p.numBlocks()
	// Binary search for the last block whose first term is <= term.
	b := sort.Search(nb, func(i int) bool {
		return p.firstTermOf(i) > term
	}) - 1
	if b < 0 {
		return 0, ErrNotFound
	}
	terms := p.blockOf(b)
	for i, t := range terms {
		if t == term {
			return uint64(b*p.blockSize + i + 1), nil
		}
	}
	return 0, ErrNotFound
}

// Extract returns the term at 1-based index id.
func (p *PFC) Extract(id uint64) (string, error) {
	if id < 1 || int(id) > p.numStrings {
		return "", ErrNotFound
	}
	i := int(id) - 1
	b := i / p.blockSize
	within := i % p.blockSize
	terms := p.blockOf(b)
	return terms[within], nil
}

// FillSuggestions appends up to max terms that start with prefix, in
// sorted order, to out, returning the extended slice.
func (p *PFC) FillSuggestions(prefix string, max int, out []string) []string {
	if p.numStrings == 0 {
		return out
	}
	nb := p.numBlocks()
	b := sort.Search(nb, func(i int) bool {
		return p.firstTermOf(i) > prefix
	}) - 1
	if b < 0 {
		b = 0
	}
	id := b*p.blockSize + 1
	for len(out) < max && id <= p.numStrings {
		term, err := p.Extract(uint64(id))
		if err != nil {
			break
		}
		if strings.HasPrefix(term, prefix) {
			out = append(out, term)
		} else if term >= prefix {
			break
		}
		id++
	}
	return out
}

// Bytes serializes the section: blockSize, numStrings, the block-start
// stream, then the raw payload.
func (p *PFC) Bytes() []byte {
	var out []byte
	var tmp [bitutil.MaxVByteLen]byte
	n := bitutil.PutUvarint(tmp[:], uint64(p.blockSize))
	out = append(out, tmp[:n]...)
	n = bitutil.PutUvarint(tmp[:], uint64(p.numStrings))
	out = append(out, tmp[:n]...)
	n = bitutil.PutUvarint(tmp[:], uint64(len(p.payload)))
	out = append(out, tmp[:n]...)
	out = append(out, p.blockStart.Bytes()...)
	out = append(out, p.payload...)
	return out
}

// LoadPFC deserializes a PFC section written by Bytes, returning the
// number of bytes consumed.
func LoadPFC(buf []byte) (*PFC, int, error) {
	off := 0
	blockSize, n := bitutil.Uvarint(buf[off:])
	off += n
	numStrings, n := bitutil.Uvarint(buf[off:])
	off += n
	payloadLen, n := bitutil.Uvarint(buf[off:])
	off += n

	stream, n, err := intstream.Load(buf[off:])
	if err != nil {
		return nil, 0, err
	}
	off += n

	payload := buf[off : off+int(payloadLen)]
	off += int(payloadLen)

	return &PFC{
		payload:    payload,
		blockStart: stream,
		numStrings: int(numStrings),
		blockSize:  int(blockSize),
	}, off, nil
}
