package bitutil

import (
	"encoding/binary"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// wordsPerBlock and blocksPerSuper control the two-level rank directory:
// a block covers 512 bits, a superblock covers 64 blocks (32768 bits).
const (
	wordsPerBlock  = 8
	bitsPerBlock   = wordsPerBlock * 64
	blocksPerSuper = 64
	bitsPerSuper   = blocksPerSuper * bitsPerBlock
)

// Bitmap is an append-only succinct bit vector. Bits are appended one at a
// time; once Seal is called the rank/select directories are built and the
// bitmap becomes read-only, giving O(1)-ish access/rank and O(log n)
// select, per spec.
type Bitmap struct {
	bits   *bitset.BitSet
	n      uint64
	sealed bool

	// blockRank[i] = number of 1-bits in bit positions [0, i*bitsPerBlock).
	blockRank []uint64
	// superRank[i] = number of 1-bits in bit positions [0, i*bitsPerSuper).
	superRank []uint64
	ones      uint64
}

// NewBitmap returns an empty, unsealed Bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{bits: bitset.New(0)}
}

// Append adds a single bit to the end of the bitmap. It panics if the
// bitmap has already been sealed.
func (b *Bitmap) Append(bit bool) {
	if b.sealed {
		panic("bitutil: Append on sealed Bitmap")
	}
	i := uint(b.n)
	// Set unconditionally first so the underlying storage grows to cover
	// position i regardless of the bit's value.
	b.bits.Set(i)
	if !bit {
		b.bits.Clear(i)
	}
	b.n++
}

// Len returns the number of bits appended so far.
func (b *Bitmap) Len() uint64 { return b.n }

// CountOnes returns the total number of 1-bits. Valid only after Seal.
func (b *Bitmap) CountOnes() uint64 { return b.ones }

// Access returns the bit at position i (0-based).
func (b *Bitmap) Access(i uint64) (bool, error) {
	if i >= b.n {
		return false, ErrOutOfRange
	}
	return b.bits.Test(uint(i)), nil
}

// Seal builds the rank/select directories. After Seal the bitmap must not
// be appended to again.
func (b *Bitmap) Seal() {
	if b.sealed {
		return
	}
	words := b.words()
	nblocks := (len(words) + wordsPerBlock - 1) / wordsPerBlock
	if nblocks == 0 {
		nblocks = 1
	}
	nsupers := (nblocks + blocksPerSuper - 1) / blocksPerSuper
	if nsupers == 0 {
		nsupers = 1
	}

	b.blockRank = make([]uint64, nblocks+1)
	b.superRank = make([]uint64, nsupers+1)

	var total uint64
	for blk := 0; blk < nblocks; blk++ {
		if blk%blocksPerSuper == 0 {
			b.superRank[blk/blocksPerSuper] = total
		}
		b.blockRank[blk] = total
		start := blk * wordsPerBlock
		end := start + wordsPerBlock
		if end > len(words) {
			end = len(words)
		}
		for _, w := range words[start:end] {
			total += uint64(bits.OnesCount64(w))
		}
	}
	b.blockRank[nblocks] = total
	b.superRank[nsupers] = total
	b.ones = total
	b.sealed = true
}

func (b *Bitmap) words() []uint64 {
	return b.bits.Bytes()
}

// Rank1 returns the number of 1-bits in positions [0, i] (inclusive).
func (b *Bitmap) Rank1(i uint64) (uint64, error) {
	if !b.sealed {
		panic("bitutil: Rank1 before Seal")
	}
	if i >= b.n {
		return 0, ErrOutOfRange
	}
	words := b.words()
	wordIdx := int(i / 64)
	block := wordIdx / wordsPerBlock
	count := b.blockRank[block]
	blockStart := block * wordsPerBlock
	for w := blockStart; w < wordIdx; w++ {
		count += uint64(bits.OnesCount64(words[w]))
	}
	bitOff := uint(i % 64)
	last := words[wordIdx]
	if bitOff < 63 {
		last &= (uint64(1) << (bitOff + 1)) - 1
	}
	count += uint64(bits.OnesCount64(last))
	return count, nil
}

// Rank0 returns the number of 0-bits in positions [0, i] (inclusive).
func (b *Bitmap) Rank0(i uint64) (uint64, error) {
	r1, err := b.Rank1(i)
	if err != nil {
		return 0, err
	}
	return (i + 1) - r1, nil
}

// Select1 returns the 0-based position of the k-th 1-bit (k is 1-based).
func (b *Bitmap) Select1(k uint64) (uint64, error) {
	if !b.sealed {
		panic("bitutil: Select1 before Seal")
	}
	if k == 0 || k > b.ones {
		return 0, ErrOutOfRange
	}
	// binary search the superblock directory
	nsupers := len(b.superRank) - 1
	sup := search(nsupers, func(i int) bool { return b.superRank[i+1] >= k })
	rem := k - b.superRank[sup]

	nblocks := len(b.blockRank) - 1
	blockLo := sup * blocksPerSuper
	blockHi := blockLo + blocksPerSuper
	if blockHi > nblocks {
		blockHi = nblocks
	}
	blk := blockLo + search(blockHi-blockLo, func(i int) bool {
		return b.blockRank[blockLo+i+1] >= k
	})
	rem = k - b.blockRank[blk]

	words := b.words()
	start := blk * wordsPerBlock
	end := start + wordsPerBlock
	if end > len(words) {
		end = len(words)
	}
	for wi := start; wi < end; wi++ {
		w := words[wi]
		c := uint64(bits.OnesCount64(w))
		if rem <= c {
			pos := selectInWord(w, uint(rem))
			return uint64(wi)*64 + uint64(pos), nil
		}
		rem -= c
	}
	return 0, ErrOutOfRange
}

// Select0 returns the 0-based position of the k-th 0-bit (k is 1-based).
func (b *Bitmap) Select0(k uint64) (uint64, error) {
	if !b.sealed {
		panic("bitutil: Select0 before Seal")
	}
	zeros := b.n - b.ones
	if k == 0 || k > zeros {
		return 0, ErrOutOfRange
	}
	// Binary search over bit positions using rank0 (monotonic).
	lo, hi := uint64(0), b.n-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		r0, _ := b.Rank0(mid)
		if r0 >= k {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

// search returns the smallest i in [0,n) such that ok(i) is true,
// assuming ok is monotonic (false...false,true...true). Returns n-1 if
// none found (defensive; callers only call this when a match must exist).
func search(n int, ok func(int) bool) int {
	lo, hi := 0, n-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if ok(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo < 0 {
		lo = 0
	}
	return lo
}

// selectInWord returns the 0-based bit position of the k-th (1-based)
// set bit in w.
func selectInWord(w uint64, k uint) int {
	pos := -1
	for i := uint(0); i < k; i++ {
		tz := bits.TrailingZeros64(w)
		pos = tz
		w &= w - 1
	}
	return pos
}

// Bytes serializes the sealed bitmap: length (vbyte), then raw words.
func (b *Bitmap) Bytes() []byte {
	words := b.words()
	buf := make([]byte, 0, MaxVByteLen+8*len(words))
	var tmp [MaxVByteLen]byte
	k := binary.PutUvarint(tmp[:], b.n)
	buf = append(buf, tmp[:k]...)
	for _, w := range words {
		var wb [8]byte
		binary.LittleEndian.PutUint64(wb[:], w)
		buf = append(buf, wb[:]...)
	}
	return buf
}

// LoadBitmap parses a sealed bitmap previously written by Bytes. It
// returns the bitmap (already sealed) and the number of bytes consumed.
func LoadBitmap(buf []byte) (*Bitmap, int, error) {
	n, k := binary.Uvarint(buf)
	if k <= 0 {
		return nil, 0, ErrOutOfRange
	}
	off := k
	nwords := (int(n) + 63) / 64
	need := off + 8*nwords
	if len(buf) < need {
		return nil, 0, ErrOutOfRange
	}
	b := &Bitmap{bits: bitset.New(0)}
	if n > 0 {
		b.bits.Set(uint(n - 1))
	}
	for i := 0; i < nwords; i++ {
		word := binary.LittleEndian.Uint64(buf[off+8*i:])
		for bit := 0; bit < 64; bit++ {
			gi := i*64 + bit
			if gi >= int(n) {
				break
			}
			if word&(uint64(1)<<uint(bit)) != 0 {
				b.bits.Set(uint(gi))
			} else {
				b.bits.Clear(uint(gi))
			}
		}
	}
	b.n = n
	b.Seal()
	return b, need, nil
}
