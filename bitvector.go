// bitvector.go -- simple bitvector implementation
//
// (c) Sudhi Herle 2018
//
// License GPLv2
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package perfhash

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

// bitVector tracks occupied buckets. During a search it records which
// buckets the current trial has claimed; in a frozen table it is the
// occupancy map whose rank turns a bucket into a dense record index.
//
// A bitVector is not safe for concurrent mutation; each search owns its own.
type bitVector struct {
	v []uint64

	// ranks[i] is the number of bits set in v[:i]; valid after
	// ComputeRank()
	ranks []uint64
}

// newBitVector creates a bitvector to hold atleast 'sz' bits. The
// resulting size is rounded-up to the next multiple of 64.
func newBitVector(sz uint64) *bitVector {
	bv := &bitVector{
		v: make([]uint64, words(sz)),
	}

	return bv
}

func words(sz uint64) uint64 {
	sz += 63
	sz &= ^(uint64(63))
	return sz / 64
}

// Size returns the number of bits in this bitvector
func (b *bitVector) Size() uint64 {
	return uint64(len(b.v)) * 64
}

// Words returns the number of words in the array
func (b *bitVector) Words() uint64 {
	return uint64(len(b.v))
}

// Set sets the bit 'i' in the bitvector
func (b *bitVector) Set(i uint64) {
	b.v[i/64] |= uint64(1) << (i % 64)
}

// IsSet() returns true if the bit 'i' is set, false otherwise
func (b *bitVector) IsSet(i uint64) bool {
	w := b.v[i/64]
	return 1 == (1 & (w >> (i % 64)))
}

// Resize clears the bitvector and makes room for atleast 'sz' bits.
// The backing array is reused when it is large enough.
func (b *bitVector) Resize(sz uint64) {
	n := words(sz)
	if n > uint64(cap(b.v)) {
		b.v = make([]uint64, n, 2*n)
		b.ranks = nil
		return
	}

	clear(b.v[:cap(b.v)])
	b.v = b.v[:n]
	b.ranks = nil
}

// ComputeRank memoizes rank calculation for future rank queries
// One must not modify the bitvector after calling this function.
// Returns the population count of the bitvector.
func (b *bitVector) ComputeRank() uint64 {
	var p uint64

	b.ranks = make([]uint64, len(b.v))
	for i := range b.v {
		b.ranks[i] = p
		p += popcount(b.v[i])
	}
	return p
}

// Rank calculates the rank on bit 'i'
// (Rank is the number of bits set before it).
func (b *bitVector) Rank(i uint64) uint64 {
	x := i / 64
	y := i % 64

	var r uint64
	if b.ranks != nil {
		r = b.ranks[x]
	} else {
		for k := uint64(0); k < x; k++ {
			r += popcount(b.v[k])
		}
	}

	// y == 0 shifts everything out, which is what we want
	r += popcount(b.v[x] << (64 - y))
	return r
}

// MarshalBinary writes the bitvector in a portable format to writer 'w'.
// The format is a little-endian word count followed by the words.
func (b *bitVector) MarshalBinary(w io.Writer) (int, error) {
	var x [8]byte

	binary.LittleEndian.PutUint64(x[:], b.Words())

	n, err := writeAll(w, x[:])
	if err != nil {
		return 0, err
	}
	m, err := writeAll(w, u64sToByteSlice(b.v))
	return n + m, err
}

// unmarshalbitVector reads a previously encoded bitvector and reconstructs
// the in-memory version. It returns the number of bytes consumed.
func unmarshalBitVector(buf []byte) (*bitVector, uint64, error) {
	if len(buf) < 8 {
		return nil, 0, ErrTooSmall
	}

	bvlen := binary.LittleEndian.Uint64(buf[:8])
	if bvlen == 0 || bvlen > (1<<32) {
		return nil, 0, fmt.Errorf("bitvect length %d is invalid", bvlen)
	}

	n := 8 + (bvlen * 8)
	if uint64(len(buf)) < n {
		return nil, 0, fmt.Errorf("bitvect: %w (exp %d, saw %d)", ErrTooSmall, n, len(buf))
	}

	b := &bitVector{
		v: bsToUint64Slice(buf[8:n]),
	}
	return b, n, nil
}

func popcount(x uint64) uint64 {
	return uint64(bits.OnesCount64(x))
}
