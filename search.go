// search.go - capacity search for a collision free table
//
// (c) Sudhi Herle 2018
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package perfhash

import (
	"fmt"
)

// Search finds the smallest capacity C >= 1 at which 'o' places every entry
// in a distinct bucket and returns the resulting table.
//
// Each trial places entries in their given order. On the first collision
// the capacity grows by one and the trial restarts from the first entry.
// The result depends only on the entry order and the oracle.
//
// If 'limit' is non-zero and no capacity <= limit works, Search returns
// ErrBoundExceeded. With a zero limit Search does not return until it
// finds a table; it never does if two entries share a key. Callers that
// don't control the input should use a Builder, which rejects duplicates.
func Search(entries []Entry, o Oracle, limit uint64) (*Table, error) {
	var probes uint64

	// bkt[i] is the bucket of entries[i] in the current trial;
	// occ marks the buckets claimed so far.
	bkt := make([]uint64, len(entries))
	occ := newBitVector(1)
	c := uint64(1)

	for i := 0; i < len(entries); {
		k := entries[i].Key
		b := o.Hash(k, c)
		probes++

		if b >= c {
			return nil, fmt.Errorf("%w: %s: key '%s' -> %d with capacity %d",
				ErrBadBucket, o.Name(), k, b, c)
		}

		if !occ.IsSet(b) {
			occ.Set(b)
			bkt[i] = b
			i++
			continue
		}

		if limit > 0 && c >= limit {
			return nil, fmt.Errorf("%w: %d keys don't fit %d slots",
				ErrBoundExceeded, len(entries), limit)
		}

		c++
		occ.Resize(c)
		i = 0
	}

	t := &Table{
		slots:  make([]*Entry, c),
		ents:   make([]Entry, len(entries)),
		occ:    occ,
		oracle: o,
		trials: c,
		probes: probes,
	}

	copy(t.ents, entries)
	for i := range t.ents {
		t.slots[bkt[i]] = &t.ents[i]
	}
	occ.ComputeRank()
	return t, nil
}
