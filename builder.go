// builder.go - validate a listing and freeze it into a table
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

// DefaultMaxCapacity is the capacity ceiling a Builder uses when none is
// given.
const DefaultMaxCapacity uint64 = 1 << 20

// Builder collects entries for one table, rejecting the input Search
// can't handle: empty keys and duplicate keys. Once all entries are
// added, Freeze() runs the capacity search.
type Builder struct {
	ents []Entry

	// to detect duplicates; key to position in ents
	keys map[string]int

	oracle Oracle
	limit  uint64
	frozen bool
}

// NewBuilder returns a builder using oracle 'o' and capacity ceiling
// 'limit'. A nil oracle selects DefaultOracle; a zero limit selects
// DefaultMaxCapacity.
func NewBuilder(o Oracle, limit uint64) *Builder {
	if o == nil {
		o, _ = NewOracle(DefaultOracle, 0, 0)
	}
	if limit == 0 {
		limit = DefaultMaxCapacity
	}

	b := &Builder{
		ents:   make([]Entry, 0, 64),
		keys:   make(map[string]int),
		oracle: o,
		limit:  limit,
	}
	return b
}

// Len returns the number of entries added so far
func (b *Builder) Len() int {
	return len(b.ents)
}

// Add appends a new key/value pair. Entry order is significant: it decides
// which key claims a bucket first.
func (b *Builder) Add(key, val string) error {
	if b.frozen {
		return ErrFrozen
	}

	if len(key) == 0 {
		return fmt.Errorf("entry %d: %w", len(b.ents)+1, ErrEmptyKey)
	}

	if i, ok := b.keys[key]; ok {
		return fmt.Errorf("%w '%s': entries %d and %d", ErrExists, key, i+1, len(b.ents)+1)
	}

	b.keys[key] = len(b.ents)
	b.ents = append(b.ents, Entry{key, val})
	return nil
}

// AddEntries adds a series of entries in order; it stops at the first
// invalid entry. Returns number of entries added.
func (b *Builder) AddEntries(v []Entry) (int, error) {
	for i := range v {
		if err := b.Add(v[i].Key, v[i].Value); err != nil {
			return i, err
		}
	}
	return len(v), nil
}

// Freeze searches for the minimal capacity and returns the frozen table.
func (b *Builder) Freeze() (*Table, error) {
	if b.frozen {
		return nil, ErrFrozen
	}

	t, err := Search(b.ents, b.oracle, b.limit)
	if err != nil {
		return nil, err
	}

	b.frozen = true
	return t, nil
}

// CheckDuplicates returns an ErrExists error naming the first key that
// occurs more than once in 'v'.
func CheckDuplicates(v []Entry) error {
	seen := make(map[string]int, len(v))
	for i := range v {
		k := v[i].Key
		if j, ok := seen[k]; ok {
			return fmt.Errorf("%w '%s': entries %d and %d", ErrExists, k, j+1, i+1)
		}
		seen[k] = i
	}
	return nil
}
